package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBuffer     = 64
)

// Message types
const (
	TypeReport      = "report"
	TypeSubscribe   = "subscribe"
	TypeSubscribed  = "subscribed"
	TypeUnsubscribe = "unsubscribe"
	TypePing        = "ping"
	TypePong        = "pong"
)

// Message is the envelope of every frame
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// clientMessage is what peers send; Data is a ticker for (un)subscribe
type clientMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Client is one websocket peer.
// An empty subscription set receives every report.
type Client struct {
	hub  *Hub
	send chan Message

	mu      sync.RWMutex
	tickers map[string]bool
}

func (c *Client) wants(ticker string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickers) == 0 || c.tickers[ticker]
}

func (c *Client) subscribe(ticker string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.tickers[ticker] = true
	} else {
		delete(c.tickers, ticker)
	}
}

// Hub fans finished reports out to websocket clients
// ⭐ SSOT: the only push channel for reports
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan *contracts.AggregateReport
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *logger.Logger
}

// NewHub creates a new hub; call Run to start it
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *contracts.AggregateReport, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case report := <-h.broadcast:
			msg := Message{Type: TypeReport, Data: report}
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(report.Ticker) {
					continue
				}
				select {
				case client.send <- msg:
				default:
					// slow consumer
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a report for every interested client; drops it when the queue is full
func (h *Hub) Publish(report *contracts.AggregateReport) {
	select {
	case h.broadcast <- report:
	default:
		h.logger.WithTicker(report.Ticker).Warn("Report broadcast queue full, dropping")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and starts the client pumps
// GET /ws/reports
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		send:    make(chan Message, sendBuffer),
		tickers: make(map[string]bool),
	}
	if t := strings.ToUpper(r.URL.Query().Get("ticker")); t != "" {
		client.tickers[t] = true
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(conn, client)
	go h.readPump(conn, client)
}

func (h *Hub) readPump(conn *websocket.Conn, client *Client) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(msg.Data))
		var reply *Message
		switch msg.Type {
		case TypeSubscribe:
			if ticker != "" {
				client.subscribe(ticker, true)
			}
			reply = &Message{Type: TypeSubscribed, Data: ticker}
		case TypeUnsubscribe:
			client.subscribe(ticker, false)
		case TypePing:
			reply = &Message{Type: TypePong}
		}

		if reply != nil && !h.trySend(client, *reply) {
			return
		}
	}
}

// trySend delivers a direct reply unless the client was already dropped
func (h *Hub) trySend(client *Client, msg Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client] {
		return false
	}
	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
