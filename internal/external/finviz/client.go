package finviz

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/pkg/httputil"
	"github.com/wonny/stogger/pkg/logger"
)

// DefaultBaseURL is the quote page the ticker symbol is appended to
const DefaultBaseURL = "https://finviz.com/quote.ashx?t="

// NewsTableSelector locates the headline listing on a quote page
const NewsTableSelector = "#news-table"

// Client fetches news listings from the quote page
// ⭐ SSOT: news source HTTP calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new news listing client.
// A failed fetch is returned as is and aborts the run.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// URLFor returns the listing URL for ticker
func (c *Client) URLFor(ticker string) string {
	return c.baseURL + url.QueryEscape(ticker)
}

// FetchNewsTable returns the outer HTML of the news table for ticker
func (c *Client) FetchNewsTable(ctx context.Context, ticker string) (string, error) {
	fullURL := c.URLFor(ticker)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return "", &contracts.FetchError{Ticker: ticker, URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &contracts.FetchError{
			Ticker:     ticker,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", &contracts.FetchError{Ticker: ticker, URL: fullURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse html: %w", err)}
	}

	table := doc.Find(NewsTableSelector).First()
	if table.Length() == 0 {
		return "", &contracts.FetchError{Ticker: ticker, URL: fullURL, StatusCode: resp.StatusCode, Err: contracts.ErrNoNewsTable}
	}

	markup, err := goquery.OuterHtml(table)
	if err != nil {
		return "", &contracts.FetchError{Ticker: ticker, URL: fullURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("render news table: %w", err)}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"rows":   table.Find("tr").Length(),
		"bytes":  len(markup),
	}).Debug("Fetched news table")

	return strings.TrimSpace(markup), nil
}
