package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/pkg/logger"
	"github.com/wonny/stogger/pkg/redis"
)

// NewsAnalyzer runs the news pipeline for one request
type NewsAnalyzer interface {
	Analyze(ctx context.Context, ticker string, window contracts.TimeWindow) (*contracts.AggregateReport, error)
	AnalyzeLexicon(ctx context.Context, ticker string, window contracts.TimeWindow) (*contracts.AggregateReport, error)
	AnalyzeRecent(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error)
	AnalyzeRecentLexicon(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error)
}

// NewsDefaults are used when a request leaves a parameter out
type NewsDefaults struct {
	Ticker   string
	Hours    int
	Location *time.Location
	CacheTTL time.Duration
}

// NewsHandler handles on-demand news sentiment endpoints
// ⭐ SSOT: HTTP entry point of the news pipeline
type NewsHandler struct {
	analyzer NewsAnalyzer
	cache    *redis.Cache // nil disables caching
	defaults NewsDefaults
	logger   *logger.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(analyzer NewsAnalyzer, cache *redis.Cache, defaults NewsDefaults, log *logger.Logger) *NewsHandler {
	if defaults.Location == nil {
		defaults.Location = time.UTC
	}
	if defaults.Hours <= 0 {
		defaults.Hours = 24
	}
	return &NewsHandler{
		analyzer: analyzer,
		cache:    cache,
		defaults: defaults,
		logger:   log,
	}
}

// newsRequest is a parsed query string
type newsRequest struct {
	ticker string
	hours  int
	window *contracts.TimeWindow // set when startTime and endTime are given
}

// GetNewsAnalysis scores headlines with the lexicon and, when configured, the classifier
// GET /api/news-analysis?ticker=AMZN&hours=24
// GET /api/news-analysis?ticker=AMZN&startTime=2024-01-15 09:00:00&endTime=2024-01-15 10:00:00
func (h *NewsHandler) GetNewsAnalysis(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// GetNewsAnalysisVader scores headlines with the lexicon only
// GET /api/news-analysis-vader
func (h *NewsHandler) GetNewsAnalysisVader(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

// GetTwitterAnalysis is a placeholder until social sentiment exists
// GET /api/twitter-analysis
func (h *NewsHandler) GetTwitterAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker == "" {
		ticker = h.defaults.Ticker
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"ticker": ticker,
		"Type":   "Twitter",
	})
}

func (h *NewsHandler) serve(w http.ResponseWriter, r *http.Request, lexiconOnly bool) {
	ctx := r.Context()

	req, err := h.parseRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var report contracts.AggregateReport
	err = h.getOrSet(ctx, h.cacheKey(req, lexiconOnly), &report, func() (interface{}, error) {
		return h.run(ctx, req, lexiconOnly)
	})
	if err != nil {
		h.logger.WithTicker(req.ticker).WithError(err).Error("News analysis request failed")
		status, msg := statusFor(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, &report)
}

func (h *NewsHandler) run(ctx context.Context, req newsRequest, lexiconOnly bool) (*contracts.AggregateReport, error) {
	switch {
	case req.window != nil && lexiconOnly:
		return h.analyzer.AnalyzeLexicon(ctx, req.ticker, *req.window)
	case req.window != nil:
		return h.analyzer.Analyze(ctx, req.ticker, *req.window)
	case lexiconOnly:
		return h.analyzer.AnalyzeRecentLexicon(ctx, req.ticker, req.hours)
	default:
		return h.analyzer.AnalyzeRecent(ctx, req.ticker, req.hours)
	}
}

func (h *NewsHandler) getOrSet(ctx context.Context, key string, dest *contracts.AggregateReport, fn func() (interface{}, error)) error {
	if h.cache == nil {
		v, err := fn()
		if err != nil {
			return err
		}
		*dest = *v.(*contracts.AggregateReport)
		return nil
	}
	return h.cache.GetOrSet(ctx, key, dest, h.defaults.CacheTTL, fn)
}

func (h *NewsHandler) cacheKey(req newsRequest, lexiconOnly bool) string {
	if req.window != nil {
		return redis.ReportKey(req.ticker, req.window.Start, req.window.End, lexiconOnly)
	}
	return redis.RecentReportKey(req.ticker, req.hours, lexiconOnly)
}

func (h *NewsHandler) parseRequest(r *http.Request) (newsRequest, error) {
	q := r.URL.Query()

	req := newsRequest{
		ticker: strings.ToUpper(strings.TrimSpace(q.Get("ticker"))),
		hours:  h.defaults.Hours,
	}
	if req.ticker == "" {
		req.ticker = h.defaults.Ticker
	}
	if req.ticker == "" {
		return req, errors.New("ticker is required")
	}

	if s := q.Get("hours"); s != "" {
		hours, err := strconv.Atoi(s)
		if err != nil || hours <= 0 {
			return req, errors.New("hours must be a positive integer")
		}
		req.hours = hours
	}

	start, end := q.Get("startTime"), q.Get("endTime")
	if start == "" && end == "" {
		return req, nil
	}
	if start == "" || end == "" {
		return req, errors.New("startTime and endTime must be given together")
	}

	startTime, err := dateparse.ParseIn(start, h.defaults.Location)
	if err != nil {
		return req, errors.New("invalid startTime")
	}
	endTime, err := dateparse.ParseIn(end, h.defaults.Location)
	if err != nil {
		return req, errors.New("invalid endTime")
	}

	// start after end is allowed and simply matches nothing
	req.window = &contracts.TimeWindow{Start: startTime, End: endTime}
	return req, nil
}

// statusFor maps pipeline errors onto HTTP statuses
func statusFor(err error) (int, string) {
	var (
		fetchErr *contracts.FetchError
		parseErr *contracts.ParseError
		encErr   *contracts.EncodingError
	)
	switch {
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "Failed to fetch news listing"
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, "Failed to parse news listing"
	case errors.As(err, &encErr):
		return http.StatusInternalServerError, "Vocabulary is not usable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "News analysis timed out"
	default:
		return http.StatusInternalServerError, "News analysis failed"
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
