package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/internal/store"
	"github.com/wonny/stogger/pkg/logger"
)

// ReportReader reads persisted reports
type ReportReader interface {
	Latest(ctx context.Context, ticker string) (*contracts.AggregateReport, error)
	List(ctx context.Context, ticker string, limit int) ([]*contracts.AggregateReport, error)
}

// ReportHandler serves stored reports
type ReportHandler struct {
	reader ReportReader // nil when no database is configured
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reader ReportReader, log *logger.Logger) *ReportHandler {
	return &ReportHandler{reader: reader, logger: log}
}

// ListReports returns stored reports for a ticker, newest first
// GET /api/reports/{ticker}?limit=20
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		respondError(w, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}

	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	reports, err := h.reader.List(r.Context(), ticker, limit)
	if err != nil {
		h.logger.WithTicker(ticker).WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve reports")
		return
	}
	if reports == nil {
		reports = []*contracts.AggregateReport{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"count":   len(reports),
		"reports": reports,
	})
}

// GetLatestReport returns the newest stored report for a ticker
// GET /api/reports/{ticker}/latest
func (h *ReportHandler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		respondError(w, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}

	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	report, err := h.reader.Latest(r.Context(), ticker)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No report for "+ticker)
		return
	}
	if err != nil {
		h.logger.WithTicker(ticker).WithError(err).Error("Failed to get latest report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
