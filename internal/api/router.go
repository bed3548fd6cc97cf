package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/stogger/internal/api/handlers"
	"github.com/wonny/stogger/pkg/logger"
)

// Routes groups the handlers mounted by NewRouter
type Routes struct {
	News    *handlers.NewsHandler
	Reports *handlers.ReportHandler
	Stream  http.Handler // websocket report stream
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: every route is registered here
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Routes stay on the root router so a wrong method answers 405, not 404.

	// News sentiment
	r.HandleFunc("/api/news-analysis", routes.News.GetNewsAnalysis).Methods("GET")
	r.HandleFunc("/api/news-analysis-vader", routes.News.GetNewsAnalysisVader).Methods("GET")
	r.HandleFunc("/api/twitter-analysis", routes.News.GetTwitterAnalysis).Methods("GET")

	// Stored reports
	r.HandleFunc("/api/reports/{ticker}", routes.Reports.ListReports).Methods("GET")
	r.HandleFunc("/api/reports/{ticker}/latest", routes.Reports.GetLatestReport).Methods("GET")

	// Live report stream
	if routes.Stream != nil {
		r.Handle("/ws/reports", routes.Stream).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "stogger-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
