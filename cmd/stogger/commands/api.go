package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stogger/internal/api"
	"github.com/wonny/stogger/internal/api/handlers"
	"github.com/wonny/stogger/internal/api/ws"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                       - Health check
  GET  /api/news-analysis            - Lexicon + neural report
  GET  /api/news-analysis-vader      - Lexicon-only report
  GET  /api/twitter-analysis         - Placeholder
  GET  /api/reports/{ticker}         - Stored reports (requires DATABASE_URL)
  GET  /api/reports/{ticker}/latest  - Latest stored report
  GET  /ws/reports                   - Live report stream

Query parameters of the analysis endpoints:
  ticker, hours | startTime & endTime

Example:
  go run ./cmd/stogger api
  go run ./cmd/stogger api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stogger API Server ===")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Load config & logger
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Report stream
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	// 3. Clients & analyzer
	a, err := bootstrap(ctx, cfg, log, bootOptions{withDatabase: true, publisher: hub})
	if err != nil {
		return err
	}
	defer a.Close()

	// 4. Handlers
	newsHandler := handlers.NewNewsHandler(a.analyzer, a.reportCache(), handlers.NewsDefaults{
		Ticker:   a.cfg.Analysis.Ticker,
		Hours:    a.cfg.Analysis.IntervalHours,
		Location: a.cfg.Location(),
		CacheTTL: a.cfg.Analysis.CacheTTL,
	}, log)

	var reader handlers.ReportReader
	if a.reports != nil {
		reader = a.reports
	} else {
		log.Warn("DATABASE_URL not set, stored report endpoints disabled")
	}
	reportHandler := handlers.NewReportHandler(reader, log)

	// 5. Router & server
	router := api.NewRouter(api.Routes{
		News:    newsHandler,
		Reports: reportHandler,
		Stream:  hub,
	}, log)
	server := api.New(a.cfg, log, router)

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.WithFields(map[string]interface{}{
		"port":        a.cfg.Port,
		"neural":      a.analyzer.HasModel(),
		"cache":       a.redis.Enabled(),
		"persistence": a.reports != nil,
	}).Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
