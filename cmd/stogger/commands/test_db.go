package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/internal/store"
	"github.com/wonny/stogger/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "Test the PostgreSQL connection",
	Long: `Tests the database connection and prints pool statistics.

This command:
- loads DATABASE_URL from config
- connects and pings
- runs a health check
- ensures the report schema exists
- reads the latest stored report of ANALYSIS_TICKER

Example:
  go run ./cmd/stogger test-db`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stogger Database Connection Test ===")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Create database connection
	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	// Get health status
	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	// Report schema
	fmt.Println("Ensuring report schema...")
	reports := store.NewReportRepository(db.Pool)
	if err := reports.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("❌ Failed to ensure schema: %w", err)
	}
	fmt.Println("✅ Schema ready")

	latest, err := reports.Latest(ctx, cfg.Analysis.Ticker)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fmt.Printf("   No stored report for %s yet\n\n", cfg.Analysis.Ticker)
	case err != nil:
		return fmt.Errorf("❌ Failed to read latest report: %w", err)
	default:
		fmt.Printf("   Latest %s report: %s (%d news)\n\n", latest.Ticker, latest.CreatedAt.Format(contracts.ReportTimeLayout), latest.NewsCount)
	}

	// Pool statistics
	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Printf("   Acquire Count: %d\n", status.Stats.AcquireCount)

	fmt.Println("\n✅ All tests passed!")
	return nil
}

// maskPassword hides the password of a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
