package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/wonny/stogger/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse one ticker and print the report",
	Long: `Fetches the news table for a ticker, scores every headline and prints
the aggregate report as JSON.

The window is either the last --hours hours, or --start/--end.
Both bounds are inclusive.

Example:
  go run ./cmd/stogger analyze --ticker AMZN --hours 24
  go run ./cmd/stogger analyze --ticker AAPL --start "2024-01-14 12:00" --end "2024-01-15 12:00"
  go run ./cmd/stogger analyze --ticker TSLA --vader
  go run ./cmd/stogger analyze --ticker TSLA --save`,
	RunE: runAnalyze,
}

var (
	analyzeTicker string
	analyzeHours  int
	analyzeStart  string
	analyzeEnd    string
	analyzeVader  bool
	analyzeSave   bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeTicker, "ticker", "", "ticker symbol (default ANALYSIS_TICKER)")
	analyzeCmd.Flags().IntVar(&analyzeHours, "hours", 0, "window length ending now (default ANALYSIS_INTERVAL)")
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "window start, in NEWS_TIMEZONE")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "window end, in NEWS_TIMEZONE")
	analyzeCmd.Flags().BoolVar(&analyzeVader, "vader", false, "lexicon scorer only")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the report (requires DATABASE_URL)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if (analyzeStart == "") != (analyzeEnd == "") {
		return fmt.Errorf("--start and --end must be given together")
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx, cfg, log, bootOptions{withDatabase: analyzeSave, lexiconOnly: analyzeVader})
	if err != nil {
		return err
	}
	defer a.Close()

	if analyzeSave && a.reports == nil {
		return fmt.Errorf("--save: %w", a.cfg.RequireDatabase())
	}

	ticker := analyzeTicker
	if ticker == "" {
		ticker = a.cfg.Analysis.Ticker
	}

	var report *contracts.AggregateReport
	if analyzeStart != "" {
		window, err := parseWindow(analyzeStart, analyzeEnd, a.cfg.Location())
		if err != nil {
			return err
		}
		if analyzeVader {
			report, err = a.analyzer.AnalyzeLexicon(ctx, ticker, window)
		} else {
			report, err = a.analyzer.Analyze(ctx, ticker, window)
		}
		if err != nil {
			return fmt.Errorf("analyze %s: %w", ticker, err)
		}
	} else {
		hours := analyzeHours
		if hours <= 0 {
			hours = a.cfg.Analysis.IntervalHours
		}
		if analyzeVader {
			report, err = a.analyzer.AnalyzeRecentLexicon(ctx, ticker, hours)
		} else {
			report, err = a.analyzer.AnalyzeRecent(ctx, ticker, hours)
		}
		if err != nil {
			return fmt.Errorf("analyze %s: %w", ticker, err)
		}
	}

	if analyzeSave {
		if err := a.reports.Save(ctx, report); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		a.log.WithTicker(report.Ticker).Info("Report saved")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// parseWindow reads loosely formatted bounds in loc
func parseWindow(start, end string, loc *time.Location) (contracts.TimeWindow, error) {
	s, err := dateparse.ParseIn(start, loc)
	if err != nil {
		return contracts.TimeWindow{}, fmt.Errorf("invalid --start %q: %w", start, err)
	}
	e, err := dateparse.ParseIn(end, loc)
	if err != nil {
		return contracts.TimeWindow{}, fmt.Errorf("invalid --end %q: %w", end, err)
	}
	return contracts.TimeWindow{Start: s, End: e}, nil
}
