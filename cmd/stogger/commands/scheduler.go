package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stogger/internal/scheduler"
	"github.com/wonny/stogger/internal/scheduler/jobs"
	"github.com/wonny/stogger/internal/watchlist"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled news analysis",
	Long: `Runs the news analysis job on a cron schedule.

The job analyses every ticker of the watchlist (WATCHLIST_PATH, or
ANALYSIS_TICKER alone) and saves every report that saw news.

Subcommands:
  start   - start the scheduler
  list    - list registered jobs
  run     - run a job once, in the foreground

Example:
  go run ./cmd/stogger scheduler start
  go run ./cmd/stogger scheduler list
  go run ./cmd/stogger scheduler run news_analysis`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers the news analysis job
(ANALYSIS_SCHEDULE, default: top of every hour), plus the report
retention job when REPORT_RETENTION and DATABASE_URL are set.

The scheduler stops on Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job once and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	schedulerRetries     int
	schedulerRetryDelay  time.Duration
	schedulerJobTimeout  time.Duration
	schedulerConcurrency int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().IntVar(&schedulerRetries, "retries", 0, "retry a failed run this many times")
	schedulerCmd.PersistentFlags().DurationVar(&schedulerRetryDelay, "retry-delay", 30*time.Second, "delay between retries")
	schedulerCmd.PersistentFlags().DurationVar(&schedulerJobTimeout, "job-timeout", 10*time.Minute, "upper bound of one run")
	schedulerCmd.PersistentFlags().IntVar(&schedulerConcurrency, "concurrency", 4, "tickers analysed at once")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stogger Scheduler ===")

	sched, a, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Println("Registered jobs:")
	for name, stat := range sched.GetJobStats() {
		fmt.Printf("  - %s (%s)\n", name, stat.Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, a, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunNow(ctx, jobName)
	if result.JobName == "" {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Printf("\n📊 %s\n", result.JobName)
	fmt.Printf("   Duration: %v\n", result.Duration)
	fmt.Printf("   Success: %v\n", result.Success)
	if !result.Success {
		fmt.Printf("   Error: %s\n", result.Error)
		return err
	}

	return nil
}

func initScheduler(ctx context.Context) (*scheduler.Scheduler, *app, error) {
	// 1. Load config & logger
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 2. Watchlist
	wl, err := loadWatchlist(cfg.Analysis.WatchlistPath, cfg.Analysis.Ticker, cfg.Analysis.IntervalHours)
	if err != nil {
		return nil, nil, err
	}
	if hash, err := watchlist.Hash(wl); err == nil {
		log.WithFields(map[string]interface{}{
			"watchlist": wl.Meta.Name,
			"tickers":   len(wl.Tickers),
			"hash":      hash,
		}).Info("Watchlist loaded")
	}

	// 3. Clients & analyzer
	a, err := bootstrap(ctx, cfg, log, bootOptions{withDatabase: true})
	if err != nil {
		return nil, nil, err
	}
	if a.reports == nil {
		log.Warn("DATABASE_URL not set, reports will not be saved")
	}

	// 4. Scheduler & jobs
	sched := scheduler.New(log,
		scheduler.WithRetry(schedulerRetries, schedulerRetryDelay),
		scheduler.WithJobTimeout(schedulerJobTimeout),
	)

	job := jobs.NewStoggerJob(a.analyzer, a.reportStore(), wl, cfg.Analysis.Schedule, log).
		WithConcurrency(schedulerConcurrency)
	if err := sched.AddJob(job); err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("add job %s: %w", job.Name(), err)
	}

	if a.reports != nil && cfg.Analysis.Retention > 0 {
		retention := jobs.NewReportRetentionJob(a.reports, cfg.Analysis.Retention, log)
		if err := sched.AddJob(retention); err != nil {
			a.Close()
			return nil, nil, fmt.Errorf("add job %s: %w", retention.Name(), err)
		}
	}

	return sched, a, nil
}

func loadWatchlist(path, ticker string, intervalHours int) (*watchlist.Watchlist, error) {
	if path == "" {
		return watchlist.Single(ticker, intervalHours), nil
	}
	wl, err := watchlist.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	return wl, nil
}
