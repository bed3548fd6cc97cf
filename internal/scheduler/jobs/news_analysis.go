package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/internal/watchlist"
	"github.com/wonny/stogger/pkg/logger"
)

// DefaultNewsAnalysisSchedule runs at the top of every hour (with seconds)
const DefaultNewsAnalysisSchedule = "0 0 * * * *"

// NewsAnalyzer produces recent-window reports
type NewsAnalyzer interface {
	AnalyzeRecent(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error)
	AnalyzeRecentLexicon(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error)
}

// RunSummary is the outcome of one pass over the watchlist
type RunSummary struct {
	Reports []*contracts.AggregateReport
	Saved   int
	Failed  map[string]error
}

// StoggerJob analyses every watched ticker and persists reports that saw news
// ⭐ SSOT: the only scheduled producer of stored reports
type StoggerJob struct {
	analyzer    NewsAnalyzer
	store       contracts.ReportStore // nil disables persistence
	watchlist   *watchlist.Watchlist
	schedule    string
	concurrency int
	logger      *logger.Logger
}

// NewStoggerJob creates a new news analysis job
func NewStoggerJob(analyzer NewsAnalyzer, store contracts.ReportStore, wl *watchlist.Watchlist, schedule string, log *logger.Logger) *StoggerJob {
	if schedule == "" {
		schedule = DefaultNewsAnalysisSchedule
	}
	return &StoggerJob{
		analyzer:    analyzer,
		store:       store,
		watchlist:   wl,
		schedule:    schedule,
		concurrency: 4,
		logger:      log,
	}
}

// WithConcurrency bounds the number of tickers analysed at once
func (j *StoggerJob) WithConcurrency(n int) *StoggerJob {
	if n > 0 {
		j.concurrency = n
	}
	return j
}

// Name returns the job name
func (j *StoggerJob) Name() string {
	return "news_analysis"
}

// Schedule returns the cron schedule
func (j *StoggerJob) Schedule() string {
	return j.schedule
}

// Run executes one pass over the watchlist
func (j *StoggerJob) Run(ctx context.Context) error {
	_, err := j.RunOnce(ctx)
	return err
}

// RunOnce analyses every ticker concurrently; one ticker failing never cancels the others
func (j *StoggerJob) RunOnce(ctx context.Context) (*RunSummary, error) {
	targets := j.watchlist.Targets()
	j.logger.WithFields(map[string]interface{}{
		"watchlist": j.watchlist.Meta.Name,
		"tickers":   len(targets),
	}).Info("Starting scheduled news analysis")

	summary := &RunSummary{Failed: make(map[string]error)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(j.concurrency)

	for _, target := range targets {
		g.Go(func() error {
			report, saved, err := j.runTarget(ctx, target)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed[target.Symbol] = err
				return nil
			}
			summary.Reports = append(summary.Reports, report)
			if saved {
				summary.Saved++
			}
			return nil
		})
	}
	_ = g.Wait()

	j.logger.WithFields(map[string]interface{}{
		"reports": len(summary.Reports),
		"saved":   summary.Saved,
		"failed":  len(summary.Failed),
	}).Info("Scheduled news analysis finished")

	if len(summary.Failed) > 0 {
		errs := make([]error, 0, len(summary.Failed))
		for symbol, err := range summary.Failed {
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
		}
		return summary, errors.Join(errs...)
	}
	return summary, nil
}

func (j *StoggerJob) runTarget(ctx context.Context, target watchlist.Target) (*contracts.AggregateReport, bool, error) {
	log := j.logger.WithTicker(target.Symbol)

	// 1. News analysis
	log.Info("Retrieving news analysis")
	var (
		report *contracts.AggregateReport
		err    error
	)
	if target.LexiconOnly {
		report, err = j.analyzer.AnalyzeRecentLexicon(ctx, target.Symbol, target.IntervalHours)
	} else {
		report, err = j.analyzer.AnalyzeRecent(ctx, target.Symbol, target.IntervalHours)
	}
	if err != nil {
		log.WithError(err).Error("News analysis failed")
		return nil, false, err
	}

	// 2. Social analysis and combination are not implemented yet
	log.Debug("Retrieving twitter analysis")
	log.Debug("Combining news and twitter analysis")

	// 3. Persist only reports that saw news
	if !report.HasNews() {
		log.Info("No news found for analysis, stopping")
		return report, false, nil
	}
	if j.store == nil {
		log.Debug("No report store configured, skipping save")
		return report, false, nil
	}

	if err := j.store.Save(ctx, report); err != nil {
		log.WithError(err).Error("Failed to save report")
		return report, false, fmt.Errorf("save report: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"news_count": report.NewsCount,
		"vader":      report.SentimentScoreVader,
	}).Info("Report saved")

	return report, true, nil
}
