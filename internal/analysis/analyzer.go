package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/internal/external/finviz"
	"github.com/wonny/stogger/pkg/logger"
)

// Deps are the collaborators of one Analyzer.
// Lexicon, Encoder and Model are loaded once and shared read-only.
type Deps struct {
	Fetcher contracts.NewsFetcher
	Lexicon contracts.LexiconScorer

	// Encoder and Model are both nil in lexicon-only mode
	Encoder contracts.TextEncoder
	Model   contracts.SentimentModel

	Location  *time.Location
	Now       func() time.Time
	CreatedBy string
	Logger    *logger.Logger

	// Publisher is optional
	Publisher contracts.ReportPublisher
}

// Analyzer runs the fetch → parse → score → aggregate → report pipeline
// ⭐ SSOT: the only place a report is produced
type Analyzer struct {
	deps Deps
}

// NewAnalyzer validates deps and fills defaults
func NewAnalyzer(deps Deps) (*Analyzer, error) {
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("analyzer: fetcher is required")
	}
	if deps.Lexicon == nil {
		return nil, fmt.Errorf("analyzer: lexicon scorer is required")
	}
	if (deps.Model == nil) != (deps.Encoder == nil) {
		return nil, fmt.Errorf("analyzer: model and encoder must be configured together")
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.CreatedBy == "" {
		deps.CreatedBy = DefaultCreatedBy
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	return &Analyzer{deps: deps}, nil
}

// HasModel reports whether the neural scorer is configured
func (a *Analyzer) HasModel() bool {
	return a.deps.Model != nil
}

// Analyze produces a report for the headlines in window
func (a *Analyzer) Analyze(ctx context.Context, ticker string, window contracts.TimeWindow) (*contracts.AggregateReport, error) {
	return a.run(ctx, ticker, window, a.HasModel())
}

// AnalyzeRecent produces a report for the last hours up to now
func (a *Analyzer) AnalyzeRecent(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error) {
	return a.Analyze(ctx, ticker, a.recentWindow(hours))
}

// AnalyzeRecentLexicon is AnalyzeRecent scored by the lexicon alone
func (a *Analyzer) AnalyzeRecentLexicon(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error) {
	return a.AnalyzeLexicon(ctx, ticker, a.recentWindow(hours))
}

// recentWindow is expressed in the listing location so report bounds read like listing timestamps
func (a *Analyzer) recentWindow(hours int) contracts.TimeWindow {
	return contracts.RecentWindow(a.deps.Now().In(a.deps.Location), hours)
}

// AnalyzeLexicon produces a report scored by the lexicon alone, even when a model is configured
func (a *Analyzer) AnalyzeLexicon(ctx context.Context, ticker string, window contracts.TimeWindow) (*contracts.AggregateReport, error) {
	return a.run(ctx, ticker, window, false)
}

func (a *Analyzer) run(ctx context.Context, ticker string, window contracts.TimeWindow, useModel bool) (*contracts.AggregateReport, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	log := a.deps.Logger.WithTicker(ticker)
	log.WithFields(map[string]interface{}{
		"start":      window.Start.Format(contracts.ReportTimeLayout),
		"end":        window.End.Format(contracts.ReportTimeLayout),
		"with_model": useModel,
	}).Info("Starting news analysis")

	// 1. Fetch
	markup, err := a.deps.Fetcher.FetchNewsTable(ctx, ticker)
	if err != nil {
		return nil, err
	}

	// 2. Parse
	parsed, err := finviz.ParseNewsTable(markup, ticker, finviz.ParseOptions{
		Location: a.deps.Location,
		Now:      a.deps.Now(),
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	// 3. Score
	scored, err := a.score(parsed.Records, useModel)
	if err != nil {
		return nil, err
	}

	// 4. Aggregate
	agg := Aggregate(scored, window, useModel, log)

	// 5. Report
	report := BuildReport(ticker, window, agg, a.deps.CreatedBy, a.deps.Now())

	log.WithFields(map[string]interface{}{
		"parsed":     len(parsed.Records),
		"skipped":    parsed.Skipped,
		"news_count": report.NewsCount,
		"vader":      report.SentimentScoreVader,
	}).Info("News analysis completed")

	if a.deps.Publisher != nil {
		a.deps.Publisher.Publish(report)
	}

	return report, nil
}

// Score attaches both sentiment scores to every record
func (a *Analyzer) Score(records []contracts.HeadlineRecord) ([]contracts.ScoredHeadline, error) {
	return a.score(records, a.HasModel())
}

func (a *Analyzer) score(records []contracts.HeadlineRecord, useModel bool) ([]contracts.ScoredHeadline, error) {
	scored := make([]contracts.ScoredHeadline, 0, len(records))

	for _, rec := range records {
		h := contracts.ScoredHeadline{
			HeadlineRecord: rec,
			LexiconScore:   clamp(a.deps.Lexicon.Compound(rec.Title), -1, 1),
		}

		if useModel {
			encoded, err := a.deps.Encoder.Encode(rec.Title)
			if err != nil {
				return nil, err
			}
			p, err := a.deps.Model.Predict(encoded)
			if err != nil {
				return nil, fmt.Errorf("score %q: %w", rec.Title, err)
			}
			p = clamp(p, 0, 1)
			h.EncodedTokens = encoded
			h.ModelScore = &p
		}

		scored = append(scored, h)
	}

	return scored, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
