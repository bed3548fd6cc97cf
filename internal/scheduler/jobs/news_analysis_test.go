package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/internal/watchlist"
	"github.com/wonny/stogger/pkg/logger"
)

type call struct {
	ticker  string
	hours   int
	lexicon bool
}

type fakeAnalyzer struct {
	mu     sync.Mutex
	calls  []call
	counts map[string]int
	fail   map[string]error
}

func (f *fakeAnalyzer) report(ticker string, hours int, lexicon bool) (*contracts.AggregateReport, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{ticker, hours, lexicon})
	f.mu.Unlock()

	if err := f.fail[ticker]; err != nil {
		return nil, err
	}
	return &contracts.AggregateReport{Ticker: ticker, NewsCount: f.counts[ticker]}, nil
}

func (f *fakeAnalyzer) AnalyzeRecent(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error) {
	return f.report(ticker, hours, false)
}

func (f *fakeAnalyzer) AnalyzeRecentLexicon(ctx context.Context, ticker string, hours int) (*contracts.AggregateReport, error) {
	return f.report(ticker, hours, true)
}

type memoryStore struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (s *memoryStore) Save(ctx context.Context, r *contracts.AggregateReport) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r.Ticker)
	return nil
}

func testWatchlist(t *testing.T) *watchlist.Watchlist {
	t.Helper()
	wl, err := watchlist.Parse([]byte(`
defaults:
  interval_hours: 24
tickers:
  - symbol: AMZN
  - symbol: AAPL
    interval_hours: 6
  - symbol: MSFT
    lexicon_only: true
`))
	require.NoError(t, err)
	return wl
}

func TestStoggerJob_SavesOnlyReportsWithNews(t *testing.T) {
	analyzer := &fakeAnalyzer{counts: map[string]int{"AMZN": 3, "AAPL": 0, "MSFT": 1}}
	store := &memoryStore{}
	job := NewStoggerJob(analyzer, store, testWatchlist(t), "", logger.Nop())

	summary, err := job.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.Reports, 3)
	assert.Equal(t, 2, summary.Saved)
	assert.ElementsMatch(t, []string{"AMZN", "MSFT"}, store.saved)
	assert.ElementsMatch(t, []call{
		{"AMZN", 24, false},
		{"AAPL", 6, false},
		{"MSFT", 24, true},
	}, analyzer.calls)
}

func TestStoggerJob_FailureIsolatedPerTicker(t *testing.T) {
	fetchErr := &contracts.FetchError{Ticker: "AAPL", StatusCode: 503, Err: errors.New("unavailable")}
	analyzer := &fakeAnalyzer{
		counts: map[string]int{"AMZN": 1, "MSFT": 1},
		fail:   map[string]error{"AAPL": fetchErr},
	}
	store := &memoryStore{}
	job := NewStoggerJob(analyzer, store, testWatchlist(t), "", logger.Nop()).WithConcurrency(1)

	summary, err := job.RunOnce(context.Background())
	require.Error(t, err)

	var target *contracts.FetchError
	assert.True(t, errors.As(err, &target))
	assert.Len(t, summary.Failed, 1)
	assert.Contains(t, summary.Failed, "AAPL")
	assert.ElementsMatch(t, []string{"AMZN", "MSFT"}, store.saved)
}

func TestStoggerJob_SaveErrorFailsTicker(t *testing.T) {
	analyzer := &fakeAnalyzer{counts: map[string]int{"AMZN": 1}}
	store := &memoryStore{err: errors.New("connection refused")}
	job := NewStoggerJob(analyzer, store, watchlist.Single("AMZN", 24), "", logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "save report")
}

func TestStoggerJob_NoStore(t *testing.T) {
	analyzer := &fakeAnalyzer{counts: map[string]int{"AMZN": 5}}
	job := NewStoggerJob(analyzer, nil, watchlist.Single("AMZN", 24), "", logger.Nop())

	summary, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Saved)
	assert.Len(t, summary.Reports, 1)
}

func TestStoggerJob_Metadata(t *testing.T) {
	job := NewStoggerJob(&fakeAnalyzer{}, nil, watchlist.Single("AMZN", 24), "", logger.Nop())
	assert.Equal(t, "news_analysis", job.Name())
	assert.Equal(t, DefaultNewsAnalysisSchedule, job.Schedule())

	custom := NewStoggerJob(&fakeAnalyzer{}, nil, watchlist.Single("AMZN", 24), "@hourly", logger.Nop())
	assert.Equal(t, "@hourly", custom.Schedule())
}
