package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/pkg/config"
	"github.com/wonny/stogger/pkg/database"
)

var _ contracts.ReportStore = (*ReportRepository)(nil)

func newTestRepository(t *testing.T) *ReportRepository {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := NewReportRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestReportRepository_SaveAndLatest(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ticker := "ZZTEST"
	created := time.Now().UTC().Truncate(time.Second)
	model := 0.65
	report := &contracts.AggregateReport{
		Ticker: ticker,
		Timeframe: contracts.Timeframe{
			StartTime: contracts.ReportTime{Time: created.Add(-24 * time.Hour)},
			EndTime:   contracts.ReportTime{Time: created},
		},
		SentimentScoreVader: 0.31,
		SentimentScoreModel: &model,
		NewsCount:           4,
		CreatedBy:           "stogger(news-analysis)",
		CreatedAt:           contracts.ReportTime{Time: created},
	}
	require.NoError(t, repo.Save(ctx, report))

	// upsert on the same key
	report.NewsCount = 5
	require.NoError(t, repo.Save(ctx, report))

	got, err := repo.Latest(ctx, ticker)
	require.NoError(t, err)
	assert.Equal(t, 5, got.NewsCount)
	assert.InDelta(t, 0.31, got.SentimentScoreVader, 1e-9)
	require.NotNil(t, got.SentimentScoreModel)
	assert.InDelta(t, 0.65, *got.SentimentScoreModel, 1e-9)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestReportRepository_LexiconOnlyReport(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Second)
	report := &contracts.AggregateReport{
		Ticker:    "ZZVADER",
		Timeframe: contracts.Timeframe{StartTime: contracts.ReportTime{Time: created.Add(-time.Hour)}, EndTime: contracts.ReportTime{Time: created}},
		NewsCount: 1,
		CreatedBy: "stogger(news-analysis-vader)",
		CreatedAt: contracts.ReportTime{Time: created},
	}
	require.NoError(t, repo.Save(ctx, report))

	reports, err := repo.List(ctx, "zzvader", 10)
	require.NoError(t, err)
	require.NotEmpty(t, reports)
	assert.Nil(t, reports[0].SentimentScoreModel)
}

func TestReportRepository_LatestNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Latest(context.Background(), "NO-SUCH-TICKER")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReportRepository_DeleteOlderThan(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	old := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	report := &contracts.AggregateReport{
		Ticker:    "ZZOLD",
		Timeframe: contracts.Timeframe{StartTime: contracts.ReportTime{Time: old.Add(-time.Hour)}, EndTime: contracts.ReportTime{Time: old}},
		NewsCount: 1,
		CreatedBy: "stogger(news-analysis)",
		CreatedAt: contracts.ReportTime{Time: old},
	}
	require.NoError(t, repo.Save(ctx, report))

	removed, err := repo.DeleteOlderThan(ctx, old.Add(time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	_, err = repo.Latest(ctx, "ZZOLD")
	assert.True(t, errors.Is(err, ErrNotFound))
}
