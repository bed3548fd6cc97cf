package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/stogger/internal/contracts"
)

// ErrNotFound is returned when no report exists for a ticker
var ErrNotFound = errors.New("report not found")

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS news;

	CREATE TABLE IF NOT EXISTS news.sentiment_reports (
		ticker          TEXT             NOT NULL,
		created_at      TIMESTAMPTZ      NOT NULL,
		start_time      TIMESTAMPTZ      NOT NULL,
		end_time        TIMESTAMPTZ      NOT NULL,
		score_vader     DOUBLE PRECISION NOT NULL,
		score_model     DOUBLE PRECISION,
		news_count      INTEGER          NOT NULL,
		created_by      TEXT             NOT NULL,
		PRIMARY KEY (ticker, created_at)
	);

	CREATE INDEX IF NOT EXISTS idx_sentiment_reports_ticker_created
		ON news.sentiment_reports (ticker, created_at DESC);
`

// ReportRepository persists reports in PostgreSQL, keyed by ticker and creation time
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// EnsureSchema creates the reports table when missing
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save upserts a report
func (r *ReportRepository) Save(ctx context.Context, report *contracts.AggregateReport) error {
	query := `
		INSERT INTO news.sentiment_reports (
			ticker,
			created_at,
			start_time,
			end_time,
			score_vader,
			score_model,
			news_count,
			created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, created_at) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			score_vader = EXCLUDED.score_vader,
			score_model = EXCLUDED.score_model,
			news_count = EXCLUDED.news_count,
			created_by = EXCLUDED.created_by
	`

	_, err := r.db.Exec(ctx, query,
		report.Ticker,
		report.CreatedAt.Time,
		report.Timeframe.StartTime.Time,
		report.Timeframe.EndTime.Time,
		report.SentimentScoreVader,
		report.SentimentScoreModel,
		report.NewsCount,
		report.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", report.Ticker, err)
	}

	return nil
}

// Latest returns the most recent report for a ticker
func (r *ReportRepository) Latest(ctx context.Context, ticker string) (*contracts.AggregateReport, error) {
	reports, err := r.List(ctx, ticker, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return reports[0], nil
}

// List returns up to limit reports for a ticker, newest first
func (r *ReportRepository) List(ctx context.Context, ticker string, limit int) ([]*contracts.AggregateReport, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT
			ticker,
			created_at,
			start_time,
			end_time,
			score_vader,
			score_model,
			news_count,
			created_by
		FROM news.sentiment_reports
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, strings.ToUpper(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []*contracts.AggregateReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	return reports, nil
}

// DeleteOlderThan removes reports created before cutoff and returns how many were removed
func (r *ReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM news.sentiment_reports WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete reports before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

func scanReport(row pgx.Row) (*contracts.AggregateReport, error) {
	var (
		report                contracts.AggregateReport
		createdAt, start, end time.Time
		model                 *float64
	)

	err := row.Scan(
		&report.Ticker,
		&createdAt,
		&start,
		&end,
		&report.SentimentScoreVader,
		&model,
		&report.NewsCount,
		&report.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	report.CreatedAt = contracts.ReportTime{Time: createdAt.UTC()}
	report.Timeframe = contracts.Timeframe{
		StartTime: contracts.ReportTime{Time: start.UTC()},
		EndTime:   contracts.ReportTime{Time: end.UTC()},
	}
	report.SentimentScoreModel = model

	return &report, nil
}
