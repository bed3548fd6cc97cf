package contracts

import (
	"context"
)

// NewsFetcher retrieves the raw news listing markup for a ticker
type NewsFetcher interface {
	FetchNewsTable(ctx context.Context, ticker string) (string, error)
}

// LexiconScorer computes a deterministic compound score in [-1, 1]
type LexiconScorer interface {
	Compound(text string) float64
}

// TextEncoder maps a headline to the fixed-length classifier input
type TextEncoder interface {
	Encode(title string) ([]int, error)
}

// SentimentModel maps an encoded headline to a positive-sentiment probability in [0, 1]
type SentimentModel interface {
	Predict(encoded []int) (float64, error)
}

// ReportStore persists finished reports
type ReportStore interface {
	Save(ctx context.Context, report *AggregateReport) error
}

// ReportPublisher receives every report right after it is built
type ReportPublisher interface {
	Publish(report *AggregateReport)
}
