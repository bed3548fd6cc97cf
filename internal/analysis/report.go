package analysis

import (
	"time"

	"github.com/wonny/stogger/internal/contracts"
)

// DefaultCreatedBy is the provenance stamped on reports when none is configured
const DefaultCreatedBy = "stogger(news-analysis)"

// BuildReport assembles the final report
func BuildReport(ticker string, window contracts.TimeWindow, agg Aggregation, createdBy string, createdAt time.Time) *contracts.AggregateReport {
	if createdBy == "" {
		createdBy = DefaultCreatedBy
	}

	return &contracts.AggregateReport{
		Ticker: ticker,
		Timeframe: contracts.Timeframe{
			StartTime: contracts.ReportTime{Time: window.Start},
			EndTime:   contracts.ReportTime{Time: window.End},
		},
		SentimentScoreVader: agg.LexiconMean,
		SentimentScoreModel: agg.ModelMean,
		NewsCount:           agg.NewsCount,
		CreatedBy:           createdBy,
		CreatedAt:           contracts.ReportTime{Time: createdAt},
	}
}
