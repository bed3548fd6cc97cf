package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReportTimeLayout is the wire format of every timestamp in a report
const ReportTimeLayout = "2006-01-02 15:04:05"

// NeutralModelScore is reported as the model mean when no headline falls in the window
const NeutralModelScore = 0.5

// ReportTime marshals as ReportTimeLayout
type ReportTime struct {
	time.Time
}

// MarshalJSON implements json.Marshaler
func (t ReportTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(ReportTimeLayout))
}

// UnmarshalJSON implements json.Unmarshaler; the time is read in UTC
func (t *ReportTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(ReportTimeLayout, s)
	if err != nil {
		return fmt.Errorf("parse report time %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Timeframe is the window a report was computed over
type Timeframe struct {
	StartTime ReportTime `json:"startTime"`
	EndTime   ReportTime `json:"endTime"`
}

// AggregateReport is the result of one pipeline run
type AggregateReport struct {
	Ticker              string     `json:"ticker"`
	Timeframe           Timeframe  `json:"timeframe"`
	SentimentScoreVader float64    `json:"sentimentScoreVader"`
	SentimentScoreModel *float64   `json:"sentimentScoreModel,omitempty"`
	NewsCount           int        `json:"newsCount"`
	CreatedBy           string     `json:"createdBy"`
	CreatedAt           ReportTime `json:"createdAt"`
}

// HasNews reports whether any headline contributed to the report
func (r *AggregateReport) HasNews() bool {
	return r.NewsCount > 0
}

// Window returns the report's time window
func (r *AggregateReport) Window() TimeWindow {
	return TimeWindow{Start: r.Timeframe.StartTime.Time, End: r.Timeframe.EndTime.Time}
}
