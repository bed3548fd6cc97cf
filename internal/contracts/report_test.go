package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *AggregateReport {
	model := 0.72
	return &AggregateReport{
		Ticker: "AMZN",
		Timeframe: Timeframe{
			StartTime: ReportTime{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
			EndTime:   ReportTime{time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
		},
		SentimentScoreVader: 0.25,
		SentimentScoreModel: &model,
		NewsCount:           2,
		CreatedBy:           "stogger(news-analysis)",
		CreatedAt:           ReportTime{time.Date(2024, 1, 16, 0, 0, 5, 0, time.UTC)},
	}
}

func TestAggregateReport_JSONShape(t *testing.T) {
	data, err := json.Marshal(sampleReport())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "AMZN", got["ticker"])
	assert.Equal(t, map[string]any{
		"startTime": "2024-01-15 00:00:00",
		"endTime":   "2024-01-16 00:00:00",
	}, got["timeframe"])
	assert.Equal(t, 0.25, got["sentimentScoreVader"])
	assert.Equal(t, 0.72, got["sentimentScoreModel"])
	assert.Equal(t, float64(2), got["newsCount"])
	assert.Equal(t, "stogger(news-analysis)", got["createdBy"])
	assert.Equal(t, "2024-01-16 00:00:05", got["createdAt"])
}

func TestAggregateReport_OmitsModelScoreInLexiconOnlyMode(t *testing.T) {
	r := sampleReport()
	r.SentimentScoreModel = nil

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sentimentScoreModel")
}

func TestAggregateReport_RoundTripsWindow(t *testing.T) {
	data, err := json.Marshal(sampleReport())
	require.NoError(t, err)

	var decoded AggregateReport
	require.NoError(t, json.Unmarshal(data, &decoded))

	w := decoded.Window()
	assert.True(t, w.Start.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.End.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))
	assert.True(t, decoded.HasNews())
}

func TestReportTime_RejectsOtherLayouts(t *testing.T) {
	var rt ReportTime
	assert.Error(t, json.Unmarshal([]byte(`"2024-01-15T00:00:00Z"`), &rt))
}

func TestErrors_Unwrap(t *testing.T) {
	fe := &FetchError{Ticker: "AMZN", StatusCode: 404, Err: ErrNoNewsTable}
	assert.ErrorIs(t, fe, ErrNoNewsTable)
	assert.Contains(t, fe.Error(), "status 404")

	pe := &ParseError{Ticker: "AMZN", Row: 0, Reason: "time-only row before any date"}
	assert.Contains(t, pe.Error(), "row 0")

	ee := &EncodingError{Reason: "vocabulary has no <PAD> entry"}
	assert.Equal(t, "encoding: vocabulary has no <PAD> entry", ee.Error())
}
