package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stogger/internal/contracts"
)

func scoredAt(ts time.Time, lexicon float64, model *float64) contracts.ScoredHeadline {
	return contracts.ScoredHeadline{
		HeadlineRecord: contracts.HeadlineRecord{
			Ticker: "AMZN",
			Date:   time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location()),
			Time:   contracts.ClockOf(ts),
			Title:  "headline",
		},
		LexiconScore: lexicon,
		ModelScore:   model,
	}
}

func ptr(v float64) *float64 { return &v }

func TestAggregate_Means(t *testing.T) {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	scored := []contracts.ScoredHeadline{
		scoredAt(base.Add(30*time.Minute), 0.5, ptr(0.9)),
		scoredAt(base.Add(45*time.Minute), -0.1, ptr(0.3)),
		scoredAt(base.Add(-time.Hour), 1, ptr(1)),
	}

	agg := Aggregate(scored, contracts.TimeWindow{Start: base, End: base.Add(time.Hour)}, true, nil)

	assert.False(t, agg.Empty)
	assert.Equal(t, 2, agg.NewsCount)
	assert.InDelta(t, 0.2, agg.LexiconMean, 1e-9)
	require.NotNil(t, agg.ModelMean)
	assert.InDelta(t, 0.6, *agg.ModelMean, 1e-9)
}

func TestAggregate_EmptyWindow(t *testing.T) {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	scored := []contracts.ScoredHeadline{scoredAt(base, 0.7, ptr(0.9))}
	w := contracts.TimeWindow{Start: base.Add(24 * time.Hour), End: base.Add(48 * time.Hour)}

	withModel := Aggregate(scored, w, true, nil)
	assert.True(t, withModel.Empty)
	assert.Equal(t, 0, withModel.NewsCount)
	assert.Equal(t, 0.0, withModel.LexiconMean)
	require.NotNil(t, withModel.ModelMean)
	assert.Equal(t, contracts.NeutralModelScore, *withModel.ModelMean)

	lexiconOnly := Aggregate(scored, w, false, nil)
	assert.True(t, lexiconOnly.Empty)
	assert.Nil(t, lexiconOnly.ModelMean)
}

func TestAggregate_BoundsAreInclusive(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	scored := []contracts.ScoredHeadline{
		scoredAt(start, 0.1, nil),
		scoredAt(end, 0.3, nil),
		scoredAt(end.Add(time.Second), 0.9, nil),
	}

	agg := Aggregate(scored, contracts.TimeWindow{Start: start, End: end}, false, nil)
	assert.Equal(t, 2, agg.NewsCount)
	assert.InDelta(t, 0.2, agg.LexiconMean, 1e-9)
	assert.Nil(t, agg.ModelMean)
}

func TestBuildReport(t *testing.T) {
	w := contracts.TimeWindow{
		Start: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	createdAt := time.Date(2024, 1, 15, 10, 0, 1, 0, time.UTC)
	agg := Aggregation{NewsCount: 2, LexiconMean: 0.4, ModelMean: ptr(0.7)}

	r := BuildReport("AMZN", w, agg, "", createdAt)
	assert.Equal(t, "AMZN", r.Ticker)
	assert.Equal(t, DefaultCreatedBy, r.CreatedBy)
	assert.Equal(t, w, r.Window())
	assert.Equal(t, 0.4, r.SentimentScoreVader)
	assert.Equal(t, 0.7, *r.SentimentScoreModel)
	assert.True(t, r.CreatedAt.Equal(createdAt))

	custom := BuildReport("AMZN", w, agg, "stogger(twitter-analysis)", createdAt)
	assert.Equal(t, "stogger(twitter-analysis)", custom.CreatedBy)
}
