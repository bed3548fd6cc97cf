package analysis

import (
	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/pkg/logger"
)

// Aggregation holds the window statistics a report is built from
type Aggregation struct {
	NewsCount   int
	LexiconMean float64
	ModelMean   *float64 // nil in lexicon-only mode
	Empty       bool
}

// Aggregate keeps headlines with Start <= timestamp <= End and averages their scores.
// An empty window yields lexicon mean 0 and model mean NeutralModelScore.
func Aggregate(scored []contracts.ScoredHeadline, window contracts.TimeWindow, hasModel bool, log *logger.Logger) Aggregation {
	var (
		count      int
		lexiconSum float64
		modelSum   float64
		modelCount int
	)

	for _, h := range scored {
		if !window.Contains(h.Timestamp()) {
			continue
		}
		count++
		lexiconSum += h.LexiconScore
		if h.ModelScore != nil {
			modelSum += *h.ModelScore
			modelCount++
		}
	}

	if count == 0 {
		if log != nil {
			log.WithFields(map[string]interface{}{
				"start":  window.Start.Format(contracts.ReportTimeLayout),
				"end":    window.End.Format(contracts.ReportTimeLayout),
				"parsed": len(scored),
			}).Warn("No news in time window")
		}

		agg := Aggregation{Empty: true}
		if hasModel {
			neutral := contracts.NeutralModelScore
			agg.ModelMean = &neutral
		}
		return agg
	}

	agg := Aggregation{
		NewsCount:   count,
		LexiconMean: lexiconSum / float64(count),
	}
	if hasModel {
		mean := contracts.NeutralModelScore
		if modelCount > 0 {
			mean = modelSum / float64(modelCount)
		}
		agg.ModelMean = &mean
	}
	return agg
}
