package lexicon

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Scores is the full polarity breakdown of one text
type Scores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Analyzer scores text with the published VADER lexicon and rule set.
// ⭐ SSOT: lexicon and rules come from govader unchanged; this package only adapts them.
// The analyzer is read-only after construction and safe for concurrent use.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// New returns an analyzer over the bundled VADER lexicon
func New() *Analyzer {
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Size returns the number of lexicon entries
func (a *Analyzer) Size() int {
	return len(a.sia.Lexicon)
}

// Compound returns the normalized compound score in [-1, 1]
func (a *Analyzer) Compound(text string) float64 {
	return a.PolarityScores(text).Compound
}

// PolarityScores returns the neg/neu/pos proportions and the compound score
func (a *Analyzer) PolarityScores(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{}
	}

	s := a.sia.PolarityScores(text)
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}
