package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_BundledLexiconLoads(t *testing.T) {
	a := New()
	assert.Greater(t, a.Size(), 7000)
}

// Reference values published with the VADER distribution
func TestCompound_KnownValues(t *testing.T) {
	a := New()

	tests := []struct {
		text string
		want float64
	}{
		{"The book was good.", 0.4404},
		{"VADER is smart, handsome, and funny.", 0.8316},
		{"VADER is smart, handsome, and funny!", 0.8439},
		{"VADER is not smart, handsome, nor funny.", -0.7424},
		{"Sentiment analysis has never been good.", -0.3412},
		{"Today SUX!", -0.5461},
		{"Company files for bankruptcy", 0},
		{"", 0},
		{"   ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.InDelta(t, tt.want, a.Compound(tt.text), 1e-3)
		})
	}
}

func TestCompound_Modifiers(t *testing.T) {
	a := New()
	base := a.Compound("good results")

	assert.Greater(t, a.Compound("very good results"), base, "booster")
	assert.Less(t, a.Compound("slightly good results"), base, "dampener")
	assert.Greater(t, a.Compound("GOOD results"), base, "capitalization")
	assert.Greater(t, a.Compound("good results!!"), base, "exclamation")
	assert.Less(t, a.Compound("not good results"), 0.0, "negation")
	assert.Less(t, a.Compound("good results but bad guidance"), 0.0, "contrastive conjunction")
}

func TestCompound_Headlines(t *testing.T) {
	a := New()

	assert.Greater(t, a.Compound("Amazon posts strong profit growth"), 0.0)
	assert.Less(t, a.Compound("Amazon shares crash on weak outlook"), 0.0)
}

func TestCompound_IsBounded(t *testing.T) {
	a := New()

	texts := []string{
		"great great great great great great great great!!!!",
		"terrible awful worst disaster crisis catastrophe!!!!????",
		"BEST LOVE WIN amazing",
	}
	for _, text := range texts {
		c := a.Compound(text)
		assert.GreaterOrEqual(t, c, -1.0, text)
		assert.LessOrEqual(t, c, 1.0, text)
	}
}

func TestCompound_Deterministic(t *testing.T) {
	a := New()
	text := "Analysts fear weaker demand but remain optimistic"
	assert.Equal(t, a.Compound(text), a.Compound(text))
}

func TestPolarityScores_Proportions(t *testing.T) {
	a := New()
	s := a.PolarityScores("The outlook is good but risks remain")

	assert.InDelta(t, 1.0, s.Positive+s.Negative+s.Neutral, 0.002)
	assert.Equal(t, s.Compound, a.Compound("The outlook is good but risks remain"))
}
