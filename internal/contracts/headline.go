package contracts

import (
	"fmt"
	"time"
)

// Clock is a time of day with second precision
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// String formats the clock as HH:MM:SS
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// ClockOf extracts the time of day from t
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// HeadlineRecord is one scraped listing row
// ⭐ SSOT: produced only by the row parser, never mutated afterwards
type HeadlineRecord struct {
	Ticker string
	Date   time.Time // midnight in the listing's location
	Time   Clock
	Title  string
}

// Timestamp composes Date and Time into one instant
func (h HeadlineRecord) Timestamp() time.Time {
	y, m, d := h.Date.Date()
	return time.Date(y, m, d, h.Time.Hour, h.Time.Minute, h.Time.Second, 0, h.Date.Location())
}

// ScoredHeadline is a HeadlineRecord with both sentiment scores attached
type ScoredHeadline struct {
	HeadlineRecord

	// LexiconScore is the compound lexicon score in [-1, 1]
	LexiconScore float64

	// ModelScore is the classifier probability in [0, 1]; nil when no classifier is configured
	ModelScore *float64

	// EncodedTokens is the fixed-length classifier input; nil without a classifier
	EncodedTokens []int
}

// TimeWindow selects headlines by timestamp.
// Bounds are not validated: Start after End simply matches nothing.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, both bounds inclusive
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// RecentWindow returns the window covering the last hours up to now, truncated to seconds
func RecentWindow(now time.Time, hours int) TimeWindow {
	end := now.Truncate(time.Second)
	return TimeWindow{
		Start: end.Add(-time.Duration(hours) * time.Hour),
		End:   end,
	}
}
