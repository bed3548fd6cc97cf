package watchlist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Watchlist is the set of tickers the scheduler analyses
type Watchlist struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Defaults Defaults `yaml:"defaults" json:"defaults"`
	Tickers  []Entry  `yaml:"tickers" json:"tickers"`
}

// Meta identifies the watchlist in logs
type Meta struct {
	Name string `yaml:"name" json:"name"`
}

// Defaults apply to entries that leave a field unset
type Defaults struct {
	IntervalHours int  `yaml:"interval_hours" json:"interval_hours"`
	LexiconOnly   bool `yaml:"lexicon_only" json:"lexicon_only"`
}

// Entry is one watched ticker
type Entry struct {
	Symbol        string `yaml:"symbol" json:"symbol"`
	IntervalHours int    `yaml:"interval_hours,omitempty" json:"interval_hours,omitempty"`
	LexiconOnly   *bool  `yaml:"lexicon_only,omitempty" json:"lexicon_only,omitempty"`
}

// Target is an entry with defaults resolved
type Target struct {
	Symbol        string
	IntervalHours int
	LexiconOnly   bool
}

// Load reads a watchlist YAML file
// Unknown fields fail fast so typos never silently drop a ticker
func Load(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates watchlist YAML
func Parse(data []byte) (*Watchlist, error) {
	var wl Watchlist
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&wl); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	if err := Validate(&wl); err != nil {
		return nil, err
	}

	return &wl, nil
}

// Single returns a one-ticker watchlist
func Single(ticker string, intervalHours int) *Watchlist {
	return &Watchlist{
		Meta:     Meta{Name: "default"},
		Defaults: Defaults{IntervalHours: intervalHours},
		Tickers:  []Entry{{Symbol: strings.ToUpper(ticker)}},
	}
}

// Validate checks symbols and intervals
func Validate(wl *Watchlist) error {
	if len(wl.Tickers) == 0 {
		return fmt.Errorf("watchlist: at least one ticker is required")
	}
	if wl.Defaults.IntervalHours < 0 {
		return fmt.Errorf("watchlist: defaults.interval_hours must not be negative")
	}

	seen := make(map[string]bool, len(wl.Tickers))
	for i, e := range wl.Tickers {
		symbol := strings.ToUpper(strings.TrimSpace(e.Symbol))
		if symbol == "" {
			return fmt.Errorf("watchlist: tickers[%d].symbol is required", i)
		}
		if seen[symbol] {
			return fmt.Errorf("watchlist: duplicate ticker %s", symbol)
		}
		seen[symbol] = true

		if e.IntervalHours < 0 {
			return fmt.Errorf("watchlist: tickers[%d].interval_hours must not be negative", i)
		}
		if e.IntervalHours == 0 && wl.Defaults.IntervalHours == 0 {
			return fmt.Errorf("watchlist: %s has no interval_hours and no default", symbol)
		}
	}

	return nil
}

// Targets resolves defaults for every entry, in file order
func (wl *Watchlist) Targets() []Target {
	targets := make([]Target, 0, len(wl.Tickers))
	for _, e := range wl.Tickers {
		t := Target{
			Symbol:        strings.ToUpper(strings.TrimSpace(e.Symbol)),
			IntervalHours: wl.Defaults.IntervalHours,
			LexiconOnly:   wl.Defaults.LexiconOnly,
		}
		if e.IntervalHours > 0 {
			t.IntervalHours = e.IntervalHours
		}
		if e.LexiconOnly != nil {
			t.LexiconOnly = *e.LexiconOnly
		}
		targets = append(targets, t)
	}
	return targets
}

// Hash fingerprints the watchlist for run logs
func Hash(wl *Watchlist) (string, error) {
	jsonBytes, err := json.Marshal(wl)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
