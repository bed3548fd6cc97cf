package finviz

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/pkg/logger"
)

// Date layouts seen in listing timestamp cells, tried in order
var dateLayouts = []string{
	"01/02/06",
	"Jan-02-06",
	"2006-01-02",
	"01/02/2006",
}

// Time-of-day layouts, applied to the upper-cased token
var timeLayouts = []string{
	"03:04PM",
	"3:04PM",
	"15:04",
	"15:04:05",
}

// ParseOptions controls how timestamp tokens are resolved
type ParseOptions struct {
	// Location the listing timestamps are expressed in; UTC when nil
	Location *time.Location

	// Now resolves relative date tokens such as "Today"; time.Now when zero
	Now time.Time

	Logger *logger.Logger
}

// ParseResult is the outcome of parsing one listing
type ParseResult struct {
	Records []contracts.HeadlineRecord
	Skipped int // malformed rows that were logged and dropped
}

// ParseNewsTable converts listing markup into headline records.
//
// Rows arrive newest first and grouped by date: a timestamp cell carrying
// only a time inherits the date of the closest preceding row that had one.
// A time-only row before any dated row is a ParseError, as is an
// unreadable date token. Rows without a title anchor, without a timestamp
// cell, or with an unreadable time are skipped.
func ParseNewsTable(markup, ticker string, opts ParseOptions) (*ParseResult, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithTicker(ticker)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &contracts.ParseError{Ticker: ticker, Row: -1, Reason: fmt.Sprintf("read markup: %v", err)}
	}

	result := &ParseResult{}
	var (
		lastDate time.Time
		hasDate  bool
		parseErr error
	)

	skip := func(i int, reason string) {
		result.Skipped++
		log.WithFields(map[string]interface{}{
			"row":    i,
			"reason": reason,
		}).Warn("Skipping malformed news row")
	}

	doc.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		anchor := row.Find("a").First()
		if anchor.Length() == 0 {
			skip(i, "missing title anchor")
			return true
		}

		cell := row.Find("td").First()
		if cell.Length() == 0 {
			skip(i, "missing timestamp cell")
			return true
		}

		tokens := strings.Fields(cell.Text())

		var timeToken string
		switch len(tokens) {
		case 1:
			if !hasDate {
				parseErr = &contracts.ParseError{Ticker: ticker, Row: i, Reason: "time-only row before any date"}
				return false
			}
			timeToken = tokens[0]
		case 2:
			date, err := parseDate(tokens[0], now, loc)
			if err != nil {
				parseErr = &contracts.ParseError{Ticker: ticker, Row: i, Reason: err.Error()}
				return false
			}
			lastDate, hasDate = date, true
			timeToken = tokens[1]
		default:
			skip(i, fmt.Sprintf("timestamp cell has %d tokens", len(tokens)))
			return true
		}

		clock, err := parseClock(timeToken)
		if err != nil {
			skip(i, err.Error())
			return true
		}

		result.Records = append(result.Records, contracts.HeadlineRecord{
			Ticker: ticker,
			Date:   lastDate,
			Time:   clock,
			Title:  anchor.Text(),
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	log.WithFields(map[string]interface{}{
		"records": len(result.Records),
		"skipped": result.Skipped,
	}).Debug("Parsed news table")

	return result, nil
}

// parseDate resolves a date token to midnight in loc
func parseDate(token string, now time.Time, loc *time.Location) (time.Time, error) {
	switch strings.ToLower(token) {
	case "today":
		return midnight(now.In(loc)), nil
	case "yesterday":
		return midnight(now.In(loc).AddDate(0, 0, -1)), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, token, loc); err == nil {
			return midnight(t), nil
		}
	}

	t, err := dateparse.ParseIn(token, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unreadable date %q", token)
	}
	return midnight(t.In(loc)), nil
}

// parseClock reads a 12-hour-with-meridiem (or 24-hour) time of day
func parseClock(token string) (contracts.Clock, error) {
	upper := strings.ToUpper(token)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return contracts.ClockOf(t), nil
		}
	}
	return contracts.Clock{}, fmt.Errorf("unreadable time %q", token)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
