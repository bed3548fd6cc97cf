package contracts

import (
	"errors"
	"fmt"
)

// ErrNoNewsTable is wrapped by FetchError when the page carries no news listing
var ErrNoNewsTable = errors.New("news table not found")

// FetchError reports a failure to retrieve the news listing.
// It aborts the run and is never retried.
type FetchError struct {
	Ticker     string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch news for %s: status %d: %v", e.Ticker, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch news for %s: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports listing markup that breaks the date carry-over rule
type ParseError struct {
	Ticker string
	Row    int // zero-based row index
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse news for %s: row %d: %s", e.Ticker, e.Row, e.Reason)
}

// EncodingError reports a vocabulary that cannot encode anything
type EncodingError struct {
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encoding: %s: %v", e.Reason, e.Err)
	}
	return "encoding: " + e.Reason
}

func (e *EncodingError) Unwrap() error { return e.Err }
