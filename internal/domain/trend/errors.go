package trend

import (
	"errors"
	"fmt"
)

// ErrNoEndpointAvailable is returned when every mirror failed its probe.
// It aborts the cycle.
var ErrNoEndpointAvailable = errors.New("no mirror endpoint available")

// AccountFetchError reports a failed timeline request for one account.
// The cycle treats that account's timeline as empty and continues.
type AccountFetchError struct {
	Username   string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *AccountFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch timeline for %s from %s: %v", e.Username, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("fetch timeline for %s from %s: unexpected status %d", e.Username, e.Endpoint, e.StatusCode)
}

func (e *AccountFetchError) Unwrap() error {
	return e.Err
}

// EntryParseError reports a malformed timeline entry. The entry is skipped.
type EntryParseError struct {
	Username string
	Index    int
	Reason   string
	Err      error
}

func (e *EntryParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("entry %d of %s: %s: %v", e.Index, e.Username, e.Reason, e.Err)
	}
	return fmt.Sprintf("entry %d of %s: %s", e.Index, e.Username, e.Reason)
}

func (e *EntryParseError) Unwrap() error {
	return e.Err
}

// StatsParseError describes engagement text that yielded no usable numbers.
// It never leaves the stats parser; callers get zero metrics instead.
type StatsParseError struct {
	Raw    string
	Reason string
}

func (e *StatsParseError) Error() string {
	return fmt.Sprintf("parse stats %q: %s", e.Raw, e.Reason)
}
