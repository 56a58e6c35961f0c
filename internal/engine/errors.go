package engine

import (
	"errors"
	"fmt"

	"geotube/internal/engine/geo"
)

// Failure taxonomy for the search orchestrator. Every failure leaving the
// engine wraps exactly one of these sentinels.
var (
	// ErrInvalidCoordinate is surfaced before any upstream call; never retried.
	ErrInvalidCoordinate = geo.ErrInvalidCoordinate

	// ErrMissingConfiguration means no upstream searcher is configured.
	ErrMissingConfiguration = errors.New("video search is not configured")

	// ErrNoResults means every candidate was exhausted with zero items.
	ErrNoResults = errors.New("no videos found")

	// ErrUpstream means the last attempt failed at the transport/auth level
	// rather than returning an empty result set.
	ErrUpstream = errors.New("video search upstream failed")
)

// SearchError couples a taxonomy sentinel with the intent and query of
// the failed search, so callers can phrase the failure for the user
// without touching raw transport errors.
type SearchError struct {
	Err    error // one of the sentinels above, possibly wrapping a cause
	Intent IntentKind
	Query  string
}

func (e *SearchError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("search (%s, query %q): %v", e.Intent, e.Query, e.Err)
	}
	return fmt.Sprintf("search (%s): %v", e.Intent, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// UserMessage returns the human-readable message for this failure.
// One message per taxonomy kind, intent-specific for NoResults.
func (e *SearchError) UserMessage() string {
	switch {
	case errors.Is(e.Err, ErrInvalidCoordinate):
		return "that location is outside the valid coordinate range"
	case errors.Is(e.Err, ErrMissingConfiguration):
		return "video search is not configured on this server"
	case errors.Is(e.Err, ErrUpstream):
		return "video search is temporarily unavailable, try again in a moment"
	}

	var msg string
	switch e.Intent {
	case IntentCurrentLocation:
		msg = "no videos near your current location"
	case IntentSelectedLocation:
		msg = "no videos near the selected location"
	default:
		msg = "no videos in this area"
	}
	if e.Query != "" {
		msg += fmt.Sprintf(" for %q", e.Query)
	}
	return msg
}

// searchErr wraps err with the session's intent and query.
func searchErr(err error, intent IntentKind, query string) *SearchError {
	return &SearchError{Err: err, Intent: intent, Query: query}
}
