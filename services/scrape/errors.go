package scrape

import (
	"context"
	"errors"
	"fmt"
)

// Failure taxonomy for aggregated calls. Fan-out captures these per source
// in a SourceOutcome; single-source calls propagate them directly.
var (
	// ErrSourceUnavailable marks a network failure or markup that no longer
	// matches the adapter's expectations.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrTimeout marks an adapter that exceeded the aggregation deadline.
	ErrTimeout = errors.New("source timed out")

	// ErrNotFound marks a valid source asked for an unknown identifier.
	ErrNotFound = errors.New("content not found")

	// ErrMalformedResult marks a structurally invalid raw record. The
	// aggregator treats it as a per-item skip, never a per-source failure.
	ErrMalformedResult = errors.New("malformed result")

	// ErrNoMatchingSource means the type/source filter excluded every
	// adapter. It is the only whole-call failure during fan-out.
	ErrNoMatchingSource = errors.New("no matching source")
)

// SourceError attributes a failure to the source that produced it.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func sourceErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Source: key, Err: err}
}

// failureReason maps an adapter error onto the short reason string reported
// in SourceOutcome. Context deadline errors collapse into the timeout reason
// so callers see one vocabulary regardless of where the deadline fired.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrMalformedResult):
		return "malformed result"
	case errors.Is(err, ErrSourceUnavailable):
		return "source unavailable"
	default:
		return err.Error()
	}
}
