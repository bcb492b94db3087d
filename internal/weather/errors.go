package weather

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoMatch is returned by a Geocoder when a name resolves to nothing.
	ErrNoMatch = errors.New("no geocoding match")

	// ErrMissingField is returned by Normalize for days lacking a mandatory field.
	ErrMissingField = errors.New("missing mandatory field")

	// ErrAggregationGap means no day records fell inside a window. Not a failure.
	ErrAggregationGap = errors.New("no day records in window")

	// ErrForeignKey marks writes referencing a location that does not exist.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrStorageUnavailable marks loss of storage connectivity; it aborts a batch.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned by read operations when nothing matches.
	ErrNotFound = errors.New("not found")
)

// ResolutionError reports that a place name could not be resolved.
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError reports an unusable remote daily series.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError reports a failed storage operation for one day or stat.
type PersistenceError struct {
	Op         string
	LocationID int64
	Date       time.Time
	PeriodDays int
	Err        error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("%s location=%d", e.Op, e.LocationID)
	if !e.Date.IsZero() {
		msg += " date=" + e.Date.Format(DateLayout)
	}
	if e.PeriodDays > 0 {
		msg += fmt.Sprintf(" period=%dd", e.PeriodDays)
	}
	return msg + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }
