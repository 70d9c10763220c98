package radar

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a refresh is requested while a load is in flight
	ErrBusy = errors.New("a load is already in progress")
	// ErrAlreadyActive is returned when Activate is called more than once
	ErrAlreadyActive = errors.New("controller already activated")
	// ErrNotActive is returned when Refresh is called before Activate
	ErrNotActive = errors.New("controller not activated")
	// ErrNotFound is returned when a ticker is not in the current snapshot
	ErrNotFound = errors.New("opportunity not found")
)

// LoadError describes a failed fetch of the snapshot. It is logged and reported to
// observers but never returned from Activate or Refresh.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load opportunities from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
