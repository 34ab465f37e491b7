package models

import "fmt"

// FetchError means one feed source could not be fetched or parsed. The
// aggregation pipeline logs it and moves on; it never fails the whole run.
type FetchError struct {
	SourceID string
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %s (%s): %v", e.SourceID, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistError means a curation store write failed. It is surfaced to the
// caller of the curation operation; nothing retries it automatically.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// NotFoundError means an operation referenced a persisted record id that
// does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("article %s not found", e.ID)
}

// InvalidTransitionError means a curation operation was attempted on an
// article whose status does not allow it.
type InvalidTransitionError struct {
	Action string
	From   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s article with status %q", e.Action, e.From)
}

// ValidationError rejects a malformed feed source before it reaches the
// registry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid feed source: %s %s", e.Field, e.Reason)
}
