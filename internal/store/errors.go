package store

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError indicates that an input violates a field constraint.
// No partial mutation occurs when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NotFoundError indicates that a referenced record does not exist where
// existence is required
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// CycleError indicates that a folder move would make a folder its own
// ancestor. It is raised before any pointer change.
type CycleError struct {
	FolderID uuid.UUID
	TargetID uuid.UUID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("moving folder %s under %s would create a cycle", e.FolderID, e.TargetID)
}

// PersistenceError indicates that the durable snapshot write failed after
// an otherwise valid in-memory mutation. The in-memory state is NOT rolled
// back; the store favors the live session and surfaces the failure for the
// caller to present as a warning.
type PersistenceError struct {
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist collection %q: %v", e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IntegrityError indicates that a stored snapshot could not be decoded,
// for example because a date string is unparsable. The whole load is
// rejected rather than silently defaulting individual records.
type IntegrityError struct {
	Collection string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("corrupt snapshot for collection %q: %v", e.Collection, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
