package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrLockConflict indicates the staging row is leased by another holder
type ErrLockConflict struct {
	RowID  uuid.UUID
	Holder string
}

func (e ErrLockConflict) Error() string {
	return "staging row is locked by another user: " + e.RowID.String()
}

// Is implements the errors.Is interface for ErrLockConflict
func (e ErrLockConflict) Is(target error) bool {
	t, ok := target.(ErrLockConflict)
	if !ok {
		return false
	}
	if t.RowID == uuid.Nil {
		return true
	}
	return e.RowID == t.RowID
}

// ErrInvalidStateTransition indicates the row is not in an eligible status
type ErrInvalidStateTransition struct {
	RowID uuid.UUID
	From  string
	To    string
}

func (e ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition for %s: %s -> %s", e.RowID, e.From, e.To)
}

// Is implements the errors.Is interface for ErrInvalidStateTransition
func (e ErrInvalidStateTransition) Is(target error) bool {
	t, ok := target.(ErrInvalidStateTransition)
	if !ok {
		return false
	}
	if t.RowID == uuid.Nil {
		return true
	}
	return e.RowID == t.RowID
}

// ErrOwnershipViolation indicates a reference crosses the tenant boundary
type ErrOwnershipViolation struct {
	Resource string
	ID       uuid.UUID
}

func (e ErrOwnershipViolation) Error() string {
	return fmt.Sprintf("%s %s does not belong to the caller's tenant", e.Resource, e.ID)
}

// Is implements the errors.Is interface for ErrOwnershipViolation
func (e ErrOwnershipViolation) Is(target error) bool {
	t, ok := target.(ErrOwnershipViolation)
	if !ok {
		return false
	}
	if t.Resource != "" && t.Resource != e.Resource {
		return false
	}
	return t.ID == uuid.Nil || t.ID == e.ID
}

// ErrStaleVersion indicates an optimistic concurrency mismatch
type ErrStaleVersion struct {
	Resource string
	ID       uuid.UUID
}

func (e ErrStaleVersion) Error() string {
	return fmt.Sprintf("stale version for %s %s", e.Resource, e.ID)
}

// Is implements the errors.Is interface for ErrStaleVersion
func (e ErrStaleVersion) Is(target error) bool {
	t, ok := target.(ErrStaleVersion)
	if !ok {
		return false
	}
	if t.Resource != "" && t.Resource != e.Resource {
		return false
	}
	return t.ID == uuid.Nil || t.ID == e.ID
}

// ErrNotFound indicates a missing row
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Is implements the errors.Is interface for ErrNotFound
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	if t.Resource != "" && t.Resource != e.Resource {
		return false
	}
	return t.ID == uuid.Nil || t.ID == e.ID
}

// ErrEntityInUse blocks deleting an entity that is still referenced
type ErrEntityInUse struct {
	EntityID uuid.UUID
	Usage    EntityUsage
}

// EntityUsage counts the rows referencing an entity
type EntityUsage struct {
	Transactions int64 `json:"transactions"`
	Accounts     int64 `json:"accounts"`
	Staging      int64 `json:"staging"`
}

// Total sums every reference kind
func (u EntityUsage) Total() int64 {
	return u.Transactions + u.Accounts + u.Staging
}

func (e ErrEntityInUse) Error() string {
	return fmt.Sprintf("entity %s is in use by %d rows", e.EntityID, e.Usage.Total())
}

// Is implements the errors.Is interface for ErrEntityInUse
func (e ErrEntityInUse) Is(target error) bool {
	t, ok := target.(ErrEntityInUse)
	if !ok {
		return false
	}
	return t.EntityID == uuid.Nil || t.EntityID == e.EntityID
}

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failing field of one request
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is matches any ValidationError
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	return ok
}

// Add appends a field failure
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed
func (e ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsRetryable reports whether the caller may retry the same request unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockConflict{}) || errors.Is(err, ErrStaleVersion{})
}
