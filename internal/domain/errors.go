package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Handlers map them to status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("service unavailable")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrUpstream     = errors.New("upstream service failed")
	ErrTooLarge     = errors.New("payload too large")
	ErrUnsupported  = errors.New("unsupported media type")
)

// NotFoundError carries a message naming what was missing.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError carries a message for the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Conflict reasons that are not folder move rejections. Move rejections use
// the foldertree reasons (cycle, depth, unknown).
const (
	// ReasonDuplicate: a sibling with the same name exists. ResourceID names it.
	ReasonDuplicate = "duplicate"
	// ReasonNotEmpty: a folder still has subfolders and recursive was not set.
	ReasonNotEmpty = "not_empty"
)

// ConflictError is a 409. It covers duplicate names, non-empty deletes and
// folder moves the server rejects because the client's tree was stale.
type ConflictError struct {
	Message      string
	ResourceType string // folder, item, photo
	ResourceID   string // the existing or conflicting resource
	Reason       string // machine-readable, optional
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ConflictReason returns the Reason of a ConflictError in err's chain, or "".
func ConflictReason(err error) string {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Reason
	}
	return ""
}
