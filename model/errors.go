package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrRuleInactive = errors.New("rule is inactive")
	ErrStorage      = errors.New("storage error")
	ErrTicketLimit  = errors.New("open ticket limit reached")
	ErrTicketClosed = errors.New("ticket is closed")
	ErrNotPermitted = errors.New("not permitted")
)

// ValidationError describes malformed input rejected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PermissionError is returned when the acting member may not perform an action.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "not permitted: " + e.Reason
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrNotPermitted
}

// Denied builds a PermissionError.
func Denied(reason string) error {
	return &PermissionError{Reason: reason}
}

// StorageErr tags err as a storage failure while keeping the driver error in the chain.
func StorageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
