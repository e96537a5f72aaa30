package domain

import (
	"errors"
	"fmt"
)

// ErrVersionConflict is returned by repositories when an optimistic version
// check fails; the caller re-fetches and retries.
var ErrVersionConflict = errors.New("version conflict: row was modified concurrently")

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

type AccessDeniedError struct {
	Msg string
}

func (e *AccessDeniedError) Error() string { return e.Msg }

func AccessDeniedf(format string, args ...any) error {
	return &AccessDeniedError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InsufficientPaymentError carries the amounts so callers can show both.
type InsufficientPaymentError struct {
	Required float64
	Offered  float64
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: offered %s, required %s",
		FormatAmount(e.Offered), FormatAmount(e.Required))
}
