package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// FieldError is one entry of a field-level validation report.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type ValidationError struct {
	Field  string
	Msg    string
	Fields []FieldError
	Err    error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Msg)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ErrNotEnoughSeats is returned when a bus has fewer available seats than a
// booking asks for.
var ErrNotEnoughSeats = ValidationError{Msg: "Not enough seats available"}

// TotalBelowHeld rejects a bus capacity smaller than the seats already held
// by bookings.
func TotalBelowHeld(held int) ValidationError {
	return ValidationError{
		Field: "totalSeats",
		Msg:   fmt.Sprintf("Total seats cannot be less than the %d seats already booked", held),
	}
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// UnauthorizedError covers both missing credentials and an authenticated
// caller that is not allowed to touch the resource.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "Not authorized"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// FieldErrors returns the field-level report carried by a ValidationError.
func FieldErrors(err error) []FieldError {
	var target ValidationError
	if !errors.As(err, &target) {
		return nil
	}
	if len(target.Fields) > 0 {
		return target.Fields
	}
	if target.Field != "" {
		return []FieldError{{Field: target.Field, Msg: target.Msg}}
	}
	return nil
}
