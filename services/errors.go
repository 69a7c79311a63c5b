package services

import (
	"errors"
	"fmt"
)

// Kind classifies service failures for the HTTP layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindPersistence
	KindUnauthorized
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is returned by every service operation. Message is safe to show to
// clients for validation and not-found errors; persistence causes stay in Err.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrPersistence:
		return e.Kind == KindPersistence
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	}
	return false
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func notFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func unauthorizedError(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func persistenceError(op string, err error) error {
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// AsError extracts the service error from err, if any.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
