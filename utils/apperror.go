package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so the HTTP layer can pick a status code.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Status returns the HTTP status code for the kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the error type returned by services. Code is the numeric
// code placed in the response envelope.
type AppError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches sentinels by kind and code so wrapped copies still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func NewValidation(code int, msg string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: msg}
}

func NewUnauthorized(code int, msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: code, Message: msg}
}

func NewForbidden(code int, msg string) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: msg}
}

func NewNotFound(code int, msg string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: msg}
}

func NewConflict(code int, msg string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: msg}
}

// Internal wraps an unexpected storage or runtime failure.
func Internal(code int, msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: code, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
