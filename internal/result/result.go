// Package result holds the outcome type returned by the shopping use-cases.
//
// A Result is exactly one of Success (carrying a value), Error (carrying a
// display-ready message and the underlying cause) or Loading. Callers never
// receive a bare error from a use-case; they inspect the Result instead.
package result

import (
	"encoding/json"
	"errors"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Error is the single failure variant. Message is safe to show to a user;
// Cause keeps the original error for logging and errors.Is checks.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type Result[T any] struct {
	status Status
	value  T
	err    *Error
}

func Success[T any](v T) Result[T] {
	return Result[T]{status: StatusSuccess, value: v}
}

func Failure[T any](message string, cause error) Result[T] {
	return Result[T]{status: StatusError, err: &Error{Message: message, Cause: cause}}
}

func Loading[T any]() Result[T] {
	return Result[T]{status: StatusLoading}
}

func (r Result[T]) Status() Status { return r.status }

func (r Result[T]) IsSuccess() bool { return r.status == StatusSuccess }

func (r Result[T]) IsError() bool { return r.status == StatusError }

func (r Result[T]) IsLoading() bool { return r.status == StatusLoading }

// Value returns the payload. It is the zero value unless the result is a Success.
func (r Result[T]) Value() T { return r.value }

// Message returns the display message of an Error result, or "".
func (r Result[T]) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Message
}

// Err returns the *Error of a failed result, or nil.
func (r Result[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Get converts the result back to Go's (value, error) form. A Loading result
// yields ErrPending.
func (r Result[T]) Get() (T, error) {
	switch r.status {
	case StatusSuccess:
		return r.value, nil
	case StatusError:
		return r.value, r.err
	default:
		return r.value, ErrPending
	}
}

var ErrPending = errors.New("result still loading")

type wire[T any] struct {
	Status  Status `json:"status"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	w := wire[T]{Status: r.status}
	switch r.status {
	case StatusSuccess:
		w.Data = &r.value
	case StatusError:
		w.Message = r.err.Message
	}
	return json.Marshal(w)
}
