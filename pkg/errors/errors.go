// Copyright © 2023 One Concern

// Package errors augments the standard errors with a Wrap() method,
// so sentinel errors may carry a nested cause without resorting to
// fmt.Errorf("%w", err) at every call site.
package errors

import (
	stderr "errors"
	"fmt"
)

var _ error = New("")

// New builds a new Error from a message
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Newf builds a new Error from a format string
func Newf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Error is an error augmented with a nested cause.
//
// Unlike github.com/pkg/errors, wrapping starts from an error value,
// not from text, so sentinels remain comparable with errors.Is.
type Error struct {
	msg string
	err error
}

// Error message, with the nested cause appended when present
func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Unwrap the nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap returns a copy of the sentinel with a nested cause attached.
// The receiver is not mutated, so package-level sentinels stay pristine
// across concurrent users. An already nested error is chained, not
// replaced.
func (e *Error) Wrap(err error) *Error {
	if e == nil {
		return nil
	}
	if e.err != nil {
		return &Error{msg: e.msg, err: &Error{msg: e.err.Error(), err: err}}
	}
	return &Error{msg: e.msg, err: err}
}

// WrapMessage attaches an explanatory message as the nested cause
func (e *Error) WrapMessage(format string, args ...interface{}) *Error {
	if e == nil {
		return nil
	}
	return &Error{msg: e.msg, err: Newf(format, args...)}
}

// Is reports a match on the sentinel itself or on message equality,
// so wrapped copies of a sentinel still compare equal to it
func (e *Error) Is(target error) bool {
	if e == target {
		return true
	}
	if other, ok := target.(*Error); ok && other != nil {
		return e.msg == other.msg
	}
	return false
}

// As finds the first error in err's chain that matches target
// (a shortcut to the standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to the standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
