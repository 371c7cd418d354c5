// Package errors provides the coded errors reported by a sync run.
//
// Every failure that leaves a package is a *SyncError tagged with a stable
// Code. Codes are errors themselves, so callers test for a failure class
// with the standard library:
//
//	if errors.Is(err, syncerrors.ErrFileWrite) { ... }
//
// Details carry the structured context of the failure (the path that could
// not be written, the command that exited non-zero, its exit code and
// stderr). They are logged and shown by the CLI in debug mode.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. It is stable across releases and
// safe to assert on in tests.
type Code string

// Error lets a Code be used as an errors.Is target
func (c Code) Error() string {
	return string(c)
}

const (
	ErrInternal     Code = "INTERNAL"
	ErrInvalidInput Code = "INVALID_INPUT"

	// configuration and pattern rules
	ErrConfigValid    Code = "CONFIG_INVALID"
	ErrConfigWrite    Code = "CONFIG_WRITE"
	ErrPatternInvalid Code = "PATTERN_INVALID"

	// walking src and writing dest
	ErrFileRead   Code = "FILE_READ"
	ErrFileWrite  Code = "FILE_WRITE"
	ErrDirCreate  Code = "DIR_CREATE"
	ErrDirRead    Code = "DIR_READ"
	ErrPathEscape Code = "PATH_ESCAPE"

	// hooks and the git guard
	ErrCommandFailed Code = "COMMAND_FAILED"
	ErrGitProbe      Code = "GIT_PROBE"

	ErrWatch Code = "WATCH"
)

// SyncError is a failure tagged with a Code
type SyncError struct {
	Code    Code
	Message string
	Details map[string]interface{}
	// Wrapped is the underlying cause, if any
	Wrapped error
}

func build(code Code, cause error, message string) *SyncError {
	return &SyncError{
		Code:    code,
		Message: message,
		Details: map[string]interface{}{},
		Wrapped: cause,
	}
}

// New returns an error of the given code
func New(code Code, message string) *SyncError {
	return build(code, nil, message)
}

// Newf is New with a formatted message
func Newf(code Code, format string, args ...interface{}) *SyncError {
	return build(code, nil, fmt.Sprintf(format, args...))
}

// Wrap tags err with code. A nil err gives a nil *SyncError.
func Wrap(err error, code Code, message string) *SyncError {
	if err == nil {
		return nil
	}
	return build(code, err, message)
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, code Code, format string, args ...interface{}) *SyncError {
	if err == nil {
		return nil
	}
	return build(code, err, fmt.Sprintf(format, args...))
}

// WithDetail records a piece of context and returns e for chaining
func (e *SyncError) WithDetail(key string, value interface{}) *SyncError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func (e *SyncError) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Wrapped == nil {
		return msg
	}
	return msg + ": " + e.Wrapped.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Wrapped
}

// Is matches a Code, or another *SyncError with the same code
func (e *SyncError) Is(target error) bool {
	switch t := target.(type) {
	case Code:
		return e.Code == t
	case *SyncError:
		return t != nil && e.Code == t.Code
	}
	return false
}

// IsErrorCode reports whether the outermost *SyncError in err's chain has code
func IsErrorCode(err error, code Code) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr) && syncErr.Code == code
}

// GetErrorDetails returns the details of the outermost *SyncError in err's
// chain, or nil
func GetErrorDetails(err error) map[string]interface{} {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Details
	}
	return nil
}
