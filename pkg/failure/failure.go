// Package failure defines the single error type used to decide how auto-release
// reports a problem and which exit code it returns.
//
// Expected errors are user-facing: bad input, a missing prerequisite or a
// policy violation. They are printed as a plain message. Every other error is
// treated as unexpected and printed with full detail.
//
//	if dirty && !allowDirty {
//		return failure.Expected("You have uncommitted changes... Commit your changes first")
//	}
//
// A benign failure halts the pipeline with exit code 0: there was nothing to
// do, and nothing went wrong.
package failure

import (
	"errors"
)

const (
	// CodeOK is returned for benign halts.
	CodeOK = 0
	// CodeFailure is the default exit code for any failure.
	CodeFailure = 1
	// CodeManualPublish is returned when the registry publish command was not
	// started by auto-release.
	CodeManualPublish = 2
)

// Error is a tagged error carrying its own exit code.
type Error struct {
	// Expected marks a user-facing error printed without diagnostic detail.
	Expected bool
	// Code is the process exit code.
	Code int
	// Msg is the message shown to the user.
	Msg string
	// Err is the optional underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Expected returns a user-facing error with exit code 1.
func Expected(msg string) *Error {
	return &Error{Expected: true, Code: CodeFailure, Msg: msg}
}

// ExpectedCode returns a user-facing error with a custom exit code.
func ExpectedCode(msg string, code int) *Error {
	return &Error{Expected: true, Code: code, Msg: msg}
}

// Benign returns an expected error that halts the pipeline with exit code 0.
func Benign(msg string) *Error {
	return &Error{Expected: true, Code: CodeOK, Msg: msg}
}

// Wrap returns a user-facing error with exit code 1 keeping err as its cause.
func Wrap(msg string, err error) *Error {
	return &Error{Expected: true, Code: CodeFailure, Msg: msg, Err: err}
}

// IsExpected reports whether err carries an expected *Error.
func IsExpected(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Expected
}

// IsBenign reports whether err is an expected halt with exit code 0.
func IsBenign(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Expected && fe.Code == CodeOK
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return CodeOK
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeFailure
}
