package fserr

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess             RetCode = iota // 0: Operation executed successfully.
	RetCStorageUnavailable                 // 1: A directory or file could not be created, opened or removed.
	RetCNotFound                           // 2: The requested key has no stored value.
	RetCLockOperationFailed                // 3: Acquiring, probing or releasing an advisory lock failed.
	RetCUnknown                            // 4: Not an fssync error.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCStorageUnavailable:
		return "StorageUnavailable"
	case RetCNotFound:
		return "NotFound"
	case RetCLockOperationFailed:
		return "LockOperationFailed"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code, a message and optionally the OS error that
// caused it.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
	Err  error   // The underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fssync (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("fssync (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
// This makes the package level sentinels usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// Wrap creates a new Error with the given code and message that wraps err.
func Wrap(code RetCode, err error, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Sentinels
// --------------------------------------------------------------------------

var (
	ErrStorageUnavailable  = NewError(RetCStorageUnavailable, "storage unavailable")
	ErrNotFound            = NewError(RetCNotFound, "not found")
	ErrLockOperationFailed = NewError(RetCLockOperationFailed, "lock operation failed")
)

// CodeOf returns the RetCode of err if it is (or wraps) an *Error.
// RetCSuccess is returned for nil and RetCUnknown for foreign errors.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCUnknown
}
