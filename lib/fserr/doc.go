// Package fserr defines the error taxonomy shared by the filesystem
// synchronization primitives.
//
// Every error returned by pathmap, lockmgr and counter is an *Error carrying
// a RetCode. Callers test for a class of failure with errors.Is against the
// exported sentinels:
//
//	if errors.Is(err, fserr.ErrNotFound) {
//	    // counter has no value
//	}
//
// The primitives never retry internally, so every error is terminal for the
// call that produced it. The underlying OS error (if any) is available
// through errors.Unwrap / errors.As.
package fserr
