// Package flock wraps the flock(2) calls used by the lock manager and the
// counter store.
//
// flock locks belong to the open file description: two os.File values opened
// separately on the same path contend with each other even inside one
// process, and closing a file releases its lock. A process that dies releases
// all of its locks.
package flock

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Lock blocks until an exclusive lock on f is granted.
func Lock(f *os.File) error {
	return flock(f, unix.LOCK_EX)
}

// LockShared blocks until a shared lock on f is granted.
func LockShared(f *os.File) error {
	return flock(f, unix.LOCK_SH)
}

// TryLock attempts to get an exclusive lock without blocking.
// It returns false (and no error) if another open file description holds a conflicting lock.
func TryLock(f *os.File) (bool, error) {
	return tryFlock(f, unix.LOCK_EX|unix.LOCK_NB)
}

// TryLockShared attempts to get a shared lock without blocking.
func TryLockShared(f *os.File) (bool, error) {
	return tryFlock(f, unix.LOCK_SH|unix.LOCK_NB)
}

// Unlock releases any lock held on f.
func Unlock(f *os.File) error {
	return flock(f, unix.LOCK_UN)
}

// IsWouldBlock reports whether err means the lock is held elsewhere.
func IsWouldBlock(err error) bool {
	// EWOULDBLOCK and EAGAIN are distinct values on some older systems
	return errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN)
}

func tryFlock(f *os.File, how int) (bool, error) {
	err := flock(f, how)
	if err == nil {
		return true, nil
	}
	if IsWouldBlock(err) {
		return false, nil
	}
	return false, err
}

func flock(f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			if err != nil {
				return &os.PathError{Op: "flock", Path: f.Name(), Err: err}
			}
			return nil
		}
	}
}
