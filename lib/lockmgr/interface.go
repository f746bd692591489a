package lockmgr

// ILockManager defines the interface for a lock provider.
type ILockManager interface {
	// Lock acquires the exclusive lock for the given key, blocking until it is granted.
	// There is no timeout, use AcquireWithin for a bounded acquisition.
	// Locking a key that this manager already holds returns immediately.
	Lock(key string) (err error)

	// TryLock acquires the lock for the given key if it is free and returns immediately otherwise.
	// Return a boolean indicating whether the lock is now held by this manager.
	TryLock(key string) (ok bool, err error)

	// Unlock releases the lock for the given key.
	// Return a boolean indicating whether this manager actually held the lock.
	// The lock file is left on disk.
	Unlock(key string) (ok bool, err error)

	// Wait blocks until the lock for the given key is not held by anyone, without taking ownership.
	// The method returns immediately if the key was never locked.
	Wait(key string) (err error)

	// Exists reports whether the lock for the given key is currently held.
	Exists(key string) (locked bool, err error)
}
