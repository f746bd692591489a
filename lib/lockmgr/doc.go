// Package lockmgr implements exclusive locks on top of a shared filesystem.
// It provides a simple way to coordinate access to shared resources across
// independent processes that have nothing in common but a mounted directory.
//
// Core Functionality:
//   - Blocking and non-blocking lock acquisition
//   - Release that reports whether the caller actually held the lock
//   - Waiting for a lock to be released without taking it
//   - Probing whether a lock is currently held
//
// Implementation Approach:
//
//	Every key is mapped to a lock file below <root>/locks by the pathmap
//	package. The lock itself is an exclusive flock(2) on that file, the
//	content of the file is irrelevant and stays empty.
//
//	- Lock Acquisition: The lock file is created if needed (including its
//	  parent directories) and opened. A blocking LOCK_EX is requested and
//	  the open file is recorded in the manager's ownership map.
//
//	- Release: The file is removed from the ownership map, unlocked and
//	  closed. The lock file is NOT deleted, deleting it would open a window
//	  in which a waiter holds a lock on an unlinked file while a new locker
//	  creates a fresh one.
//
//	- Waiting: A shared lock is requested on a separate descriptor and
//	  dropped immediately once granted. Shared requests don't conflict with
//	  each other, so all waiters wake up together.
//
//	- Probing: Exists requests a non-blocking shared lock. If that fails the
//	  key is locked, otherwise the probe is released and the key is free.
//
// Ownership:
//
//	Locks are owned by the manager instance that acquired them, not by the
//	goroutine. Locking a key the manager already holds returns immediately,
//	and Wait on such a key polls the ownership map (every 10ms by default,
//	see WithPollInterval) until another goroutine unlocks it. Two managers
//	exclude each other even inside one process, since flock locks belong to
//	the open file description.
//
//	A held lock is not tied to the lifetime of its manager. It stays held
//	until Unlock is called on that manager or the process exits, even if
//	the manager itself is no longer referenced.
//
// Crash Safety:
//
//	The operating system drops all flock locks of a process when it exits,
//	so a crashed holder never blocks others. The orphaned lock file is
//	harmless, it is simply locked again by the next caller.
//
// Ordering:
//
//	There are no fairness guarantees, blocked lockers are woken in whatever
//	order the kernel decides. There is no timeout on Lock, use AcquireWithin
//	for a bounded attempt.
//
// Usage Example:
//
//	mapper := pathmap.NewPathMapper("/mnt/shared/sync")
//	locks := lockmgr.NewLockManager(mapper)
//
//	if err := locks.Lock("resource:123"); err != nil {
//	    // Handle error
//	}
//	// Use the resource safely
//	// ...
//	if _, err := locks.Unlock("resource:123"); err != nil {
//	    // Handle error
//	}
//
// LockRegistry wraps a manager and hands out one *Lock handle per key for
// code that prefers to pass lock objects around.
package lockmgr
