package testing

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ValentinKolb/fsSync/lib/lockmgr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
)

// LockManagerFactory creates a new lock manager working on mapper.
// Managers created by the same factory on the same root must exclude each other.
type LockManagerFactory func(mapper pathmap.IPathMapper) lockmgr.ILockManager

const (
	// how long a call has to stay blocked to count as blocked
	blockedFor = 100 * time.Millisecond
	// how long a blocked call may take to return after it was released
	releasedWithin = 5 * time.Second
)

// RunLockManagerTests runs a comprehensive test suite for an ILockManager implementation.
func RunLockManagerTests(t *testing.T, name string, factory LockManagerFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("LockUnlock", func(t *testing.T) {
			testLockUnlock(t, factory)
		})

		t.Run("UnlockNotHeld", func(t *testing.T) {
			testUnlockNotHeld(t, factory)
		})

		t.Run("ReLockSameManager", func(t *testing.T) {
			testReLockSameManager(t, factory)
		})

		t.Run("LockBlocksOtherManager", func(t *testing.T) {
			testLockBlocksOtherManager(t, factory)
		})

		t.Run("TryLock", func(t *testing.T) {
			testTryLock(t, factory)
		})

		t.Run("WaitWithoutLockFile", func(t *testing.T) {
			testWaitWithoutLockFile(t, factory)
		})

		t.Run("WaitBlocksUntilRelease", func(t *testing.T) {
			testWaitBlocksUntilRelease(t, factory)
		})

		t.Run("WaitSameManager", func(t *testing.T) {
			testWaitSameManager(t, factory)
		})

		t.Run("Exists", func(t *testing.T) {
			testExists(t, factory)
		})

		t.Run("OrphanedLockFile", func(t *testing.T) {
			testOrphanedLockFile(t, factory)
		})

		t.Run("IndependentKeys", func(t *testing.T) {
			testIndependentKeys(t, factory)
		})

		t.Run("LockOutlivesManager", func(t *testing.T) {
			testLockOutlivesManager(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func newMapper(t testing.TB) pathmap.IPathMapper {
	return pathmap.NewPathMapper(t.TempDir())
}

func mustLock(t testing.TB, mgr lockmgr.ILockManager, key string) {
	t.Helper()
	if err := mgr.Lock(key); err != nil {
		t.Fatalf("Lock(%s) failed: %v", key, err)
	}
}

func mustUnlock(t testing.TB, mgr lockmgr.ILockManager, key string) {
	t.Helper()
	ok, err := mgr.Unlock(key)
	if err != nil {
		t.Fatalf("Unlock(%s) failed: %v", key, err)
	}
	if !ok {
		t.Fatalf("Unlock(%s) reported that the lock was not held", key)
	}
}

func expectExists(t testing.TB, mgr lockmgr.ILockManager, key string, want bool) {
	t.Helper()
	locked, err := mgr.Exists(key)
	if err != nil {
		t.Fatalf("Exists(%s) failed: %v", key, err)
	}
	if locked != want {
		t.Errorf("Exists(%s) = %t, want %t", key, locked, want)
	}
}

// async runs fn in a goroutine and returns a channel receiving its result.
func async(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	return done
}

func expectBlocked(t testing.TB, done <-chan error, what string) {
	t.Helper()
	select {
	case err := <-done:
		t.Fatalf("%s returned while the lock was held (err=%v)", what, err)
	case <-time.After(blockedFor):
	}
}

func expectReturned(t testing.TB, done <-chan error, what string) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("%s failed: %v", what, err)
		}
	case <-time.After(releasedWithin):
		t.Fatalf("%s did not return within %s after release", what, releasedWithin)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testLockUnlock(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)
	b := factory(mapper)

	key := "lock-unlock"
	mustLock(t, a, key)

	path := mapper.Resolve(key, lockmgr.Category)
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected lock file %s to exist: %v", path, err)
	}

	expectExists(t, a, key, true)
	expectExists(t, b, key, true)

	mustUnlock(t, a, key)

	expectExists(t, a, key, false)
	expectExists(t, b, key, false)

	// the lock file is kept, only the lock is released
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected lock file %s to survive unlock: %v", path, err)
	}
}

func testUnlockNotHeld(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)
	b := factory(mapper)

	ok, err := a.Unlock("never-locked")
	if err != nil || ok {
		t.Errorf("Unlock of a never locked key: ok=%v err=%v, want false, nil", ok, err)
	}

	// b can't release a's lock
	mustLock(t, a, "foreign")
	ok, err = b.Unlock("foreign")
	if err != nil || ok {
		t.Errorf("Unlock of a foreign lock: ok=%v err=%v, want false, nil", ok, err)
	}
	expectExists(t, b, "foreign", true)
	mustUnlock(t, a, "foreign")

	// double unlock
	ok, err = a.Unlock("foreign")
	if err != nil || ok {
		t.Errorf("second Unlock: ok=%v err=%v, want false, nil", ok, err)
	}
}

func testReLockSameManager(t *testing.T, factory LockManagerFactory) {
	a := factory(newMapper(t))

	mustLock(t, a, "reentry")
	expectReturned(t, async(func() error { return a.Lock("reentry") }), "second Lock on the same manager")
	mustUnlock(t, a, "reentry")
	expectExists(t, a, "reentry", false)
}

func testLockBlocksOtherManager(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)
	b := factory(mapper)

	key := "contended"
	mustLock(t, a, key)

	done := async(func() error { return b.Lock(key) })
	expectBlocked(t, done, "Lock on a held key")

	mustUnlock(t, a, key)
	expectReturned(t, done, "Lock after release")

	// b owns it now
	if ok, err := a.TryLock(key); err != nil || ok {
		t.Errorf("TryLock while b holds the lock: ok=%v err=%v", ok, err)
	}
	mustUnlock(t, b, key)
}

func testTryLock(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)
	b := factory(mapper)

	key := "try"
	if ok, err := a.TryLock(key); err != nil || !ok {
		t.Fatalf("TryLock on a free key: ok=%v err=%v", ok, err)
	}
	if ok, err := a.TryLock(key); err != nil || !ok {
		t.Errorf("TryLock on a key held by the same manager: ok=%v err=%v", ok, err)
	}
	if ok, err := b.TryLock(key); err != nil || ok {
		t.Errorf("TryLock on a key held by another manager: ok=%v err=%v", ok, err)
	}

	mustUnlock(t, a, key)

	if ok, err := b.TryLock(key); err != nil || !ok {
		t.Errorf("TryLock after release: ok=%v err=%v", ok, err)
	}
	mustUnlock(t, b, key)
}

func testWaitWithoutLockFile(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)

	expectReturned(t, async(func() error { return a.Wait("nothing-here") }), "Wait without lock file")

	// Wait must not create anything
	path := mapper.Resolve("nothing-here", lockmgr.Category)
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Wait created %s", path)
	}
}

func testWaitBlocksUntilRelease(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)
	b := factory(mapper)
	c := factory(mapper)

	key := "wait"
	mustLock(t, a, key)

	first := async(func() error { return b.Wait(key) })
	second := async(func() error { return c.Wait(key) })
	expectBlocked(t, first, "Wait on a held key")
	expectBlocked(t, second, "Wait on a held key")

	mustUnlock(t, a, key)
	expectReturned(t, first, "Wait after release")
	expectReturned(t, second, "Wait after release")

	// waiting does not take ownership
	expectExists(t, a, key, false)
	if ok, _ := b.Unlock(key); ok {
		t.Errorf("Wait left the waiter holding the lock")
	}
}

func testWaitSameManager(t *testing.T, factory LockManagerFactory) {
	a := factory(newMapper(t))

	key := "wait-self"
	mustLock(t, a, key)

	done := async(func() error { return a.Wait(key) })
	expectBlocked(t, done, "Wait on a key held by the same manager")

	mustUnlock(t, a, key)
	expectReturned(t, done, "Wait after release by the same manager")
}

func testExists(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)
	b := factory(mapper)

	expectExists(t, a, "exists", false)

	mustLock(t, a, "exists")
	expectExists(t, b, "exists", true)

	// probing must not disturb the holder
	expectExists(t, b, "exists", true)
	if ok, _ := b.TryLock("exists"); ok {
		t.Errorf("TryLock succeeded after Exists probes")
	}

	mustUnlock(t, a, "exists")
	expectExists(t, b, "exists", false)
}

func testOrphanedLockFile(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)

	// a lock file left behind by a crashed holder
	key := "orphan"
	path := mapper.Resolve(key, lockmgr.Category)
	if err := mapper.EnsureDirectories(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	expectExists(t, a, key, false)
	expectReturned(t, async(func() error { return a.Wait(key) }), "Wait on an orphaned lock file")
	mustLock(t, a, key)
	mustUnlock(t, a, key)
}

func testIndependentKeys(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)
	a := factory(mapper)
	b := factory(mapper)

	mustLock(t, a, "one")
	expectReturned(t, async(func() error { return b.Lock("two") }), "Lock on an unrelated key")

	expectExists(t, a, "two", true)
	expectExists(t, b, "one", true)

	mustUnlock(t, a, "one")
	mustUnlock(t, b, "two")

	entries, err := os.ReadDir(filepath.Join(mapper.Root(), lockmgr.Category))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Errorf("expected shard directories below %s", lockmgr.Category)
	}
}

func testLockOutlivesManager(t *testing.T, factory LockManagerFactory) {
	mapper := newMapper(t)

	// the manager is unreachable once the closure returns, the lock stays
	// held until the test process exits
	key := "unreferenced"
	func() {
		mustLock(t, factory(mapper), key)
	}()

	// give finalizers a chance to run
	for i := 0; i < 3; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	other := factory(mapper)
	expectExists(t, other, key, true)
	if ok, err := other.TryLock(key); err != nil || ok {
		t.Errorf("TryLock on a lock held by a collected manager: ok=%v err=%v", ok, err)
	}
}
