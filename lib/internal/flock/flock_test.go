package flock

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTwice(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lock")
	a, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func TestExclusiveConflicts(t *testing.T) {
	a, b := openTwice(t)

	if err := Lock(a); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if ok, err := TryLock(b); err != nil || ok {
		t.Errorf("TryLock on second descriptor should fail without error, got ok=%v err=%v", ok, err)
	}
	if ok, err := TryLockShared(b); err != nil || ok {
		t.Errorf("TryLockShared should conflict with an exclusive lock, got ok=%v err=%v", ok, err)
	}
	if err := Unlock(a); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if ok, err := TryLock(b); err != nil || !ok {
		t.Errorf("TryLock after unlock should succeed, got ok=%v err=%v", ok, err)
	}
}

func TestSharedLocksCoexist(t *testing.T) {
	a, b := openTwice(t)

	if err := LockShared(a); err != nil {
		t.Fatal(err)
	}
	if ok, err := TryLockShared(b); err != nil || !ok {
		t.Errorf("two shared locks should coexist, got ok=%v err=%v", ok, err)
	}
	if ok, err := TryLock(a); err != nil || ok {
		// upgrading while another shared holder exists must fail
		t.Errorf("exclusive upgrade should fail, got ok=%v err=%v", ok, err)
	}
}

func TestCloseReleases(t *testing.T) {
	a, b := openTwice(t)
	if err := Lock(a); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- Lock(b)
	}()

	select {
	case <-done:
		t.Fatal("Lock on second descriptor returned while the first still holds the lock")
	case <-time.After(50 * time.Millisecond):
	}

	_ = a.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Lock: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("closing the holder did not release the lock")
	}
}
