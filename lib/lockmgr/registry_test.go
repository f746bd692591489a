package lockmgr

import (
	"testing"

	"github.com/ValentinKolb/fsSync/lib/pathmap"
)

func TestRegistryReturnsSameHandle(t *testing.T) {
	reg := NewLockRegistry(NewLockManager(pathmap.NewPathMapper(t.TempDir())))

	a := reg.Get("x")
	b := reg.Get("x")
	c := reg.Get("y")

	if a != b {
		t.Errorf("expected the same handle for the same key")
	}
	if a == c {
		t.Errorf("expected different handles for different keys")
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 handles, got %d", reg.Len())
	}

	reg.Forget("x")
	if reg.Get("x") == a {
		t.Errorf("expected a new handle after Forget")
	}
}

func TestRegistryHandleDelegates(t *testing.T) {
	reg := NewLockRegistry(NewLockManager(pathmap.NewPathMapper(t.TempDir())))
	l := reg.Get("delegate")

	if l.Key() != "delegate" {
		t.Errorf("unexpected key %s", l.Key())
	}
	if err := l.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if locked, err := l.Exists(); err != nil || !locked {
		t.Errorf("expected lock to exist, got %v, %v", locked, err)
	}
	if ok, err := l.Unlock(); err != nil || !ok {
		t.Errorf("expected Unlock to report a held lock, got %v, %v", ok, err)
	}
	if err := l.Wait(); err != nil {
		t.Errorf("Wait on a free lock: %v", err)
	}
	if ok, err := l.TryLock(); err != nil || !ok {
		t.Errorf("expected TryLock on a free lock to succeed, got %v, %v", ok, err)
	}
	_, _ = l.Unlock()
}
