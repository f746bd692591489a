package lockmgr_test

import (
	"testing"
	"time"

	"github.com/ValentinKolb/fsSync/lib/lockmgr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	fstesting "github.com/ValentinKolb/fsSync/lib/testing"
)

const (
	startTimeout = 10 * time.Second
	blocked      = 200 * time.Millisecond
)

// process A holds the lock, process B must block in Lock until A releases it
func TestCrossProcessLockBlocks(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	root := t.TempDir()

	a := fstesting.StartHelper(t, fstesting.ModeHold, root, "x", 0)
	a.Expect("acquired", startTimeout)

	b := fstesting.StartHelper(t, fstesting.ModeLock, root, "x", 0)
	b.ExpectSilence(blocked)

	a.Release()
	a.Expect("released", startTimeout)

	b.Expect("acquired", startTimeout)
	b.Expect("released", startTimeout)
	a.Wait(startTimeout)
	b.Wait(startTimeout)
}

// process A holds the lock, process B must not return from Wait before A releases it
func TestCrossProcessWait(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	root := t.TempDir()

	a := fstesting.StartHelper(t, fstesting.ModeHold, root, "x", 0)
	a.Expect("acquired", startTimeout)

	b := fstesting.StartHelper(t, fstesting.ModeWait, root, "x", 0)
	b.Expect("waiting", startTimeout)
	b.ExpectSilence(blocked)

	a.Release()
	a.Expect("released", startTimeout)
	b.Expect("returned", startTimeout)
	b.Wait(startTimeout)
}

func TestCrossProcessExists(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	root := t.TempDir()
	locks := lockmgr.NewLockManager(pathmap.NewPathMapper(root))

	if err := locks.Lock("x"); err != nil {
		t.Fatal(err)
	}
	probe := fstesting.StartHelper(t, fstesting.ModeExists, root, "x", 0)
	probe.Expect("locked=true", startTimeout)
	probe.Wait(startTimeout)

	if _, err := locks.Unlock("x"); err != nil {
		t.Fatal(err)
	}
	probe = fstesting.StartHelper(t, fstesting.ModeExists, root, "x", 0)
	probe.Expect("locked=false", startTimeout)
	probe.Wait(startTimeout)
}

// a holder that dies releases its lock, the orphaned file must not matter
func TestCrossProcessCrashedHolder(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	root := t.TempDir()
	locks := lockmgr.NewLockManager(pathmap.NewPathMapper(root))

	a := fstesting.StartHelper(t, fstesting.ModeHold, root, "x", 0)
	a.Expect("acquired", startTimeout)

	if locked, err := locks.Exists("x"); err != nil || !locked {
		t.Fatalf("expected lock held by helper, got %v, %v", locked, err)
	}

	a.Kill()

	ok, err := lockmgr.AcquireWithin(locks, "x", startTimeout, 10*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("expected to acquire the lock of a dead holder, got %v, %v", ok, err)
	}
	if _, err := locks.Unlock("x"); err != nil {
		t.Fatal(err)
	}
}
