package counter

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/fsSync/lib/fserr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
)

func TestStorageUnavailable(t *testing.T) {
	root := t.TempDir()

	// a regular file where the category directory should be
	if err := os.WriteFile(filepath.Join(root, Category), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewCounterStore(pathmap.NewPathMapper(root))

	if _, err := store.SetValue("k", 1); !errors.Is(err, fserr.ErrStorageUnavailable) {
		t.Errorf("SetValue: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := store.Increment("k", 1); !errors.Is(err, fserr.ErrStorageUnavailable) {
		t.Errorf("Increment: expected ErrStorageUnavailable, got %v", err)
	}
}

func TestOpenLockedFollowsReplacement(t *testing.T) {
	mapper := pathmap.NewPathMapper(t.TempDir())
	s := NewCounterStore(mapper).(*counterStoreImpl)

	if _, err := s.SetValue("swap", 1); err != nil {
		t.Fatal(err)
	}

	f, err := s.openLocked("swap", os.O_RDWR)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	same, err := sameFile(f, mapper.Resolve("swap", Category))
	if err != nil || !same {
		t.Fatalf("expected the locked file to be the current one, got %v, %v", same, err)
	}

	if err := s.Delete("swap"); err != nil {
		t.Fatal(err)
	}
	same, err = sameFile(f, mapper.Resolve("swap", Category))
	if err != nil || same {
		t.Errorf("expected a deleted file to be detected, got %v, %v", same, err)
	}
}

func TestIncrementSaturates(t *testing.T) {
	store := NewCounterStore(pathmap.NewPathMapper(t.TempDir()))

	if _, err := store.SetValue("max", math.MaxInt64); err != nil {
		t.Fatal(err)
	}
	v, err := store.Increment("max", 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != math.MaxInt64 {
		t.Errorf("Increment past the maximum = %d, want %d", v, int64(math.MaxInt64))
	}

	if _, err := store.SetValue("min", math.MinInt64); err != nil {
		t.Fatal(err)
	}
	v, err = store.Increment("min", -1)
	if err != nil {
		t.Fatal(err)
	}
	if v != math.MinInt64 {
		t.Errorf("Increment past the minimum = %d, want %d", v, int64(math.MinInt64))
	}

	if got, _ := store.GetValue("max"); got != math.MaxInt64 {
		t.Errorf("stored value %d, want %d", got, int64(math.MaxInt64))
	}
}
