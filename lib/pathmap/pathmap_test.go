package pathmap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ValentinKolb/fsSync/lib/fserr"
	"go.uber.org/goleak"
)

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	m := NewPathMapper(root)

	// md5("hello")
	h := "5d41402abc4b2a76b9719d911017c592"
	want := filepath.Join(root, "locks", "5d", "41", h)

	if got := m.Resolve("hello", "locks"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got := Hash("hello"); got != h || len(got) != HashLength {
		t.Errorf("unexpected hash %s", got)
	}
}

func TestResolveLowercasesCategory(t *testing.T) {
	m := NewPathMapper(t.TempDir())
	if m.Resolve("k", "Integers") != m.Resolve("k", "integers") {
		t.Errorf("category should be case insensitive")
	}
}

func TestResolveDistinctKeys(t *testing.T) {
	m := NewPathMapper(t.TempDir())
	seen := make(map[string]string)
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("key-%d", i)
		p := m.Resolve(key, "locks")
		if other, ok := seen[p]; ok {
			t.Fatalf("keys %s and %s map to the same path %s", key, other, p)
		}
		seen[p] = key
	}
}

func TestResolveDistinctCategories(t *testing.T) {
	m := NewPathMapper(t.TempDir())
	for _, key := range []string{"", "x", "some/key with spaces", "ünïcödé"} {
		if m.Resolve(key, "locks") == m.Resolve(key, "integers") {
			t.Errorf("key %q maps to the same path in two categories", key)
		}
	}
}

func TestResolveStable(t *testing.T) {
	m := NewPathMapper(t.TempDir())
	first := m.Resolve("stable", "locks")
	for i := 0; i < 10; i++ {
		if p := m.Resolve("stable", "locks"); p != first {
			t.Fatalf("resolve changed from %s to %s", first, p)
		}
	}

	// a second mapper on the same root (i.e. another process) agrees
	if p := NewPathMapper(m.Root()).Resolve("stable", "locks"); p != first {
		t.Errorf("independent mapper resolved %s, expected %s", p, first)
	}
}

func TestSetRoot(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	m := NewPathMapper(rootA)

	pA := m.Resolve("k", "locks")
	m.SetRoot(rootB)
	pB := m.Resolve("k", "locks")

	if m.Root() != rootB {
		t.Errorf("expected root %s, got %s", rootB, m.Root())
	}
	relA, _ := filepath.Rel(rootA, pA)
	relB, _ := filepath.Rel(rootB, pB)
	if relA != relB {
		t.Errorf("relative paths differ after SetRoot: %s vs %s", relA, relB)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not", "yet", "there")
	m := NewPathMapper(root)
	p := m.Resolve("dirs", "integers")

	if err := m.EnsureDirectories(p); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(filepath.Dir(p))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected parent directory of %s to exist: %v", p, err)
	}
	if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("EnsureDirectories must not create the file itself")
	}

	// idempotent and additive
	marker := filepath.Join(filepath.Dir(p), "marker")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.EnsureDirectories(p); err != nil {
		t.Fatalf("second EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("existing content was removed: %v", err)
	}
}

func TestEnsureDirectoriesConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	root := t.TempDir()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// separate mappers, overlapping prefixes
			m := NewPathMapper(root)
			errs <- m.EnsureDirectories(m.Resolve(fmt.Sprintf("k%d", i%4), "locks"))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent EnsureDirectories failed: %v", err)
		}
	}
}

func TestEnsureDirectoriesOutsideRoot(t *testing.T) {
	m := NewPathMapper(t.TempDir())
	err := m.EnsureDirectories(filepath.Join(os.TempDir(), "elsewhere", "file"))
	if !errors.Is(err, fserr.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestEnsureDirectoriesFailure(t *testing.T) {
	root := t.TempDir()
	m := NewPathMapper(root)

	// a regular file where the category directory should be
	if err := os.WriteFile(filepath.Join(root, "locks"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := m.EnsureDirectories(m.Resolve("k", "locks"))
	if !errors.Is(err, fserr.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}
