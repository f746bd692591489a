package testing

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/ValentinKolb/fsSync/lib/counter"
	"github.com/ValentinKolb/fsSync/lib/fserr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
)

// CounterStoreFactory creates a new counter store working on mapper.
type CounterStoreFactory func(mapper pathmap.IPathMapper) counter.ICounterStore

// RunCounterStoreTests runs a comprehensive test suite for an ICounterStore implementation.
func RunCounterStoreTests(t *testing.T, name string, factory CounterStoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("GetMissing", func(t *testing.T) {
			testGetMissing(t, factory)
		})

		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory)
		})

		t.Run("Increment", func(t *testing.T) {
			testIncrement(t, factory)
		})

		t.Run("IncrementNegative", func(t *testing.T) {
			testIncrementNegative(t, factory)
		})

		t.Run("IncrementMissing", func(t *testing.T) {
			testIncrementMissing(t, factory)
		})

		t.Run("HasValue", func(t *testing.T) {
			testHasValue(t, factory)
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory)
		})

		t.Run("FileFormat", func(t *testing.T) {
			testFileFormat(t, factory)
		})

		t.Run("PermissiveParsing", func(t *testing.T) {
			testPermissiveParsing(t, factory)
		})

		t.Run("ConcurrentIncrements", func(t *testing.T) {
			testConcurrentIncrements(t, factory)
		})

		t.Run("IncrementAfterDelete", func(t *testing.T) {
			testIncrementAfterDelete(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func expectValue(t testing.TB, store counter.ICounterStore, key string, want int64) {
	t.Helper()
	got, err := store.GetValue(key)
	if err != nil {
		t.Fatalf("GetValue(%s) failed: %v", key, err)
	}
	if got != want {
		t.Errorf("GetValue(%s) = %d, want %d", key, got, want)
	}
}

func expectHasValue(t testing.TB, store counter.ICounterStore, key string, want bool) {
	t.Helper()
	ok, err := store.HasValue(key)
	if err != nil {
		t.Fatalf("HasValue(%s) failed: %v", key, err)
	}
	if ok != want {
		t.Errorf("HasValue(%s) = %t, want %t", key, ok, want)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testGetMissing(t *testing.T, factory CounterStoreFactory) {
	store := factory(newMapper(t))

	_, err := store.GetValue("missing")
	if !errors.Is(err, fserr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testSetGet(t *testing.T, factory CounterStoreFactory) {
	store := factory(newMapper(t))

	for _, v := range []int64{0, 1, 123456, -987654} {
		stored, err := store.SetValue("set-get", v)
		if err != nil {
			t.Fatalf("SetValue(%d) failed: %v", v, err)
		}
		if stored != v {
			t.Errorf("SetValue returned %d, want %d", stored, v)
		}
		expectValue(t, store, "set-get", v)
	}

	// a shorter value must not leave a tail of the previous one
	if _, err := store.SetValue("set-get", 123456789); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SetValue("set-get", 5); err != nil {
		t.Fatal(err)
	}
	expectValue(t, store, "set-get", 5)
}

func testIncrement(t *testing.T, factory CounterStoreFactory) {
	store := factory(newMapper(t))

	if _, err := store.SetValue("inc", 10); err != nil {
		t.Fatal(err)
	}
	v, err := store.Increment("inc", 32)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if v != 42 {
		t.Errorf("Increment returned %d, want 42", v)
	}
	expectValue(t, store, "inc", 42)
}

func testIncrementNegative(t *testing.T, factory CounterStoreFactory) {
	store := factory(newMapper(t))

	if _, err := store.SetValue("n", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Increment("n", -3); err != nil {
		t.Fatal(err)
	}
	expectValue(t, store, "n", 7)

	if _, err := store.Increment("n", -10); err != nil {
		t.Fatal(err)
	}
	expectValue(t, store, "n", -3)
}

func testIncrementMissing(t *testing.T, factory CounterStoreFactory) {
	mapper := newMapper(t)
	store := factory(mapper)

	v, err := store.Increment("fresh", 5)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if v != 5 {
		t.Errorf("Increment on a missing key returned %d, want 5", v)
	}
	if _, err := os.Stat(mapper.Resolve("fresh", counter.Category)); err != nil {
		t.Errorf("expected the counter file to be created: %v", err)
	}
	expectHasValue(t, store, "fresh", true)
	expectValue(t, store, "fresh", 5)
}

func testHasValue(t *testing.T, factory CounterStoreFactory) {
	store := factory(newMapper(t))

	expectHasValue(t, store, "has", false)
	if _, err := store.SetValue("has", 0); err != nil {
		t.Fatal(err)
	}
	// zero is a value
	expectHasValue(t, store, "has", true)
}

func testDelete(t *testing.T, factory CounterStoreFactory) {
	store := factory(newMapper(t))

	if _, err := store.SetValue("del", 99); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("del"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	expectHasValue(t, store, "del", false)

	if _, err := store.GetValue("del"); !errors.Is(err, fserr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after Delete, got %v", err)
	}

	// deleting again (or something never set) is a no-op
	if err := store.Delete("del"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
	if err := store.Delete("never-set"); err != nil {
		t.Errorf("Delete of a missing key failed: %v", err)
	}
}

func testFileFormat(t *testing.T, factory CounterStoreFactory) {
	mapper := newMapper(t)
	store := factory(mapper)

	if _, err := store.SetValue("format", -42); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(mapper.Resolve("format", counter.Category))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "-42" {
		t.Errorf("expected file content %q, got %q", "-42", b)
	}
}

func testPermissiveParsing(t *testing.T, factory CounterStoreFactory) {
	mapper := newMapper(t)
	store := factory(mapper)

	path := mapper.Resolve("garbled", counter.Category)
	if err := mapper.EnsureDirectories(path); err != nil {
		t.Fatal(err)
	}

	for content, want := range map[string]int64{"": 0, "not a number": 0, "17 apples": 17} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		expectValue(t, store, "garbled", want)

		v, err := store.Increment("garbled", 1)
		if err != nil {
			t.Fatalf("Increment on %q failed: %v", content, err)
		}
		if v != want+1 {
			t.Errorf("Increment on %q returned %d, want %d", content, v, want+1)
		}
	}
}

func testConcurrentIncrements(t *testing.T, factory CounterStoreFactory) {
	mapper := newMapper(t)

	const (
		workers    = 8
		increments = 50
	)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// one store per worker, just like one per process
			store := factory(pathmap.NewPathMapper(mapper.Root()))
			for i := 0; i < increments; i++ {
				if _, err := store.Increment("shared", 1); err != nil {
					errs <- fmt.Errorf("increment %d failed: %w", i, err)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	expectValue(t, factory(mapper), "shared", workers*increments)
}

func testIncrementAfterDelete(t *testing.T, factory CounterStoreFactory) {
	store := factory(newMapper(t))

	if _, err := store.SetValue("recreate", 100); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("recreate"); err != nil {
		t.Fatal(err)
	}
	v, err := store.Increment("recreate", 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Errorf("Increment after Delete returned %d, want 1", v)
	}
}
