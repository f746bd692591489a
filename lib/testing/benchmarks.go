package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/fsSync/lib/pathmap"
)

// RunLockManagerBenchmarks runs performance benchmarks for an ILockManager implementation.
func RunLockManagerBenchmarks(b *testing.B, name string, factory LockManagerFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("LockUnlock", func(b *testing.B) {
			mgr := factory(newMapper(b))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := mgr.Lock("bench"); err != nil {
					b.Fatal(err)
				}
				if _, err := mgr.Unlock("bench"); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("LockUnlockManyKeys", func(b *testing.B) {
			mgr := factory(newMapper(b))
			keys := benchKeys("lock", 100)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				key := keys[i%len(keys)]
				if err := mgr.Lock(key); err != nil {
					b.Fatal(err)
				}
				if _, err := mgr.Unlock(key); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("Exists", func(b *testing.B) {
			mapper := newMapper(b)
			mgr := factory(mapper)
			if err := mgr.Lock("bench"); err != nil {
				b.Fatal(err)
			}
			b.Cleanup(func() { _, _ = mgr.Unlock("bench") })
			probe := factory(pathmap.NewPathMapper(mapper.Root()))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := probe.Exists("bench"); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("Contended", func(b *testing.B) {
			root := b.TempDir()
			b.RunParallel(func(pb *testing.PB) {
				mgr := factory(pathmap.NewPathMapper(root))
				for pb.Next() {
					if err := mgr.Lock("contended"); err != nil {
						b.Error(err)
						return
					}
					if _, err := mgr.Unlock("contended"); err != nil {
						b.Error(err)
						return
					}
				}
			})
		})
	})
}

// RunCounterStoreBenchmarks runs performance benchmarks for an ICounterStore implementation.
func RunCounterStoreBenchmarks(b *testing.B, name string, factory CounterStoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			store := factory(newMapper(b))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.SetValue("bench", int64(i)); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("Get", func(b *testing.B) {
			store := factory(newMapper(b))
			if _, err := store.SetValue("bench", 1); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.GetValue("bench"); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("Increment", func(b *testing.B) {
			store := factory(newMapper(b))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.Increment("bench", 1); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("IncrementManyKeys", func(b *testing.B) {
			store := factory(newMapper(b))
			keys := benchKeys("inc", 100)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.Increment(keys[i%len(keys)], 1); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("IncrementContended", func(b *testing.B) {
			root := b.TempDir()
			var total atomic.Int64
			b.RunParallel(func(pb *testing.PB) {
				store := factory(pathmap.NewPathMapper(root))
				for pb.Next() {
					if _, err := store.Increment("contended", 1); err != nil {
						b.Error(err)
						return
					}
					total.Add(1)
				}
			})

			got, err := factory(pathmap.NewPathMapper(root)).GetValue("contended")
			if err != nil {
				b.Fatal(err)
			}
			if got != total.Load() {
				b.Errorf("lost updates: counter is %d after %d increments", got, total.Load())
			}
		})

		b.Run("Has(not)", func(b *testing.B) {
			store := factory(newMapper(b))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.HasValue("missing"); err != nil {
					b.Fatal(err)
				}
			}
		})
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func benchKeys(prefix string, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("__bench-%s-%d", prefix, i)
	}
	return keys
}
