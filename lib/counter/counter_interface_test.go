package counter_test

import (
	"testing"

	"github.com/ValentinKolb/fsSync/lib/counter"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	fstesting "github.com/ValentinKolb/fsSync/lib/testing"
)

func factory(mapper pathmap.IPathMapper) counter.ICounterStore {
	return counter.NewCounterStore(mapper)
}

func Test(t *testing.T) {
	fstesting.RunCounterStoreTests(t, "FileCounterStore", factory)
}

func Benchmark(b *testing.B) {
	fstesting.RunCounterStoreBenchmarks(b, "FileCounterStore", factory)
}
