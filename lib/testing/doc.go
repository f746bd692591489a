// Package testing provides standardised tests and benchmarks for
// implementations of lockmgr.ILockManager and counter.ICounterStore.
//
// The package contains:
//   - lock_testing / counter_testing: test suites validating the interface contracts
//   - benchmarks: performance tests for the common operations
//   - process: helpers that re-execute the test binary as independent
//     processes, for tests that need real cross-process contention
//
// Example usage:
//
//	func TestMain(m *testing.M) {
//		fstesting.HelperMain()
//		os.Exit(m.Run())
//	}
//
//	func Test(t *testing.T) {
//		fstesting.RunLockManagerTests(t, "FlockManager", func(m pathmap.IPathMapper) lockmgr.ILockManager {
//			return lockmgr.NewLockManager(m)
//		})
//	}
package testing
