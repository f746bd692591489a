package lockmgr

import (
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/fsSync/lib/common"
	"github.com/ValentinKolb/fsSync/lib/fserr"
	"github.com/ValentinKolb/fsSync/lib/internal/flock"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Category is the path category used for lock files
const Category = "locks"

const filePerm = 0o644

var (
	log = logger.GetLogger("lockmgr")

	metricAcquired = metrics.NewCounter(common.MetricName("fssync_lock_acquired_total"))
	metricReleased = metrics.NewCounter(common.MetricName("fssync_lock_released_total"))
	metricErrors   = metrics.NewCounter(common.MetricName("fssync_lock_errors_total"))
	metricAcquire  = metrics.NewSummary(common.MetricName("fssync_lock_acquire_seconds"))
	metricWait     = metrics.NewSummary(common.MetricName("fssync_lock_wait_seconds"))
)

// heldKey identifies a lock held by one manager.
type heldKey struct {
	owner uint64
	path  string
}

var (
	managerIDs atomic.Uint64

	// heldLocks keeps the open file carrying the flock of every held lock.
	// A lock stays referenced here until Unlock, even if its manager is
	// garbage collected. Entries are only added after the lock was granted
	// and removed before it is released.
	heldLocks = xsync.NewMapOf[heldKey, *os.File]()
)

type lockMgrImpl struct {
	id           uint64
	mapper       pathmap.IPathMapper
	pollInterval time.Duration
}

// Option configures a lock manager
type Option func(*lockMgrImpl)

// WithPollInterval sets the interval used when waiting on a lock held by the same manager.
func WithPollInterval(d time.Duration) Option {
	return func(lm *lockMgrImpl) {
		if d > 0 {
			lm.pollInterval = d
		}
	}
}

// NewLockManager creates a lock manager storing its lock files below the root of mapper.
// Every manager owns the locks it acquired, two managers in the same process
// exclude each other just like two processes do.
func NewLockManager(mapper pathmap.IPathMapper, opts ...Option) ILockManager {
	lm := &lockMgrImpl{
		id:           managerIDs.Add(1),
		mapper:       mapper,
		pollInterval: common.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// --------------------------------------------------------------------------
// Interface Methods (docu see lockmgr/interface.go)
// --------------------------------------------------------------------------

func (lm *lockMgrImpl) Lock(key string) error {
	path := lm.mapper.Resolve(key, Category)
	if lm.isHeld(path) {
		log.Debugf("lock %s already held by this manager", key)
		return nil
	}

	f, err := lm.openForLocking(path)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := flock.Lock(f); err != nil {
		_ = f.Close()
		metricErrors.Inc()
		return fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not acquire lock "+key)
	}
	metricAcquire.UpdateDuration(start)

	heldLocks.Store(heldKey{lm.id, path}, f)
	metricAcquired.Inc()
	log.Debugf("lock %s acquired after %s", key, time.Since(start))
	return nil
}

func (lm *lockMgrImpl) TryLock(key string) (bool, error) {
	path := lm.mapper.Resolve(key, Category)
	if lm.isHeld(path) {
		return true, nil
	}

	f, err := lm.openForLocking(path)
	if err != nil {
		return false, err
	}

	ok, err := flock.TryLock(f)
	if err != nil {
		_ = f.Close()
		metricErrors.Inc()
		return false, fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not acquire lock "+key)
	}
	if !ok {
		_ = f.Close()
		return false, nil
	}

	heldLocks.Store(heldKey{lm.id, path}, f)
	metricAcquired.Inc()
	log.Debugf("lock %s acquired", key)
	return true, nil
}

func (lm *lockMgrImpl) Unlock(key string) (bool, error) {
	path := lm.mapper.Resolve(key, Category)
	f, ok := heldLocks.LoadAndDelete(heldKey{lm.id, path})
	if !ok {
		return false, nil
	}

	if err := flock.Unlock(f); err != nil {
		// closing the descriptor drops the lock as well
		_ = f.Close()
		metricErrors.Inc()
		return false, fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not release lock "+key)
	}
	if err := f.Close(); err != nil {
		metricErrors.Inc()
		return false, fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not close lock file for "+key)
	}

	metricReleased.Inc()
	log.Debugf("lock %s released", key)
	return true, nil
}

func (lm *lockMgrImpl) Wait(key string) error {
	path := lm.mapper.Resolve(key, Category)

	if lm.isHeld(path) {
		// a flock on a second descriptor would block on our own lock until
		// another goroutine releases it, poll the ownership map instead
		for {
			time.Sleep(lm.pollInterval)
			if !lm.isHeld(path) {
				return nil
			}
		}
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not open lock file for "+key)
	}
	defer f.Close()

	// shared, so that several waiters don't queue behind each other
	start := time.Now()
	if err := flock.LockShared(f); err != nil {
		metricErrors.Inc()
		return fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not wait for lock "+key)
	}
	metricWait.UpdateDuration(start)

	if err := flock.Unlock(f); err != nil {
		metricErrors.Inc()
		return fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not release wait probe for "+key)
	}
	log.Debugf("lock %s was released after waiting %s", key, time.Since(start))
	return nil
}

func (lm *lockMgrImpl) Exists(key string) (bool, error) {
	path := lm.mapper.Resolve(key, Category)
	if lm.isHeld(path) {
		return true, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not open lock file for "+key)
	}
	defer f.Close()

	free, err := flock.TryLockShared(f)
	if err != nil {
		metricErrors.Inc()
		return false, fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not probe lock "+key)
	}
	if !free {
		return true, nil
	}

	if err := flock.Unlock(f); err != nil {
		metricErrors.Inc()
		return false, fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not release probe for "+key)
	}
	return false, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// isHeld reports whether this manager holds the lock file at path.
func (lm *lockMgrImpl) isHeld(path string) bool {
	_, ok := heldLocks.Load(heldKey{lm.id, path})
	return ok
}

// openForLocking opens (and if needed creates) the lock file at path.
func (lm *lockMgrImpl) openForLocking(path string) (*os.File, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := lm.mapper.EnsureDirectories(path); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerm)
	if err != nil {
		log.Errorf("could not open lock file %s: %v", path, err)
		return nil, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not open lock file "+path)
	}
	return f, nil
}
