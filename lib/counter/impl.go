package counter

import (
	"errors"
	"io"
	"os"

	"github.com/ValentinKolb/fsSync/lib/common"
	"github.com/ValentinKolb/fsSync/lib/fserr"
	"github.com/ValentinKolb/fsSync/lib/internal/flock"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

// Category is the path category used for counter files
const Category = "integers"

const filePerm = 0o644

var log = logger.GetLogger("counter")

type counterStoreImpl struct {
	mapper pathmap.IPathMapper
}

// NewCounterStore creates a counter store keeping its files below the root of mapper.
// Every mutation happens under an exclusive flock on the counter file itself,
// no other synchronization is used. It is therefore safe to use any number of
// stores, in any number of processes, on the same root.
func NewCounterStore(mapper pathmap.IPathMapper) ICounterStore {
	return &counterStoreImpl{
		mapper: mapper,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see counter/interface.go)
// --------------------------------------------------------------------------

func (s *counterStoreImpl) SetValue(key string, value int64) (int64, error) {
	countOp("set")

	f, err := s.openLocked(key, os.O_CREATE|os.O_WRONLY)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := rewrite(f, value); err != nil {
		return 0, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not write counter "+key)
	}
	return value, nil
}

func (s *counterStoreImpl) GetValue(key string) (int64, error) {
	countOp("get")

	b, err := os.ReadFile(s.mapper.Resolve(key, Category))
	if errors.Is(err, os.ErrNotExist) {
		return 0, fserr.Wrap(fserr.RetCNotFound, err, "counter "+key+" does not exist")
	}
	if err != nil {
		return 0, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not read counter "+key)
	}
	return ParseValue(b), nil
}

func (s *counterStoreImpl) Increment(key string, delta int64) (int64, error) {
	countOp("inc")

	f, err := s.openLocked(key, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return 0, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not read counter "+key)
	}

	value := addSaturating(ParseValue(b), delta)
	if err := rewrite(f, value); err != nil {
		return 0, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not write counter "+key)
	}
	log.Debugf("counter %s incremented by %d to %d", key, delta, value)
	return value, nil
}

func (s *counterStoreImpl) HasValue(key string) (bool, error) {
	countOp("has")

	_, err := os.Stat(s.mapper.Resolve(key, Category))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not stat counter "+key)
	}
	return true, nil
}

func (s *counterStoreImpl) Delete(key string) error {
	countOp("del")

	err := os.Remove(s.mapper.Resolve(key, Category))
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	log.Errorf("could not delete counter %s: %v", key, err)
	return fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not delete counter "+key)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// openLocked opens the counter file for key with flag and returns it with an
// exclusive lock held. Closing the file releases the lock.
//
// The file may be deleted between open and lock. In that case the lock is on
// an unlinked inode and the attempt is repeated on the current file.
func (s *counterStoreImpl) openLocked(key string, flag int) (*os.File, error) {
	path := s.mapper.Resolve(key, Category)

	for {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := s.mapper.EnsureDirectories(path); err != nil {
				return nil, err
			}
		}

		f, err := os.OpenFile(path, flag, filePerm)
		if err != nil {
			return nil, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not open counter file "+path)
		}

		if err := flock.Lock(f); err != nil {
			_ = f.Close()
			return nil, fserr.Wrap(fserr.RetCLockOperationFailed, err, "could not lock counter "+key)
		}

		same, err := sameFile(f, path)
		if err != nil {
			_ = f.Close()
			return nil, fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not stat counter file "+path)
		}
		if same {
			return f, nil
		}
		log.Debugf("counter %s was replaced while waiting for the lock, retrying", key)
		_ = f.Close()
	}
}

// sameFile reports whether f is still the file found at path.
func sameFile(f *os.File, path string) (bool, error) {
	held, err := f.Stat()
	if err != nil {
		return false, err
	}
	current, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(held, current), nil
}

// rewrite replaces the content of f with value. Truncation and write happen
// back to back, the caller must hold the exclusive lock.
func rewrite(f *os.File, value int64) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.WriteAt(FormatValue(value), 0)
	return err
}

func countOp(op string) {
	metrics.GetOrCreateCounter(common.MetricName("fssync_counter_ops_total", "op", op)).Inc()
}
