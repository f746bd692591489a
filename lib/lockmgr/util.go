package lockmgr

import (
	"time"

	"github.com/ValentinKolb/fsSync/lib/common"
)

// AcquireWithin repeatedly tries to acquire the lock for key until it is
// granted or timeout has passed, sleeping interval between attempts.
// A timeout <= 0 makes a single attempt, an interval <= 0 falls back to
// common.DefaultPollInterval.
// Return a boolean indicating whether the lock was acquired.
func AcquireWithin(mgr ILockManager, key string, timeout, interval time.Duration) (bool, error) {
	if interval <= 0 {
		interval = common.DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	for {
		ok, err := mgr.TryLock(key)
		if err != nil || ok {
			return ok, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		time.Sleep(min(interval, remaining))
	}
}
