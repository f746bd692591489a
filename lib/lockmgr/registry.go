package lockmgr

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// LockRegistry hands out one Lock handle per key, so that all code in a
// process that refers to the same key shares the same object.
type LockRegistry struct {
	mgr   ILockManager
	locks *xsync.MapOf[string, *Lock]
}

// NewLockRegistry creates a registry whose handles use mgr.
func NewLockRegistry(mgr ILockManager) *LockRegistry {
	return &LockRegistry{
		mgr:   mgr,
		locks: xsync.NewMapOf[string, *Lock](),
	}
}

// Get returns the handle for key, creating it on first use.
func (r *LockRegistry) Get(key string) *Lock {
	l, _ := r.locks.LoadOrCompute(key, func() *Lock {
		return &Lock{key: key, mgr: r.mgr}
	})
	return l
}

// Forget drops the handle for key. A later Get returns a new handle,
// the state of the lock itself is not touched.
func (r *LockRegistry) Forget(key string) {
	r.locks.Delete(key)
}

// Len returns the number of handles in the registry.
func (r *LockRegistry) Len() int {
	return r.locks.Size()
}

// Lock is a handle for the lock of a single key.
type Lock struct {
	key string
	mgr ILockManager
}

func (l *Lock) Key() string {
	return l.key
}

func (l *Lock) Lock() error {
	return l.mgr.Lock(l.key)
}

func (l *Lock) TryLock() (bool, error) {
	return l.mgr.TryLock(l.key)
}

func (l *Lock) Unlock() (bool, error) {
	return l.mgr.Unlock(l.key)
}

func (l *Lock) Wait() error {
	return l.mgr.Wait(l.key)
}

func (l *Lock) Exists() (bool, error) {
	return l.mgr.Exists(l.key)
}
