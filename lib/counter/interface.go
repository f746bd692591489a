package counter

// ICounterStore is the interface for integer counters shared between processes.
// A key either has a value or no value at all, having no value is different from having the value 0.
type ICounterStore interface {
	// SetValue stores value for key, replacing any previous value. It returns the stored value.
	SetValue(key string, value int64) (stored int64, err error)

	// GetValue returns the value for key. An fserr.ErrNotFound error is returned if the key has no value.
	// The read is a snapshot and is not serialized against concurrent writers.
	GetValue(key string) (value int64, err error)

	// Increment atomically adds delta (which may be negative) to the value of key and returns the new value.
	// The result saturates at the int64 limits instead of wrapping around.
	// A key without a value is treated as 0.
	Increment(key string, delta int64) (value int64, err error)

	// HasValue returns whether key has a value.
	HasValue(key string) (ok bool, err error)

	// Delete removes the value for key. Deleting a key without a value is a no-op.
	Delete(key string) (err error)
}
