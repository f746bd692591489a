// Package counter implements signed integer counters that can be shared and
// atomically incremented by independent processes on the same filesystem.
//
// Each key is stored in its own file below <root>/integers (see the pathmap
// package for the layout). The file holds the plain decimal representation of
// the value, e.g. "-42", without header or trailing newline. A missing file
// means the key has no value, which is distinct from the value 0.
//
// Atomicity:
//
//	SetValue and Increment take an exclusive flock(2) on the counter file and
//	keep it for the whole read-modify-write, truncation and write happen back
//	to back under the lock. Concurrent increments from any number of
//	processes serialize on that lock and never lose an update. GetValue and
//	HasValue take no lock, they are best-effort snapshots.
//
// Parsing:
//
//	File content is parsed permissively by ParseValue: garbage or empty
//	content reads as 0 and never produces an error, so a corrupted counter
//	can always be repaired with SetValue or continued with Increment.
//
// Deletion:
//
//	Delete unlinks the file without locking. A writer that locked the file
//	before it was unlinked completes on the orphaned inode (its update is
//	ordered before the delete). A writer that opened the file before the
//	delete but locks it afterwards notices the replacement and retries on
//	the current file.
package counter
