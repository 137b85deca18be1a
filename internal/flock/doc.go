// Package flock provides cross-platform advisory file locking.
//
// The entity store uses these locks to serialize the load→mutate→save
// window on a single entity file across processes. Locks are exclusive
// and non-blocking; the store retries acquisition up to its own timeout.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - entity is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
