// Package txnlock provides a single-writer guard for callers that expose a
// store.File to more than one goroutine. The engine itself makes no claim
// of thread-safety (spec.md §5); this is the "layer your own serialization
// above this engine" piece, adapted from the teacher project's
// internal/txn transaction manager. It is not a transaction manager in the
// database sense — there is no multi-op atomicity here, just mutual
// exclusion matching the engine's single-writer assumption.
package txnlock

import "sync"

// Guard serializes access to a single store.File. Readers and writers share
// the same lock: the underlying engine has no separate read path that is
// safe to run concurrently with a write (a write can relocate tail pages
// mid-chain), so there is no reader/writer split here.
type Guard struct {
	mu sync.Mutex
}

// New returns a ready-to-use Guard.
func New() *Guard { return &Guard{} }

// Lease is held for the duration of one logical operation.
type Lease struct {
	g    *Guard
	done bool
}

// Acquire blocks until the guard is free and returns a Lease the caller must
// Release when the operation is finished.
func (g *Guard) Acquire() *Lease {
	g.mu.Lock()
	return &Lease{g: g}
}

// Release unlocks the guard. Only the first call per Lease unlocks; any
// later call is a no-op rather than a panic, so deferred Release paired with an
// early explicit Release doesn't double-unlock.
func (l *Lease) Release() {
	if l.done {
		return
	}
	l.done = true
	l.g.mu.Unlock()
}
