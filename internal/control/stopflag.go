// Package control holds the process-wide cooperative cancellation
// flag described in spec.md §5. It is polled, never pushed: mining
// engines read it between candidates/recursive calls and return
// normally with whatever partial result they have so far.
package control

import "sync/atomic"

// StopFlag is safe for concurrent use; Stop may be called from a
// signal handler goroutine while a mining engine polls Stopped from
// its own goroutine.
type StopFlag struct {
	stopped atomic.Bool
}

// Stop raises the flag. Idempotent.
func (f *StopFlag) Stop() {
	f.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (f *StopFlag) Stopped() bool {
	return f.stopped.Load()
}
