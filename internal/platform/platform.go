// Package platform isolates the handful of OS- and hardware-adjacent
// primitives the dispatch runtime needs: yielding the current thread,
// waiting/waking on a 32-bit address, a processor count, and a clock
// suitable for measuring the worker spin budget.
//
// Everything in this package is a thin wrapper. The interesting logic
// (the worker park/spin loop, the dispatcher) lives one level up and
// only ever calls these functions.
package platform

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
)

var setMaxProcsOnce sync.Once

// NumCPU returns the number of logical processors available to this
// process. Before the first read it calls maxprocs.Set so GOMAXPROCS
// (and therefore this value) reflects a container's CPU quota rather
// than the host's raw core count.
func NumCPU() int {
	setMaxProcsOnce.Do(func() {
		// Undo is intentionally discarded: the runtime's GOMAXPROCS
		// should stay quota-aware for the lifetime of the process, not
		// just for the duration of one pool's construction.
		_, _ = maxprocs.Set()
	})
	return runtime.GOMAXPROCS(0)
}

// YieldNow hints to the scheduler that the calling goroutine has nothing
// productive to do right now and other runnable work should get a turn.
func YieldNow() {
	runtime.Gosched()
}

// Now returns a monotonic timestamp suitable for measuring elapsed spin
// time. time.Time carries a monotonic reading as of Go 1.9; Sub on two
// values produced by Now never observes wall-clock adjustments.
func Now() time.Time {
	return time.Now()
}

// Cycles returns a monotonically increasing count intended to stand in
// for a hardware cycle counter (e.g. rdtsc/cntvct). Go has no portable
// user-mode instruction for this, so it is approximated with a
// nanosecond-resolution monotonic clock read; see DESIGN.md OQ-1. The
// indirection exists so a per-arch assembly implementation can replace
// this body later without touching any caller.
func Cycles() uint64 {
	return uint64(time.Since(cyclesEpoch))
}

// cyclesEpoch is the monotonic reference point Cycles measures from.
var cyclesEpoch = time.Now()
