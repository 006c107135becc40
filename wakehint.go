package parafor

import (
	"sync/atomic"

	"github.com/osor-io/parafor/internal/platform"
)

// WakeThreadsUp and SendThreadsToSleep bracket a "hot" phase during which
// workers should spin rather than park, trading CPU burn for dispatch
// latency (spec.md §4.1). Calls must balance; an unmatched
// SendThreadsToSleep panics rather than letting the counter go negative,
// per spec.md §3's "wake-hint counter... invariant >= 0".
//
// wakeHint is stored as a plain uint32 (rather than the atomic.Uint32
// used for a slot's flag) because it doubles as the address the
// platform shim parks on: WaitWhileEqual/WakeAll need a *uint32 to hand
// to the futex syscall on Linux.
func (p *Pool) WakeThreadsUp() {
	atomic.AddUint32(&p.wakeHint, 1)
	platform.WakeAll(&p.wakeHint)
}

// SendThreadsToSleep reverses one WakeThreadsUp call.
func (p *Pool) SendThreadsToSleep() {
	// ^uint32(0) is -1 in two's complement: AddUint32 has no signed
	// variant, so decrementing is expressed as adding the all-ones
	// value, the standard Go idiom for atomic decrement of an unsigned
	// counter.
	newVal := atomic.AddUint32(&p.wakeHint, ^uint32(0))
	if newVal == ^uint32(0) {
		// Wrapped from 0 to the max uint32: more SendThreadsToSleep
		// calls than WakeThreadsUp calls.
		atomic.AddUint32(&p.wakeHint, 1) // restore invariant before panicking
		panic("parafor: SendThreadsToSleep called without a matching WakeThreadsUp")
	}
	platform.WakeAll(&p.wakeHint)
}

// hot reports whether workers should currently avoid parking.
func (p *Pool) hot() bool {
	return atomic.LoadUint32(&p.wakeHint) != 0
}
