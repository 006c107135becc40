package parafor

import "sync/atomic"

// Work-flag values. The flag is the only per-slot synchronization
// primitive and must transition exactly along IDLE -> AVAILABLE -> DONE
// -> IDLE, with one sanctioned exception: a slot assigned zero items for
// a dispatch goes IDLE -> DONE directly (see slot.finishWithNoWork).
const (
	flagIdle      uint32 = 0
	flagAvailable uint32 = 1
	flagDone      uint32 = 2
)

// cacheLineSize is the assumed cache line width used to pad slots so
// adjacent workers never share a line. 64 bytes covers every mainstream
// amd64/arm64 target.
const cacheLineSize = 64

// slot is the per-worker handoff record: the dispatcher publishes a
// range and a trampoline into a slot, flips the flag, and the worker
// observes the flag change, runs the range, and flips it back. The
// atomic exchange on flag is the happens-before edge that makes the
// range/trampoline writes visible to the worker and the worker's side
// effects visible back to the dispatcher (Go's sync/atomic provides
// sequentially-consistent ordering for this since Go 1.19).
type slot struct {
	flag atomic.Uint32

	// threadIndex is fixed for the lifetime of the worker; the caller
	// uses the pseudo-index equal to the worker count.
	threadIndex int

	// shouldStop is set once by Pool.Close and observed by the worker
	// the next time it wakes (from a park or a real dispatch).
	shouldStop atomic.Bool

	// first/last are the inclusive index range assigned for the current
	// dispatch. Plain fields: visibility is established by the flag's
	// atomic exchange, not by these fields being atomic themselves.
	first, last int

	// fn is the trampoline bound for the current dispatch: it already
	// closes over the user WorkFunc and whatever mode-specific state
	// (e.g. the shared load-balancing counter) it needs.
	fn func(s *slot)

	// pad keeps adjacent slots on separate cache lines. The struct's
	// "real" fields above total well under cacheLineSize on both 32 and
	// 64-bit builds; the padding is sized generously rather than
	// computed byte-exactly, matching the defensive style used for
	// false-sharing guards elsewhere in the ecosystem.
	pad [cacheLineSize]byte
}

// signalAvailable transitions IDLE -> AVAILABLE. Called by the
// dispatcher once first/last/fn are published.
func (s *slot) signalAvailable() {
	prev := s.flag.Swap(flagAvailable)
	if prev != flagIdle {
		panic("parafor: slot was not idle before dispatch")
	}
}

// finishWithNoWork transitions IDLE -> DONE directly: the sanctioned
// exception for a slot that received an empty range (spec.md §4.2/§4.5).
// The dispatcher calls this instead of signalAvailable when a slot's
// share of the current dispatch is empty, so the worker never observes
// AVAILABLE and never runs user code for this dispatch.
func (s *slot) finishWithNoWork() {
	prev := s.flag.Swap(flagDone)
	if prev != flagIdle {
		panic("parafor: slot was not idle before a no-work dispatch")
	}
}

// signalDone transitions AVAILABLE -> DONE. Only the worker calls this,
// and only after it has actually executed its assigned range, so the
// only legal predecessor is AVAILABLE (this narrows spec.md's own
// "previous flag was 0 or 1" assertion per its audit note in §9/OQ-4:
// observing IDLE here would mean the worker ran code for a slot the
// dispatcher never marked AVAILABLE, which cannot happen since
// finishWithNoWork is dispatcher-only and short-circuits execution).
func (s *slot) signalDone() {
	prev := s.flag.Swap(flagDone)
	if prev != flagAvailable {
		panic("parafor: slot finished without having been marked available")
	}
}

// resetIdle transitions DONE -> IDLE. Called by the dispatcher once it
// has observed DONE while waiting for a slot to finish.
func (s *slot) resetIdle() {
	prev := s.flag.Swap(flagIdle)
	if prev != flagDone {
		panic("parafor: slot reset to idle without being done")
	}
}
