package parafor

import (
	"github.com/osor-io/parafor/internal/platform"
)

// spinBudgetNanos bounds the busy-spin phase of a worker's park loop.
// spec.md §4.5 specifies 65,536 TSC cycles (~13µs on a 5GHz core) so
// that back-to-back dispatches issued within that window never pay a
// park/wake round trip. Since internal/platform.Cycles is a nanosecond
// proxy rather than a real cycle counter (DESIGN.md OQ-1), the budget is
// expressed directly as ~13µs of wall-clock time, preserving the
// intent (absorb the common "burst of tiny dispatches" case) rather
// than the literal cycle count.
const spinBudgetNanos = 13_000

// waitForAvailable runs a worker's park loop (spec.md §4.5): spin,
// yield, and only park on the wake-hint address once both have failed
// to find work. It returns once s.flag == flagAvailable.
func (p *Pool) waitForAvailable(s *slot) {
	for {
		start := platform.Cycles()
		for {
			if s.flag.Load() == flagAvailable {
				return
			}
			if platform.Cycles()-start >= spinBudgetNanos {
				break
			}
		}

		platform.YieldNow()

		if !p.hot() {
			platform.WaitWhileEqual(&p.wakeHint, 0)
		}
		// Loop back to the spin phase regardless of why we got here:
		// a real wake, a spurious futex/cond return, and "we were never
		// hot to begin with" are all handled by re-reading the flag.
	}
}

// workerLoop is the function each persistent worker goroutine runs for
// the lifetime of the Pool: park for the next assignment, execute it,
// signal done, repeat until Close tells it to stop.
func (p *Pool) workerLoop(s *slot) {
	defer p.wg.Done()

	if p.onStart != nil {
		p.onStart(p.startingCtx, s.threadIndex, p.scratchBytes)
	}

	for {
		p.waitForAvailable(s)

		if s.shouldStop.Load() {
			s.signalDone()
			if p.onEnd != nil {
				p.onEnd(p.startingCtx, s.threadIndex)
			}
			return
		}

		s.fn(s)
	}
}
