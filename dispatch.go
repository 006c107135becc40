package parafor

import (
	"fmt"

	"go.uber.org/zap"
)

// Mode selects one of the three work-distribution strategies from
// spec.md §4.
type Mode int

const (
	// Contiguous gives each executor (the W workers plus the caller) a
	// static, contiguous slice of [0,count).
	Contiguous Mode = iota
	// LoadBalancing has every executor claim indices one at a time from
	// a shared atomic counter, for skewed workloads.
	LoadBalancing
	// PerThread runs the full [0,count) sequence on every executor,
	// e.g. to reset a per-thread arena exactly once (count == 1) or N
	// times per executor.
	PerThread
)

func (m Mode) String() string {
	switch m {
	case Contiguous:
		return "Contiguous"
	case LoadBalancing:
		return "LoadBalancing"
	case PerThread:
		return "PerThread"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// WorkFunc is the opaque unit of work a Dispatch call runs, once per
// item. dispatchIndex is in [0, count) for Contiguous/LoadBalancing and
// in [0, count) on every executor for PerThread.
type WorkFunc func(dispatchIndex int)

// Dispatch runs work exactly count times (Contiguous/LoadBalancing) or
// count times per executor (PerThread) across the pool's workers plus
// the calling goroutine, and blocks until every item has completed.
//
// Dispatch must only be called from the goroutine that created the
// Pool; calling it from inside a worker, or from Dispatch/a hook
// running concurrently on another goroutine, is a precondition
// violation (spec.md §4.1) and panics rather than producing undefined
// behavior.
func (p *Pool) Dispatch(count int, mode Mode, work WorkFunc) {
	if count < 0 {
		panic("parafor: Dispatch count must be >= 0")
	}
	if p.closed.Load() {
		panic("parafor: Dispatch called on a closed Pool")
	}
	if gid := goroutineID(); gid != p.ownerGID {
		panic("parafor: Dispatch called from a goroutine other than the one that created the Pool")
	}
	if work == nil {
		panic("parafor: Dispatch called with a nil WorkFunc")
	}

	p.WakeThreadsUp()
	defer p.SendThreadsToSleep()

	switch mode {
	case Contiguous:
		p.dispatchContiguous(count, work)
	case LoadBalancing:
		p.dispatchLoadBalancing(count, work)
	case PerThread:
		p.dispatchPerThread(count, work)
	default:
		panic(fmt.Sprintf("parafor: unknown Mode %d", int(mode)))
	}
}

// executeItem runs one call to work, binding the ambient
// DispatchIndex/ThreadIndex accessors for its duration and logging (then
// re-panicking) any recovered panic, per spec.md §7: the dispatcher
// itself never inspects user failures, but it must still be possible to
// reach the DONE transition on an abnormal exit, which is why this has
// no effect on whether the caller's deferred signalDone runs.
func (p *Pool) executeItem(work WorkFunc, dispatchIndex, threadIndex int) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("parafor: work function panicked",
				zap.Int("dispatch_index", dispatchIndex),
				zap.Int("thread_index", threadIndex),
				zap.Any("panic", r),
			)
			panic(r)
		}
	}()

	unbind := bindExec(dispatchIndex, threadIndex)
	defer unbind()

	work(dispatchIndex)
}

// runRangeInline executes work(first..last) directly on the calling
// goroutine — the caller's own share of a Contiguous or PerThread
// dispatch, run without going through a slot at all.
func (p *Pool) runRangeInline(work WorkFunc, first, last, threadIndex int) {
	for i := first; i <= last; i++ {
		p.executeItem(work, i, threadIndex)
	}
}

// rangeTrampoline builds a worker trampoline that executes s.first..s.last
// in ascending order, used by both Contiguous and PerThread (they only
// differ in how first/last are computed).
func (p *Pool) rangeTrampoline(work WorkFunc, threadIndex int) func(*slot) {
	return func(s *slot) {
		defer s.signalDone()
		for i := s.first; i <= s.last; i++ {
			p.executeItem(work, i, threadIndex)
		}
	}
}

// dispatchContiguous implements spec.md §4.2: E = W+1 executors, a
// base/base+1 split with the first rem executors getting the larger
// share, workers filling slots in order and the caller last.
func (p *Pool) dispatchContiguous(count int, work WorkFunc) {
	executors := p.workerCount + 1
	base := count / executors
	rem := count % executors

	offset := 0
	for i := 0; i < executors; i++ {
		size := base
		if i < rem {
			size++
		}
		first, last := offset, offset+size-1
		offset += size

		if i < p.workerCount {
			s := &p.slots[i]
			if first > last {
				s.finishWithNoWork()
				continue
			}
			s.first, s.last = first, last
			s.fn = p.rangeTrampoline(work, i)
			s.signalAvailable()
			continue
		}

		// The caller is the last executor; run its share inline while
		// the workers run theirs.
		if first <= last {
			p.runRangeInline(work, first, last, p.workerCount)
		}
	}

	p.waitAllDone()
}

// dispatchPerThread implements spec.md §4.4: every executor runs the
// full [0,count) sequence.
func (p *Pool) dispatchPerThread(count int, work WorkFunc) {
	for i := 0; i < p.workerCount; i++ {
		s := &p.slots[i]
		if count == 0 {
			s.finishWithNoWork()
			continue
		}
		s.first, s.last = 0, count-1
		s.fn = p.rangeTrampoline(work, i)
		s.signalAvailable()
	}

	if count > 0 {
		p.runRangeInline(work, 0, count-1, p.workerCount)
	}

	p.waitAllDone()
}

// dispatchLoadBalancing implements spec.md §4.3: a shared fetch-add
// counter bounded by count, reset before and after the dispatch.
func (p *Pool) dispatchLoadBalancing(count int, work WorkFunc) {
	p.lbCounter.Store(0)
	p.lbBound.Store(int64(count))
	defer func() {
		p.lbCounter.Store(0)
		p.lbBound.Store(0)
	}()

	for i := 0; i < p.workerCount; i++ {
		s := &p.slots[i]
		s.fn = p.loadBalancingTrampoline(work, i)
		s.signalAvailable()
	}

	p.drainLoadBalancing(work, p.workerCount)

	p.waitAllDone()
}

func (p *Pool) loadBalancingTrampoline(work WorkFunc, threadIndex int) func(*slot) {
	return func(s *slot) {
		defer s.signalDone()
		p.drainLoadBalancing(work, threadIndex)
	}
}

// drainLoadBalancing repeatedly claims the next index from the shared
// counter and runs it, until the counter reaches the bound. Every
// executor performs exactly one "over-read" fetch-add past the end of
// the range to discover there is no more work, matching spec.md §4.3's
// "total increments equal N + E" invariant.
func (p *Pool) drainLoadBalancing(work WorkFunc, threadIndex int) {
	for {
		i := p.lbCounter.Add(1) - 1
		if i >= p.lbBound.Load() {
			return
		}
		p.executeItem(work, int(i), threadIndex)
	}
}

// waitAllDone is the dispatcher's reciprocal wait (spec.md §4.5): a pure
// spin on each worker slot's flag until it reads DONE, then reset to
// IDLE. It never parks — the caller has nothing else to do, and parking
// would only add latency to the *next* dispatch.
func (p *Pool) waitAllDone() {
	for i := 0; i < p.workerCount; i++ {
		s := &p.slots[i]
		for s.flag.Load() != flagDone {
			// Busy-spin by design; see comment above.
		}
		s.resetIdle()
	}
}
