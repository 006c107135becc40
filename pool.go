// Package parafor is a persistent worker-pool primitive for fork-join
// style parallel loops: a fixed set of goroutines is started once and
// reused across many short-lived Dispatch calls, so that dispatch
// latency — not goroutine startup — is what a caller pays on the hot
// path.
package parafor

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/osor-io/parafor/internal/platform"
)

// Pool owns a fixed set of persistent worker goroutines plus the
// bookkeeping (the wake-hint counter and the load-balancing counter)
// shared across dispatches. A Pool must not be copied after first use.
type Pool struct {
	slots       []slot
	workerCount int

	// wakeHint is the shared "stay hot" counter; see wakehint.go.
	wakeHint uint32

	// lbCounter/lbBound back the LoadBalancing dispatch mode; see
	// drainLoadBalancing in dispatch.go.
	lbCounter atomic.Int64
	lbBound   atomic.Int64

	closed atomic.Bool
	wg     sync.WaitGroup

	// ownerGID pins Dispatch to the goroutine that called New, per
	// spec.md §4.1's "called from the owner thread" precondition.
	ownerGID int64

	// scratchBytes and startingCtx are spec.md §4.1's
	// per_thread_scratch_bytes and starting_context: advisory values
	// recorded at New and handed to every on_start/on_end hook call.
	scratchBytes int
	startingCtx  context.Context

	logger  *zap.Logger
	onStart func(ctx context.Context, threadIndex int, scratchBytes int)
	onEnd   func(ctx context.Context, threadIndex int)
}

// New starts a Pool: it computes the worker count from the configured
// fraction of available cores (never less than minWorkers) and spawns
// one persistent goroutine per worker. New returns as soon as the
// goroutines are started; each worker's onStart hook (if any) runs
// concurrently with New's return and with the first Dispatch call, per
// spec.md §4.1 ("workers come up already parked, ready for the first
// dispatch").
func New(opts ...Option) (*Pool, error) {
	cfg := defaultPoolConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	cores := cfg.numCPU()
	workerCount := int(float64(cores) * cfg.fractionOfCores)
	if workerCount < cfg.minWorkers {
		workerCount = cfg.minWorkers
	}
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		slots:        make([]slot, workerCount),
		workerCount:  workerCount,
		ownerGID:     goroutineID(),
		scratchBytes: cfg.scratchBytes,
		startingCtx:  cfg.startingCtx,
		logger:       cfg.logger,
		onStart:      cfg.onStart,
		onEnd:        cfg.onEnd,
	}

	for i := range p.slots {
		p.slots[i].threadIndex = i
	}

	p.wg.Add(workerCount)
	for i := range p.slots {
		go p.workerLoop(&p.slots[i])
	}

	p.logger.Info("parafor: pool started",
		zap.Int("worker_count", workerCount),
		zap.Int("cores", cores),
	)

	return p, nil
}

// Close stops every worker and waits for them to exit. It must be
// called from the same goroutine that called New, exactly once; a
// second call panics rather than silently succeeding, per spec.md
// §4.1's "re-calling without a matching init fails".
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		panic("parafor: Close called on an already-closed Pool")
	}

	for i := range p.slots {
		p.slots[i].shouldStop.Store(true)
	}

	p.WakeThreadsUp()
	for i := range p.slots {
		p.slots[i].signalAvailable()
	}

	p.wg.Wait()

	// Balance the hint back down without the "unmatched call" panic path:
	// Close legitimately wakes workers for the last time without a
	// corresponding "hot dispatch" ever completing.
	atomic.StoreUint32(&p.wakeHint, 0)
	platform.WakeAll(&p.wakeHint)

	p.logger.Info("parafor: pool stopped", zap.Int("worker_count", p.workerCount))

	return nil
}

// WorkerCount reports the number of persistent worker goroutines the
// Pool started with (the W in spec.md's E = W+1 executor count).
func (p *Pool) WorkerCount() int {
	return p.workerCount
}
