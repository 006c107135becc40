package parafor

import (
	"context"

	"go.uber.org/zap"

	"github.com/osor-io/parafor/internal/platform"
)

// defaultScratchBytes is spec.md's per_thread_scratch_bytes default: a
// 128 KiB advisory scratch-arena size handed to each worker's on_start
// hook, which the hook is free to use (or ignore) when setting up
// whatever per-thread resource it manages.
const defaultScratchBytes = 128 * 1024

// poolConfig holds New's defaults before any Option is applied. It is
// unexported: callers only ever see the functional-option surface,
// matching the pattern used for logger construction elsewhere in the
// ecosystem (an Option mutates a private config struct).
type poolConfig struct {
	fractionOfCores float64
	minWorkers      int
	scratchBytes    int
	startingCtx     context.Context
	logger          *zap.Logger
	onStart         func(ctx context.Context, threadIndex int, scratchBytes int)
	onEnd           func(ctx context.Context, threadIndex int)
	numCPU          func() int
}

func defaultPoolConfig() *poolConfig {
	return &poolConfig{
		fractionOfCores: 0.8,
		minWorkers:      4,
		scratchBytes:    defaultScratchBytes,
		startingCtx:     context.Background(),
		logger:          zap.NewNop(),
		numCPU:          platform.NumCPU,
	}
}

// Option configures a Pool at construction time.
type Option func(*poolConfig)

// WithFractionOfCores overrides the default 0.8 (80% of available
// cores) used to size the worker pool.
func WithFractionOfCores(fraction float64) Option {
	return func(c *poolConfig) { c.fractionOfCores = fraction }
}

// WithMinWorkers overrides the default floor of 4 workers, applied
// regardless of how few cores WithFractionOfCores would otherwise
// compute (spec.md §4.1's protection for small/constrained machines).
func WithMinWorkers(minWorkers int) Option {
	return func(c *poolConfig) { c.minWorkers = minWorkers }
}

// WithScratchBytes overrides the default 128 KiB per_thread_scratch_bytes
// advisory size. The Pool itself never allocates this memory; the value
// is only recorded and handed to each worker's on_start hook, which
// decides what (if anything) to do with it.
func WithScratchBytes(scratchBytes int) Option {
	return func(c *poolConfig) { c.scratchBytes = scratchBytes }
}

// WithStartingContext overrides the context.Context captured at New and
// handed to every on_start/on_end hook call. Defaults to
// context.Background().
func WithStartingContext(ctx context.Context) Option {
	return func(c *poolConfig) {
		if ctx != nil {
			c.startingCtx = ctx
		}
	}
}

// WithLogger overrides the default no-op logger. Pools log pool
// start/stop at Info and work-function panics at Error; nothing else.
func WithLogger(logger *zap.Logger) Option {
	return func(c *poolConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnStart registers a hook run once by each worker goroutine before
// it enters its park loop for the first time, receiving the pool's
// starting context, that worker's thread index, and the configured
// per-thread scratch size.
func WithOnStart(fn func(ctx context.Context, threadIndex int, scratchBytes int)) Option {
	return func(c *poolConfig) { c.onStart = fn }
}

// WithOnEnd registers a hook run once by each worker goroutine after it
// observes Close, immediately before the goroutine exits, receiving the
// pool's starting context and that worker's thread index.
func WithOnEnd(fn func(ctx context.Context, threadIndex int)) Option {
	return func(c *poolConfig) { c.onEnd = fn }
}

// withProcessorCounter overrides the function used to determine the
// available core count. It exists for deterministic tests and is
// intentionally unexported: production callers size a Pool off the
// machine they're actually running on.
func withProcessorCounter(fn func() int) Option {
	return func(c *poolConfig) { c.numCPU = fn }
}
