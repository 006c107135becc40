package parafor

import "sync"

// defaultPool backs the package-level Init/Deinit/Dispatch/WakeThreadsUp/
// SendThreadsToSleep functions, for callers who only ever need one pool
// per process and would rather not thread a *Pool through their code
// (SPEC_FULL.md §4.7).
var (
	defaultPoolMu sync.Mutex
	defaultPool   *Pool
)

// Init creates the package-level default Pool. Calling Init twice
// without an intervening Deinit panics, mirroring (*Pool).Close's
// double-close behavior.
func Init(opts ...Option) error {
	defaultPoolMu.Lock()
	defer defaultPoolMu.Unlock()

	if defaultPool != nil {
		panic("parafor: Init called while the default Pool is already running")
	}

	p, err := New(opts...)
	if err != nil {
		return err
	}
	defaultPool = p
	return nil
}

// Deinit stops the package-level default Pool. Calling Deinit without a
// matching Init panics.
func Deinit() error {
	defaultPoolMu.Lock()
	p := defaultPool
	defaultPool = nil
	defaultPoolMu.Unlock()

	if p == nil {
		panic("parafor: Deinit called without a matching Init")
	}
	return p.Close()
}

func currentDefaultPool() *Pool {
	defaultPoolMu.Lock()
	defer defaultPoolMu.Unlock()
	if defaultPool == nil {
		panic("parafor: called before Init (or after Deinit)")
	}
	return defaultPool
}

// Dispatch runs work on the package-level default Pool. See
// (*Pool).Dispatch.
func Dispatch(count int, mode Mode, work WorkFunc) {
	currentDefaultPool().Dispatch(count, mode, work)
}

// WakeThreadsUp keeps the package-level default Pool's workers spinning
// rather than parked. See (*Pool).WakeThreadsUp.
func WakeThreadsUp() {
	currentDefaultPool().WakeThreadsUp()
}

// SendThreadsToSleep reverses a WakeThreadsUp call on the package-level
// default Pool. See (*Pool).SendThreadsToSleep.
func SendThreadsToSleep() {
	currentDefaultPool().SendThreadsToSleep()
}
