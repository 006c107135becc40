package parafor

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDispatchContiguousCoverageAndExactlyOnce(t *testing.T) {
	p := newTestPool(t, 4)

	const n = 997 // deliberately not a multiple of workerCount+1
	var hits [n]int32

	p.Dispatch(n, Contiguous, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("hits[%d] = %d, want exactly 1", i, h)
		}
	}
}

func TestDispatchLoadBalancingCoverageAndExactlyOnce(t *testing.T) {
	p := newTestPool(t, 4)

	const n = 997
	var hits [n]int32

	p.Dispatch(n, LoadBalancing, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("hits[%d] = %d, want exactly 1", i, h)
		}
	}
}

func TestDispatchPerThreadRunsFullRangeOnEveryExecutor(t *testing.T) {
	p := newTestPool(t, 3)

	const n = 10
	executors := p.WorkerCount() + 1

	var mu sync.Mutex
	counts := make(map[int]int, executors)

	p.Dispatch(n, PerThread, func(i int) {
		ti := ThreadIndex()
		mu.Lock()
		counts[ti]++
		mu.Unlock()
	})

	if len(counts) != executors {
		t.Fatalf("observed %d distinct executors, want %d", len(counts), executors)
	}
	for ti, c := range counts {
		if c != n {
			t.Fatalf("executor %d ran %d times, want %d", ti, c, n)
		}
	}
}

func TestDispatchZeroCountRunsNoWork(t *testing.T) {
	p := newTestPool(t, 4)

	for _, mode := range []Mode{Contiguous, LoadBalancing, PerThread} {
		called := false
		p.Dispatch(0, mode, func(int) { called = true })
		if called {
			t.Fatalf("mode %v: work function ran on a zero-count dispatch", mode)
		}
	}
}

func TestDispatchCanBeCalledManyTimesInARow(t *testing.T) {
	p := newTestPool(t, 4)

	for round := 0; round < 50; round++ {
		var sum int64
		p.Dispatch(100, Contiguous, func(i int) {
			atomic.AddInt64(&sum, int64(i))
		})
		if sum != 4950 {
			t.Fatalf("round %d: sum = %d, want 4950", round, sum)
		}
	}
}

func TestDispatchIndexVisibleInsideWork(t *testing.T) {
	p := newTestPool(t, 2)

	var mismatches int32
	p.Dispatch(64, LoadBalancing, func(i int) {
		if DispatchIndex() != i {
			atomic.AddInt32(&mismatches, 1)
		}
	})
	if mismatches != 0 {
		t.Fatalf("%d calls observed a DispatchIndex() mismatched with their argument", mismatches)
	}
}

func TestDispatchFromForeignGoroutinePanics(t *testing.T) {
	p := newTestPool(t, 2)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when Dispatch is called from a non-owner goroutine")
		}
	}()

	done := make(chan any, 1)
	go func() {
		defer func() { done <- recover() }()
		p.Dispatch(1, Contiguous, func(int) {})
	}()
	if r := <-done; r != nil {
		panic(r)
	}
}

func BenchmarkDispatchContiguous(b *testing.B) {
	p, err := New(WithMinWorkers(4))
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer p.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Dispatch(10_000, Contiguous, func(int) {})
	}
}

func BenchmarkWakeHintLatency(b *testing.B) {
	p, err := New(WithMinWorkers(4))
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer p.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Dispatch(1, Contiguous, func(int) {})
	}
}
