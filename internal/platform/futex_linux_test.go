//go:build linux

package platform

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWaitWhileEqualWakesOnChange(t *testing.T) {
	var addr uint32

	woke := make(chan struct{})
	go func() {
		WaitWhileEqual(&addr, 0)
		close(woke)
	}()

	// Give the waiter a chance to reach the futex syscall before we
	// change the value and wake it; a spurious early return is fine,
	// the test only needs the goroutine to eventually observe the
	// update and exit.
	time.Sleep(10 * time.Millisecond)
	atomic.StoreUint32(&addr, 1)
	WakeAll(&addr)

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("WaitWhileEqual did not return after the value changed and WakeAll was called")
	}
}
