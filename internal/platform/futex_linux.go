//go:build linux

package platform

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ptr converts a *uint32 to the unsafe.Pointer the raw futex syscall
// needs. Kept as a named helper, mirroring the key32-style conversion
// helpers used around futex-based locks elsewhere in the Go ecosystem.
func ptr(addr *uint32) unsafe.Pointer {
	return unsafe.Pointer(addr)
}

// Futex op codes. golang.org/x/sys/unix does not export these as named
// constants (unlike FUTEX's close cousins elsewhere in the package), so
// they are declared locally; values match linux/futex.h.
const (
	futexWait        = 0
	futexWake        = 1
	futexPrivateFlag = 128
	futexWaitPrivate = futexWait | futexPrivateFlag
	futexWakePrivate = futexWake | futexPrivateFlag
)

// WaitWhileEqual blocks the calling goroutine until *addr no longer
// equals val, using the Linux futex syscall directly. A spurious return
// (EAGAIN, EINTR, or the kernel simply deciding to wake us) is legal and
// harmless: the caller always re-checks addr in a loop (see worker.go).
//
// unix.Syscall6 is a blocking syscall, which the Go runtime treats like
// any other: it runs entersyscall/exitsyscall around the call, so while
// the calling goroutine's OS thread (M) sleeps in the kernel, its P is
// handed off and other goroutines keep running. Callers do not need
// runtime.LockOSThread.
func WaitWhileEqual(addr *uint32, val uint32) {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(ptr(addr)),
		uintptr(futexWaitPrivate),
		uintptr(val),
		0, // no timeout: wait forever, subject to spurious wakeups
		0, 0,
	)
	if errno != 0 && errno != unix.EAGAIN && errno != unix.EINTR {
		// Transient failure: recorded (not logged); the worker loop
		// re-checks its flag and retries.
		lastFutexErr.Store(errno)
	}
}

// WakeAll wakes every goroutine (OS thread) parked in WaitWhileEqual on
// addr. A single call reaches all waiters, matching spec.md's "wake-all
// address" requirement so one should_threads_be_running transition can
// reach every worker at once.
func WakeAll(addr *uint32) {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(ptr(addr)),
		uintptr(futexWakePrivate),
		uintptr(int32(-1)), // wake an unbounded number of waiters
		0, 0, 0,
	)
	if errno != 0 {
		lastFutexErr.Store(errno)
	}
}
