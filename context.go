package parafor

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// execState is the ambient state visible to DispatchIndex/ThreadIndex
// while a goroutine is inside a call to a WorkFunc.
type execState struct {
	dispatchIndex int
	threadIndex   int
}

// execStates maps a goroutine id to its current execState. This is the
// Go-native stand-in for spec.md §3's "thread-local dispatch_index":
// Go has no first-class thread-local storage, so the mapping is keyed
// on the goroutine id recovered from runtime.Stack, the same technique
// behind goroutine-local-storage packages in the wider ecosystem (the
// pack's own github.com/joeycumines/goroutineid module documents this
// exact use case, though its implementation wasn't available to copy
// from — see DESIGN.md).
//
// WorkFunc's own dispatchIndex parameter (spec.md Design Notes §9(b)) is
// the cheap, zero-lookup way to get this value and should be preferred;
// DispatchIndex/ThreadIndex exist for code that can't thread the index
// through its call signature and are not on any hot path in this
// package itself.
var execStates sync.Map // map[int64]execState

// goroutineID recovers the calling goroutine's runtime id by parsing the
// header line runtime.Stack always emits ("goroutine 123 [running]:").
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

// bindExec records the dispatch/thread index for the calling goroutine
// for the duration of a single WorkFunc call, returning a function that
// clears it again. Outside of this window DispatchIndex/ThreadIndex
// return -1, per spec.md §3's "restored to -1 after" contract.
func bindExec(dispatchIndex, threadIndex int) (unbind func()) {
	gid := goroutineID()
	execStates.Store(gid, execState{dispatchIndex: dispatchIndex, threadIndex: threadIndex})
	return func() { execStates.Delete(gid) }
}

// DispatchIndex returns the item index the calling goroutine is
// currently processing, or -1 if it is not inside a WorkFunc call.
func DispatchIndex() int {
	if v, ok := execStates.Load(goroutineID()); ok {
		return v.(execState).dispatchIndex
	}
	return -1
}

// ThreadIndex returns the executor index (0-based worker index, or the
// pool's worker count for the caller's own inline share) for the
// calling goroutine, or -1 if it is not currently executing dispatched
// work.
func ThreadIndex() int {
	if v, ok := execStates.Load(goroutineID()); ok {
		return v.(execState).threadIndex
	}
	return -1
}
