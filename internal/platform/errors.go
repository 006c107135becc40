package platform

import "sync/atomic"

// lastFutexErr records the most recent transient error observed by the
// address-wait/wake primitive. It is never consulted for control flow: a
// transient OS call failure is recorded here and otherwise ignored, never
// treated as fatal; the worker loop simply re-checks its flag and parks
// again. The failure is not logged.
var lastFutexErr atomic.Value

// LastError returns the most recent transient error recorded by
// WaitWhileEqual/WakeAll, or nil if none has occurred. It is exposed for
// diagnostics only; the Pool neither reads nor logs it.
func LastError() error {
	v := lastFutexErr.Load()
	if v == nil {
		return nil
	}
	err, _ := v.(error)
	return err
}
