package parafor

import "testing"

func TestWakeHintBalance(t *testing.T) {
	t.Run("matched calls return the counter to zero", func(t *testing.T) {
		p := &Pool{}
		p.WakeThreadsUp()
		if !p.hot() {
			t.Fatal("expected pool to be hot after WakeThreadsUp")
		}
		p.SendThreadsToSleep()
		if p.hot() {
			t.Fatal("expected pool to be cold after a matching SendThreadsToSleep")
		}
	})

	t.Run("nested wake/sleep pairs stay hot until the outermost sleeps", func(t *testing.T) {
		p := &Pool{}
		p.WakeThreadsUp()
		p.WakeThreadsUp()
		p.SendThreadsToSleep()
		if !p.hot() {
			t.Fatal("expected pool to still be hot with one outstanding WakeThreadsUp")
		}
		p.SendThreadsToSleep()
		if p.hot() {
			t.Fatal("expected pool to be cold after both calls unwound")
		}
	})

	t.Run("unmatched SendThreadsToSleep panics and preserves the invariant", func(t *testing.T) {
		p := &Pool{}
		func() {
			defer func() {
				if recover() == nil {
					t.Fatal("expected a panic from an unmatched SendThreadsToSleep")
				}
			}()
			p.SendThreadsToSleep()
		}()
		if p.hot() {
			t.Fatal("wake-hint counter should remain at its pre-panic value of zero")
		}
	})
}
