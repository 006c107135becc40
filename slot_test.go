package parafor

import "testing"

func TestSlotFlagDiscipline(t *testing.T) {
	t.Run("idle to available to done to idle", func(t *testing.T) {
		var s slot
		s.signalAvailable()
		if got := s.flag.Load(); got != flagAvailable {
			t.Fatalf("flag = %d, want flagAvailable", got)
		}
		s.signalDone()
		if got := s.flag.Load(); got != flagDone {
			t.Fatalf("flag = %d, want flagDone", got)
		}
		s.resetIdle()
		if got := s.flag.Load(); got != flagIdle {
			t.Fatalf("flag = %d, want flagIdle", got)
		}
	})

	t.Run("no-work exception goes idle straight to done", func(t *testing.T) {
		var s slot
		s.finishWithNoWork()
		if got := s.flag.Load(); got != flagDone {
			t.Fatalf("flag = %d, want flagDone", got)
		}
		s.resetIdle()
		if got := s.flag.Load(); got != flagIdle {
			t.Fatalf("flag = %d, want flagIdle", got)
		}
	})

	t.Run("signalAvailable panics unless idle", func(t *testing.T) {
		var s slot
		s.signalAvailable()
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic calling signalAvailable twice in a row")
			}
		}()
		s.signalAvailable()
	})

	t.Run("signalDone panics unless available", func(t *testing.T) {
		var s slot
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic calling signalDone from idle")
			}
		}()
		s.signalDone()
	})

	t.Run("resetIdle panics unless done", func(t *testing.T) {
		var s slot
		s.signalAvailable()
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic calling resetIdle from available")
			}
		}()
		s.resetIdle()
	})

	t.Run("finishWithNoWork panics unless idle", func(t *testing.T) {
		var s slot
		s.signalAvailable()
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic calling finishWithNoWork from available")
			}
		}()
		s.finishWithNoWork()
	})
}
