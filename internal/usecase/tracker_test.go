package usecase

import "testing"

func TestTracker(t *testing.T) {
	tr := newTestTracker(t, 100)

	t.Run("advance is monotonic", func(t *testing.T) {
		if got := tr.Advance(50); got != 100 {
			t.Fatalf("Advance(50) = %d, want 100", got)
		}
		if got := tr.Advance(150); got != 150 {
			t.Fatalf("Advance(150) = %d, want 150", got)
		}
		if got := tr.Watermark(); got != 150 {
			t.Fatalf("Watermark() = %d, want 150", got)
		}
	})

	t.Run("mark seen", func(t *testing.T) {
		if !tr.IsNew("m1") {
			t.Fatal("m1 should be new")
		}
		tr.MarkSeen("m1")
		if tr.IsNew("m1") {
			t.Fatal("m1 should be seen")
		}
	})

	t.Run("auth failures drive state", func(t *testing.T) {
		if s := tr.Snapshot(); s.State != StatePolling {
			t.Fatalf("state = %s", s.State)
		}
		if n := tr.RecordAuthFailure(); n != 1 {
			t.Fatalf("failures = %d", n)
		}
		tr.RecordAuthFailure()
		s := tr.Snapshot()
		if s.State != StateDegraded || s.AuthFailures != 2 {
			t.Fatalf("snapshot = %+v", s)
		}
		tr.ResetAuthFailures()
		if s := tr.Snapshot(); s.State != StatePolling || s.AuthFailures != 0 {
			t.Fatalf("snapshot after reset = %+v", s)
		}
	})

	t.Run("pending attempts", func(t *testing.T) {
		if n := tr.RecordDeliveryFailure("m2"); n != 1 {
			t.Fatalf("attempts = %d", n)
		}
		if n := tr.RecordDeliveryFailure("m2"); n != 2 {
			t.Fatalf("attempts = %d", n)
		}
		tr.RecordDeliveryFailure("m3")
		tr.RetainPending(map[string]struct{}{"m2": {}})
		if p := tr.Snapshot().Pending; p != 1 {
			t.Fatalf("pending = %d, want 1", p)
		}
		tr.MarkSeen("m2")
		if p := tr.Snapshot().Pending; p != 0 {
			t.Fatalf("pending = %d, want 0", p)
		}
	})
}
