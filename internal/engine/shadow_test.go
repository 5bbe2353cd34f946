package engine

import (
	"errors"
	"testing"

	"github.com/adjudex/tribunal/internal/domain"
	"go.uber.org/zap"
)

func newTestChannel() *Channel {
	return NewChannel(0.25, 2, zap.NewNop())
}

func TestChannel_EmitRejectsOversizedDelta(t *testing.T) {
	c := newTestChannel()

	err := c.Emit("a", domain.BroadcastTarget, domain.MetricConfidence, 0.30, 2)
	if !errors.Is(err, ErrAdjustmentLimitExceeded) {
		t.Fatalf("error = %v, want ErrAdjustmentLimitExceeded", err)
	}
	if c.Pending() != 0 {
		t.Errorf("pending = %d, want 0 after rejected emit", c.Pending())
	}
	if c.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", c.Dropped())
	}

	if err := c.Emit("a", domain.BroadcastTarget, domain.MetricConfidence, -0.25, 2); err != nil {
		t.Errorf("delta at the limit should be accepted, got %v", err)
	}
}

func TestChannel_TTLCountsModuleObservations(t *testing.T) {
	c := newTestChannel()

	if err := c.Emit("a", domain.BroadcastTarget, domain.MetricConfidence, 0.1, 2); err != nil {
		t.Fatalf("emit: %v", err)
	}

	// Two subsequent modules observe the message, a third does not.
	if got := c.DrainFor("b"); len(got) != 1 {
		t.Fatalf("first observer got %d messages, want 1", len(got))
	}
	if got := c.DrainFor("c"); len(got) != 1 {
		t.Fatalf("second observer got %d messages, want 1", len(got))
	}
	if got := c.DrainFor("d"); len(got) != 0 {
		t.Fatalf("third observer got %d messages, want 0", len(got))
	}
	if c.Pending() != 0 {
		t.Errorf("pending = %d, want 0 after ttl exhausted", c.Pending())
	}
}

func TestChannel_DrainDecrementsTTLInReturnedCopy(t *testing.T) {
	c := newTestChannel()
	_ = c.Emit("a", domain.BroadcastTarget, domain.MetricConfidence, 0.1, 2)

	got := c.DrainFor("b")
	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if got[0].TTL != 1 {
		t.Errorf("ttl = %d, want 1 after one observation", got[0].TTL)
	}
}

func TestChannel_SelfShadowsNeverReturned(t *testing.T) {
	c := newTestChannel()
	_ = c.Emit("b", domain.BroadcastTarget, domain.MetricConfidence, 0.1, 2)

	if got := c.DrainFor("b"); len(got) != 0 {
		t.Fatalf("module observed its own shadow: %v", got)
	}
	if c.Pending() != 1 {
		t.Errorf("self-skip must not consume a hop, pending = %d", c.Pending())
	}
}

func TestChannel_DirectedMessageOnlyReachesTarget(t *testing.T) {
	c := newTestChannel()
	_ = c.Emit("a", "c", domain.MetricValidity, -0.05, 1)

	if got := c.DrainFor("b"); len(got) != 0 {
		t.Fatalf("non-target observed directed message: %v", got)
	}
	got := c.DrainFor("c")
	if len(got) != 1 {
		t.Fatalf("target got %d messages, want 1", len(got))
	}
	if got[0].Metric != domain.MetricValidity {
		t.Errorf("metric = %s, want validity", got[0].Metric)
	}
	if c.Pending() != 0 {
		t.Errorf("pending = %d, want 0 after ttl=1 read", c.Pending())
	}
}

func TestChannel_DrainPreservesEmissionOrder(t *testing.T) {
	c := newTestChannel()
	_ = c.Emit("a", domain.BroadcastTarget, domain.MetricConfidence, 0.10, 1)
	_ = c.Emit("b", domain.BroadcastTarget, domain.MetricConfidence, -0.05, 1)

	got := c.DrainFor("d")
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].Seq >= got[1].Seq {
		t.Errorf("messages out of order: seq %d before %d", got[0].Seq, got[1].Seq)
	}
	if got[0].Delta != 0.10 || got[1].Delta != -0.05 {
		t.Errorf("deltas out of order: %v", got)
	}
}

func TestChannel_ZeroTTLTakesDefault(t *testing.T) {
	c := newTestChannel()
	_ = c.Emit("a", domain.BroadcastTarget, domain.MetricConfidence, 0.1, 0)

	got := c.DrainFor("b")
	if len(got) != 1 || got[0].TTL != 1 {
		t.Fatalf("default ttl not applied: %v", got)
	}
}
