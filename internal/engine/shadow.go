package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/adjudex/tribunal/internal/domain"
	"go.uber.org/zap"
)

var ErrAdjustmentLimitExceeded = errors.New("shadow delta exceeds adjustment limit")

// Channel is the order-preserving shadow state shared by the modules of
// one adjudication call. It is created fresh per call and never reused
// across claims. Modules run strictly in sequence, so the channel needs
// no locking; a module can only ever observe messages emitted by
// modules that ran before it.
type Channel struct {
	limit      float64
	defaultTTL int
	logger     *zap.Logger

	messages []*domain.ShadowMessage
	seq      int
	dropped  int
}

func NewChannel(limit float64, defaultTTL int, logger *zap.Logger) *Channel {
	return &Channel{limit: limit, defaultTTL: defaultTTL, logger: logger}
}

// Emit enqueues a metric nudge for modules that run later in the pass.
// A ttl of zero or below takes the contract default. Deltas beyond the
// adjustment limit are refused with ErrAdjustmentLimitExceeded.
func (c *Channel) Emit(source, target, metric string, delta float64, ttl int) error {
	if math.Abs(delta) > c.limit {
		c.dropped++
		return fmt.Errorf("%w: |%v| > %v", ErrAdjustmentLimitExceeded, delta, c.limit)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.seq++
	c.messages = append(c.messages, &domain.ShadowMessage{
		Source: source,
		Target: target,
		Metric: metric,
		Delta:  delta,
		TTL:    ttl,
		Seq:    c.seq,
	})
	return nil
}

// DrainFor returns the live messages addressed to target, in emission
// order. Each returned message costs one TTL hop; a message whose TTL
// reaches zero is removed after this read. Messages a module emitted
// itself are never returned to it.
func (c *Channel) DrainFor(target string) []domain.ShadowMessage {
	var out []domain.ShadowMessage
	kept := c.messages[:0]

	for _, m := range c.messages {
		addressed := m.Target == target || m.Target == domain.BroadcastTarget
		if !addressed || m.Source == target {
			kept = append(kept, m)
			continue
		}

		m.TTL--
		out = append(out, *m)
		if m.TTL > 0 {
			kept = append(kept, m)
		}
	}

	c.messages = kept
	return out
}

// Pending reports how many messages are still live.
func (c *Channel) Pending() int { return len(c.messages) }

// Dropped reports how many emits were refused for exceeding the limit.
func (c *Channel) Dropped() int { return c.dropped }

var _ domain.ShadowView = (*Channel)(nil)
