package engine

import (
	"context"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"go.uber.org/zap"
)

// Shadow emission triggers. A falsified run broadcasts a negative nudge;
// a strong run broadcasts a dampened positive one.
const (
	falsifiedShadowDelta   = -0.15
	strongConfidenceFloor  = 0.80
	confidenceShadowFactor = 0.30
	confidenceShadowMax    = 0.10
)

// Step is one traversal increment yielded by a module's local reasoning
// structure.
type Step struct {
	ConfidenceDelta   float64
	ValidityDelta     float64
	VerificationDelta float64
	Falsify           bool
}

// Traversal walks one module's local reasoning structure. Next returns
// the step for the current node and advances, or ok=false at a leaf.
type Traversal interface {
	Next(claim domain.Claim) (step Step, ok bool)
}

// Evaluator runs a module traversal under the contract's confidence
// bounds: the accumulated confidence is clamped to the cap after every
// step, never only at the end, so no single step can produce an
// uncappable spike. When the run completes it publishes trigger-based
// shadows for the modules still to come.
type Evaluator struct {
	contract *contract.Contract
	logger   *zap.Logger
}

func NewEvaluator(c *contract.Contract, logger *zap.Logger) *Evaluator {
	return &Evaluator{contract: c, logger: logger}
}

// Evaluate produces one judgment for moduleID. Pending shadow messages
// addressed to the module are drained once at the start of the run (one
// TTL hop per module observation) and folded into the starting metrics.
// Exceeding the step budget is not an error: traversal stops and the
// verification score pays the fatigue penalty.
func (e *Evaluator) Evaluate(ctx context.Context, moduleID string, t Traversal, claim domain.Claim, shadows domain.ShadowView) (domain.Judgment, error) {
	confidence := 0.5
	validity := 0.5
	verification := 0.5

	if shadows != nil {
		for _, msg := range shadows.DrainFor(moduleID) {
			switch msg.Metric {
			case domain.MetricConfidence:
				confidence = clamp01(confidence + msg.Delta)
			case domain.MetricValidity:
				validity = clamp01(validity + msg.Delta)
			case domain.MetricVerification:
				verification = clamp01(verification + msg.Delta)
			}
		}
	}

	falsified := false
	fatigued := false
	steps := 0

	for {
		if err := ctx.Err(); err != nil {
			return domain.Judgment{}, err
		}

		step, ok := t.Next(claim)
		if !ok {
			break
		}

		confidence += step.ConfidenceDelta
		validity += step.ValidityDelta
		verification += step.VerificationDelta
		if step.Falsify {
			falsified = true
		}

		// Cap after every step.
		confidence = clamp01(min(confidence, e.contract.ConfidenceCap))
		validity = clamp01(validity)
		verification = clamp01(verification)

		steps++
		if steps >= e.contract.MaxSteps {
			fatigued = true
			break
		}
	}

	if fatigued {
		verification = clamp01(verification - e.contract.FatiguePenalty)
		e.logger.Debug("traversal hit step budget",
			zap.String("module", moduleID),
			zap.Int("steps", steps))
	}

	if falsified && confidence > e.contract.FalsifiedCeiling {
		confidence = e.contract.FalsifiedCeiling
	}

	j := domain.Judgment{
		Confidence:   confidence,
		Validity:     validity,
		Verification: verification,
		Falsified:    falsified,
		SourceID:     moduleID,
	}

	if err := ValidateJudgment(j, e.contract.FalsifiedCeiling); err != nil {
		return domain.Judgment{}, err
	}

	e.publish(moduleID, j, shadows)
	return j, nil
}

// publish emits the post-run shadow nudge when a trigger fires. An
// oversized emit is dropped and logged; it never fails the pass.
func (e *Evaluator) publish(moduleID string, j domain.Judgment, shadows domain.ShadowView) {
	if shadows == nil {
		return
	}

	var delta float64
	switch {
	case j.Falsified:
		delta = falsifiedShadowDelta
	case j.Confidence >= strongConfidenceFloor:
		delta = min(confidenceShadowFactor*(j.Confidence-0.5), confidenceShadowMax)
	default:
		return
	}

	if err := shadows.Emit(moduleID, domain.BroadcastTarget, domain.MetricConfidence, delta, 0); err != nil {
		e.logger.Warn("shadow emit dropped",
			zap.String("module", moduleID),
			zap.Float64("delta", delta),
			zap.Error(err))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
