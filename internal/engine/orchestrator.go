package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"go.uber.org/zap"
)

// Result is the outcome of one orchestration pass. Modules that did not
// produce a valid judgment appear in Absent (and, when they failed
// rather than timed out, in Failures); their absence is visible to the
// decision runtime through the quorum rule.
type Result struct {
	Judgments map[string]domain.Judgment
	Failures  map[string]error
	Absent    []string
	TimedOut  bool
}

// Orchestrator runs the configured reasoning modules once per claim,
// strictly in order, threading one shadow channel through all of them.
// Ordering is load-bearing: later modules may consume shadows from
// earlier ones, so the pass is never parallelized.
type Orchestrator struct {
	contract *contract.Contract
	logger   *zap.Logger
}

func NewOrchestrator(c *contract.Contract, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{contract: c, logger: logger}
}

// Run executes the modules in the given order. A module failure or an
// invalid judgment marks that module absent and the pass continues; a
// context deadline marks every remaining module absent and flags the
// result timed out.
func (o *Orchestrator) Run(ctx context.Context, claim domain.Claim, modules []domain.Reasoner) Result {
	shadows := NewChannel(o.contract.AdjustmentLimit, o.contract.ShadowTTL, o.logger)

	res := Result{
		Judgments: make(map[string]domain.Judgment, len(modules)),
		Failures:  make(map[string]error),
	}

	for _, m := range modules {
		id := m.ID()

		if ctx.Err() != nil {
			res.TimedOut = true
			res.Absent = append(res.Absent, id)
			continue
		}

		j, err := m.Judge(ctx, claim, shadows)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				res.TimedOut = true
				res.Absent = append(res.Absent, id)
				continue
			}
			o.logger.Warn("module failed",
				zap.String("module", id),
				zap.String("claim_id", claim.ID.String()),
				zap.Error(err))
			res.Failures[id] = err
			res.Absent = append(res.Absent, id)
			continue
		}

		if err := ValidateJudgment(j, o.contract.FalsifiedCeiling); err != nil {
			o.logger.Warn("judgment rejected",
				zap.String("module", id),
				zap.String("claim_id", claim.ID.String()),
				zap.Error(err))
			res.Failures[id] = err
			res.Absent = append(res.Absent, id)
			continue
		}

		res.Judgments[id] = j
	}

	sort.Strings(res.Absent)
	return res
}
