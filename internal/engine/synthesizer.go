package engine

import (
	"fmt"
	"time"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"github.com/google/uuid"
)

// Synthesizer reconciles the judgment set into the externally visible
// verdict under the contract's fixed jurisdiction weights.
type Synthesizer struct {
	contract *contract.Contract
}

func NewSynthesizer(c *contract.Contract) *Synthesizer {
	return &Synthesizer{contract: c}
}

// AggregateConfidence is the jurisdiction-weighted mean over the present
// judgments. Absent modules' weight is redistributed proportionally by
// renormalizing over the present weights, not dropped — confidence is
// not penalized merely because a module failed to run.
func (s *Synthesizer) AggregateConfidence(judgments map[string]domain.Judgment) float64 {
	var weightSum, confidenceSum float64
	for id, j := range judgments {
		w := s.contract.ModuleWeight(id)
		weightSum += w
		confidenceSum += w * j.Confidence
	}
	if weightSum == 0 {
		return 0
	}
	return confidenceSum / weightSum
}

// Synthesize constructs the immutable verdict for one adjudication
// pass. Reinterpretations are generated only for REINTERPRETED
// outcomes, one per divergent module pair.
func (s *Synthesizer) Synthesize(claim domain.Claim, res Result, out Outcome) *domain.Verdict {
	v := &domain.Verdict{
		ID:                  uuid.New(),
		ClaimID:             claim.ID,
		Claim:               claim.Text,
		Status:              out.Status,
		Rule:                out.Rule,
		AggregateConfidence: s.AggregateConfidence(res.Judgments),
		Judgments:           res.Judgments,
		Absent:              res.Absent,
		Advisory:            out.Advisory,
		CreatedAt:           time.Now().UTC(),
	}

	if len(res.Failures) > 0 {
		v.Failures = make(map[string]string, len(res.Failures))
		for id, err := range res.Failures {
			v.Failures[id] = err.Error()
		}
	}

	if out.Status == domain.StatusReinterpreted {
		v.Reinterpretations = s.reinterpret(res.Judgments)
	}

	return v
}

// reinterpret produces one human-readable reinterpretation per divergent
// pair, stating which module's position yields: the one whose
// jurisdiction-weighted confidence is lower.
func (s *Synthesizer) reinterpret(judgments map[string]domain.Judgment) []string {
	pairs := DivergentPairs(s.contract, judgments)

	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		ja, jb := judgments[a], judgments[b]
		wa, wb := s.contract.ModuleWeight(a), s.contract.ModuleWeight(b)

		yielder, prevails := a, b
		if wa*ja.Confidence > wb*jb.Confidence {
			yielder, prevails = b, a
		}

		spread := ja.Confidence - jb.Confidence
		if spread < 0 {
			spread = -spread
		}

		out = append(out, fmt.Sprintf(
			"%s (confidence %.2f, weight %.2f) yields to %s (confidence %.2f, weight %.2f): spread %.2f exceeds divergence threshold %.2f",
			yielder, judgments[yielder].Confidence, s.contract.ModuleWeight(yielder),
			prevails, judgments[prevails].Confidence, s.contract.ModuleWeight(prevails),
			spread, s.contract.DivergenceThreshold,
		))
	}
	return out
}
