package engine

import (
	"sort"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
)

// Input is everything the decision runtime may consult. The advisory is
// carried only so it can be attached to the outcome; no rule predicate
// reads it — confidence in a bypassable advisory channel must never
// override the hard rules.
type Input struct {
	Judgments map[string]domain.Judgment
	Aggregate float64
	Advisory  domain.Advisory
}

// Rule is one predicate/outcome pair of the contract-fixed priority
// order.
type Rule struct {
	Name    string
	Outcome domain.Status
	Match   func(c *contract.Contract, in Input) bool
}

// Outcome is the decision runtime's result: the status, the rule that
// produced it, and the advisory signal carried through for explanation.
type Outcome struct {
	Status   domain.Status
	Rule     string
	Advisory domain.Advisory
}

// Rules returns the priority-ordered rule table. The slice order is the
// decision semantics and must not be reordered.
func Rules() []Rule {
	return []Rule{
		{
			Name:    "falsified-reject",
			Outcome: domain.StatusReject,
			Match: func(c *contract.Contract, in Input) bool {
				for _, j := range in.Judgments {
					if j.Falsified && j.Validity >= c.RejectValidityThreshold {
						return true
					}
				}
				return false
			},
		},
		{
			Name:    "quorum-suspend",
			Outcome: domain.StatusSuspend,
			Match: func(c *contract.Contract, in Input) bool {
				return len(in.Judgments) < c.Quorum
			},
		},
		{
			Name:    "entropy-floor-suspend",
			Outcome: domain.StatusSuspend,
			Match: func(c *contract.Contract, in Input) bool {
				return in.Aggregate < c.EntropyFloor
			},
		},
		{
			Name:    "divergence-reinterpret",
			Outcome: domain.StatusReinterpreted,
			Match: func(c *contract.Contract, in Input) bool {
				return ConfidenceSpread(in.Judgments) > c.DivergenceThreshold
			},
		},
		{
			Name:    "conditional-band",
			Outcome: domain.StatusConditional,
			Match: func(c *contract.Contract, in Input) bool {
				return in.Aggregate < c.AcceptCeiling
			},
		},
		{
			Name:    "accept",
			Outcome: domain.StatusAccept,
			Match:   func(*contract.Contract, Input) bool { return true },
		},
	}
}

// Decide evaluates the rule table top to bottom; the first matching
// rule wins. Pure and deterministic: identical input always yields an
// identical outcome.
func Decide(c *contract.Contract, in Input) Outcome {
	for _, rule := range Rules() {
		if rule.Match(c, in) {
			return Outcome{Status: rule.Outcome, Rule: rule.Name, Advisory: in.Advisory}
		}
	}
	// Unreachable: the final rule always matches.
	return Outcome{Status: domain.StatusSuspend, Rule: "fallthrough", Advisory: in.Advisory}
}

// ConfidenceSpread is the maximum pairwise confidence distance across
// the present judgments.
func ConfidenceSpread(judgments map[string]domain.Judgment) float64 {
	first := true
	var lo, hi float64
	for _, j := range judgments {
		if first {
			lo, hi = j.Confidence, j.Confidence
			first = false
			continue
		}
		if j.Confidence < lo {
			lo = j.Confidence
		}
		if j.Confidence > hi {
			hi = j.Confidence
		}
	}
	if first {
		return 0
	}
	return hi - lo
}

// DivergentPairs returns the module pairs whose confidence differs
// beyond the divergence threshold, in lexicographic order.
func DivergentPairs(c *contract.Contract, judgments map[string]domain.Judgment) [][2]string {
	ids := make([]string, 0, len(judgments))
	for id := range judgments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var pairs [][2]string
	for i := 0; i < len(ids); i++ {
		for k := i + 1; k < len(ids); k++ {
			a, b := judgments[ids[i]], judgments[ids[k]]
			diff := a.Confidence - b.Confidence
			if diff < 0 {
				diff = -diff
			}
			if diff > c.DivergenceThreshold {
				pairs = append(pairs, [2]string{ids[i], ids[k]})
			}
		}
	}
	return pairs
}
