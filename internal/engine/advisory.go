package engine

import (
	"math"
	"sort"

	"github.com/adjudex/tribunal/internal/domain"
)

// Flat distributions beyond this confidence spread drop the tier even
// with a full roster.
const tierSpreadBound = 0.25

// Advise derives the advisory meta-signal from the judgment set: a
// softmax over the present confidences yields the epistemic
// inevitability (the mass of the most probable module) and a
// reliability tier reflecting roster completeness and agreement. The
// signal is attached to verdicts for explanation only; no decision rule
// reads it.
func Advise(judgments map[string]domain.Judgment, configured int) domain.Advisory {
	if len(judgments) == 0 {
		return domain.Advisory{ReliabilityTier: domain.TierD}
	}

	ids := make([]string, 0, len(judgments))
	for id := range judgments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	confidences := make([]float64, len(ids))
	for i, id := range ids {
		confidences[i] = judgments[id].Confidence
	}

	probs := softmax(confidences)
	probabilities := make(map[string]float64, len(ids))
	var inevitability float64
	for i, id := range ids {
		probabilities[id] = probs[i]
		if probs[i] > inevitability {
			inevitability = probs[i]
		}
	}

	absent := configured - len(judgments)
	spread := ConfidenceSpread(judgments)

	var tier domain.ReliabilityTier
	switch {
	case absent == 0 && spread <= tierSpreadBound:
		tier = domain.TierA
	case absent == 0:
		tier = domain.TierB
	case absent == 1:
		tier = domain.TierC
	default:
		tier = domain.TierD
	}

	return domain.Advisory{
		ReliabilityTier:        tier,
		EpistemicInevitability: inevitability,
		Probabilities:          probabilities,
	}
}

func softmax(values []float64) []float64 {
	maxV := values[0]
	for _, v := range values[1:] {
		if v > maxV {
			maxV = v
		}
	}

	out := make([]float64, len(values))
	var total float64
	for i, v := range values {
		out[i] = math.Exp(v - maxV)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
