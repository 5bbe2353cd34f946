package domain

type ReliabilityTier string

const (
	TierA ReliabilityTier = "A"
	TierB ReliabilityTier = "B"
	TierC ReliabilityTier = "C"
	TierD ReliabilityTier = "D"
)

// Advisory is the meta-reasoning signal attached to every verdict for
// explanation. It is informational only: no decision rule reads it, and
// it can never flip a status on its own.
type Advisory struct {
	ReliabilityTier        ReliabilityTier    `json:"reliability_tier"`
	EpistemicInevitability float64            `json:"epistemic_inevitability"`
	Probabilities          map[string]float64 `json:"probabilities,omitempty"`
}
