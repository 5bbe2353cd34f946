package domain

// Judgment is the confidence/validity/verification triplet one reasoning
// module emits for one claim. Judgments are immutable once emitted; a
// revised opinion is a new Judgment, never a mutation of an old one.
type Judgment struct {
	Confidence   float64 `json:"confidence"`
	Validity     float64 `json:"validity"`
	Verification float64 `json:"verification"`
	Falsified    bool    `json:"falsified"`
	SourceID     string  `json:"source_id"`
}
