package engine

import (
	"errors"
	"fmt"

	"github.com/adjudex/tribunal/internal/domain"
)

var (
	ErrOutOfRange          = errors.New("judgment metric out of range")
	ErrFalsifiedConfidence = errors.New("falsified judgment exceeds confidence ceiling")
	ErrMissingSource       = errors.New("judgment missing source id")
)

// ValidateJudgment checks a single judgment against the contract
// invariants. It is a pure check with no side effects; a judgment must
// pass before it may enter the shadow channel or the decision runtime.
func ValidateJudgment(j domain.Judgment, falsifiedCeiling float64) error {
	metrics := []struct {
		name  string
		value float64
	}{
		{"confidence", j.Confidence},
		{"validity", j.Validity},
		{"verification", j.Verification},
	}
	for _, m := range metrics {
		if m.value < 0 || m.value > 1 {
			return fmt.Errorf("%w: %s = %v", ErrOutOfRange, m.name, m.value)
		}
	}

	if j.Falsified && j.Confidence > falsifiedCeiling {
		return fmt.Errorf("%w: confidence %v > ceiling %v", ErrFalsifiedConfidence, j.Confidence, falsifiedCeiling)
	}

	if j.SourceID == "" {
		return ErrMissingSource
	}

	return nil
}
