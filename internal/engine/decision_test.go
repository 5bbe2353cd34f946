package engine

import (
	"reflect"
	"testing"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
)

func judgmentSet(confidences map[string]float64) map[string]domain.Judgment {
	out := make(map[string]domain.Judgment, len(confidences))
	for id, conf := range confidences {
		out[id] = domain.Judgment{
			Confidence:   conf,
			Validity:     0.8,
			Verification: 0.7,
			SourceID:     id,
		}
	}
	return out
}

func decisionInput(c *contract.Contract, judgments map[string]domain.Judgment) Input {
	return Input{
		Judgments: judgments,
		Aggregate: NewSynthesizer(c).AggregateConfidence(judgments),
		Advisory:  Advise(judgments, len(c.Order)),
	}
}

func TestDecide_FalsifiedHighValidityRejects(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.9, "deontic": 0.9, "monist": 0.9,
	})
	j := judgments["skeptic"]
	j.Falsified = true
	j.Confidence = 0.25
	j.Validity = 0.9
	judgments["skeptic"] = j

	out := Decide(c, decisionInput(c, judgments))
	if out.Status != domain.StatusReject {
		t.Errorf("status = %s, want REJECT", out.Status)
	}
	if out.Rule != "falsified-reject" {
		t.Errorf("rule = %s, want falsified-reject", out.Rule)
	}
}

func TestDecide_FalsifiedLowValidityDoesNotReject(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.9, "deontic": 0.9, "monist": 0.9,
	})
	j := judgments["skeptic"]
	j.Falsified = true
	j.Confidence = 0.25
	j.Validity = 0.5
	judgments["skeptic"] = j

	out := Decide(c, decisionInput(c, judgments))
	if out.Status == domain.StatusReject {
		t.Errorf("low-validity falsification must not reject, got %s via %s", out.Status, out.Rule)
	}
}

func TestDecide_QuorumSuspends(t *testing.T) {
	c := contract.Default() // quorum 3 of 4
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.9,
	})

	out := Decide(c, decisionInput(c, judgments))
	if out.Status != domain.StatusSuspend {
		t.Errorf("status = %s, want SUSPEND with 2 of 4 present", out.Status)
	}
	if out.Rule != "quorum-suspend" {
		t.Errorf("rule = %s, want quorum-suspend", out.Rule)
	}
}

func TestDecide_BelowEntropyFloorSuspends(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.3, "skeptic": 0.3, "deontic": 0.3, "monist": 0.3,
	})

	out := Decide(c, decisionInput(c, judgments))
	if out.Status != domain.StatusSuspend {
		t.Errorf("status = %s, want SUSPEND below entropy floor", out.Status)
	}
	if out.Rule != "entropy-floor-suspend" {
		t.Errorf("rule = %s, want entropy-floor-suspend", out.Rule)
	}
}

func TestDecide_DivergenceReinterprets(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.85, "deontic": 0.2, "monist": 0.88,
	})

	out := Decide(c, decisionInput(c, judgments))
	if out.Status != domain.StatusReinterpreted {
		t.Errorf("status = %s, want REINTERPRETED for 0.2 outlier", out.Status)
	}
}

func TestDecide_ConditionalBand(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.7, "skeptic": 0.7, "deontic": 0.7, "monist": 0.7,
	})

	out := Decide(c, decisionInput(c, judgments))
	if out.Status != domain.StatusConditional {
		t.Errorf("status = %s, want CONDITIONAL between floor and ceiling", out.Status)
	}
}

func TestDecide_Accept(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.88, "deontic": 0.92, "monist": 0.87,
	})

	out := Decide(c, decisionInput(c, judgments))
	if out.Status != domain.StatusAccept {
		t.Errorf("status = %s, want ACCEPT", out.Status)
	}
	if out.Rule != "accept" {
		t.Errorf("rule = %s, want accept", out.Rule)
	}
}

func TestDecide_Deterministic(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.85, "deontic": 0.2, "monist": 0.88,
	})
	in := decisionInput(c, judgments)

	first := Decide(c, in)
	second := Decide(c, in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("decide not deterministic: %v vs %v", first, second)
	}
}

func TestDecide_AdvisoryNeverFlipsStatus(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.9,
	})

	in := decisionInput(c, judgments)
	in.Advisory = domain.Advisory{
		ReliabilityTier:        domain.TierA,
		EpistemicInevitability: 0.99,
	}

	out := Decide(c, in)
	if out.Status != domain.StatusSuspend {
		t.Errorf("glowing advisory flipped a quorum suspend to %s", out.Status)
	}
	if out.Advisory.EpistemicInevitability != 0.99 {
		t.Errorf("advisory must still be attached to the outcome")
	}
}

func TestConfidenceSpread(t *testing.T) {
	judgments := judgmentSet(map[string]float64{"a": 0.9, "b": 0.2, "c": 0.85})
	if got := ConfidenceSpread(judgments); got < 0.7-1e-9 || got > 0.7+1e-9 {
		t.Errorf("spread = %f, want 0.7", got)
	}
	if got := ConfidenceSpread(nil); got != 0 {
		t.Errorf("spread of empty set = %f, want 0", got)
	}
}

func TestDivergentPairs_SortedAndThresholded(t *testing.T) {
	c := contract.Default()
	judgments := judgmentSet(map[string]float64{
		"empiricist": 0.9, "skeptic": 0.85, "deontic": 0.2, "monist": 0.88,
	})

	pairs := DivergentPairs(c, judgments)
	want := [][2]string{
		{"deontic", "empiricist"},
		{"deontic", "monist"},
		{"deontic", "skeptic"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pairs = %v, want %v", pairs, want)
	}
}
