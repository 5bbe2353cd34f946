package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"go.uber.org/zap"
)

// stubReasoner emits a fixed judgment, optionally failing, emitting a
// shadow, or recording what it drained.
type stubReasoner struct {
	id        string
	judgment  domain.Judgment
	err       error
	emitDelta float64
	drained   []domain.ShadowMessage
	runLog    *[]string
	cancel    context.CancelFunc
}

func (s *stubReasoner) ID() string { return s.id }

func (s *stubReasoner) Judge(ctx context.Context, claim domain.Claim, shadows domain.ShadowView) (domain.Judgment, error) {
	if s.runLog != nil {
		*s.runLog = append(*s.runLog, s.id)
	}
	if s.cancel != nil {
		s.cancel()
		return domain.Judgment{}, ctx.Err()
	}
	if s.err != nil {
		return domain.Judgment{}, s.err
	}
	if shadows != nil {
		s.drained = shadows.DrainFor(s.id)
		if s.emitDelta != 0 {
			_ = shadows.Emit(s.id, domain.BroadcastTarget, domain.MetricConfidence, s.emitDelta, 0)
		}
	}
	return s.judgment, nil
}

func okJudgment(id string, conf float64) domain.Judgment {
	return domain.Judgment{Confidence: conf, Validity: 0.8, Verification: 0.7, SourceID: id}
}

func TestOrchestrator_RunsModulesInOrder(t *testing.T) {
	c := contract.Default()
	o := NewOrchestrator(c, zap.NewNop())

	var log []string
	modules := []domain.Reasoner{
		&stubReasoner{id: "empiricist", judgment: okJudgment("empiricist", 0.9), runLog: &log},
		&stubReasoner{id: "skeptic", judgment: okJudgment("skeptic", 0.8), runLog: &log},
		&stubReasoner{id: "deontic", judgment: okJudgment("deontic", 0.7), runLog: &log},
	}

	res := o.Run(context.Background(), domain.Claim{}, modules)
	if len(res.Judgments) != 3 {
		t.Fatalf("judgments = %d, want 3", len(res.Judgments))
	}

	want := []string{"empiricist", "skeptic", "deontic"}
	for i, id := range want {
		if log[i] != id {
			t.Fatalf("run order = %v, want %v", log, want)
		}
	}
}

func TestOrchestrator_ShadowsFlowForwardOnly(t *testing.T) {
	c := contract.Default()
	o := NewOrchestrator(c, zap.NewNop())

	first := &stubReasoner{id: "empiricist", judgment: okJudgment("empiricist", 0.9), emitDelta: 0.1}
	second := &stubReasoner{id: "skeptic", judgment: okJudgment("skeptic", 0.8), emitDelta: 0.1}
	third := &stubReasoner{id: "deontic", judgment: okJudgment("deontic", 0.7)}

	o.Run(context.Background(), domain.Claim{}, []domain.Reasoner{first, second, third})

	if len(first.drained) != 0 {
		t.Errorf("first module observed %d shadows, want 0 (no look-ahead)", len(first.drained))
	}
	if len(second.drained) != 1 {
		t.Errorf("second module observed %d shadows, want 1", len(second.drained))
	}
	if len(third.drained) != 2 {
		t.Errorf("third module observed %d shadows, want 2", len(third.drained))
	}
}

func TestOrchestrator_ModuleFailureDoesNotAbortPass(t *testing.T) {
	c := contract.Default()
	o := NewOrchestrator(c, zap.NewNop())

	boom := &domain.ModuleFailure{ModuleID: "skeptic", Cause: errors.New("malformed graph")}
	modules := []domain.Reasoner{
		&stubReasoner{id: "empiricist", judgment: okJudgment("empiricist", 0.9)},
		&stubReasoner{id: "skeptic", err: boom},
		&stubReasoner{id: "deontic", judgment: okJudgment("deontic", 0.7)},
	}

	res := o.Run(context.Background(), domain.Claim{}, modules)
	if len(res.Judgments) != 2 {
		t.Errorf("judgments = %d, want 2", len(res.Judgments))
	}
	if len(res.Absent) != 1 || res.Absent[0] != "skeptic" {
		t.Errorf("absent = %v, want [skeptic]", res.Absent)
	}
	if !errors.Is(res.Failures["skeptic"], boom) {
		t.Errorf("failure not recorded: %v", res.Failures)
	}
	if res.TimedOut {
		t.Error("module failure must not flag a timeout")
	}
}

func TestOrchestrator_InvalidJudgmentMarkedAbsent(t *testing.T) {
	c := contract.Default()
	o := NewOrchestrator(c, zap.NewNop())

	bad := domain.Judgment{Confidence: 1.5, Validity: 0.5, Verification: 0.5, SourceID: "skeptic"}
	modules := []domain.Reasoner{
		&stubReasoner{id: "empiricist", judgment: okJudgment("empiricist", 0.9)},
		&stubReasoner{id: "skeptic", judgment: bad},
	}

	res := o.Run(context.Background(), domain.Claim{}, modules)
	if _, ok := res.Judgments["skeptic"]; ok {
		t.Error("invalid judgment entered the result set")
	}
	if !errors.Is(res.Failures["skeptic"], ErrOutOfRange) {
		t.Errorf("failure = %v, want ErrOutOfRange", res.Failures["skeptic"])
	}
}

func TestOrchestrator_DeadlineMarksRemainingAbsent(t *testing.T) {
	c := contract.Default()
	o := NewOrchestrator(c, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	modules := []domain.Reasoner{
		&stubReasoner{id: "empiricist", judgment: okJudgment("empiricist", 0.9)},
		&stubReasoner{id: "skeptic", cancel: cancel},
		&stubReasoner{id: "deontic", judgment: okJudgment("deontic", 0.7)},
		&stubReasoner{id: "monist", judgment: okJudgment("monist", 0.7)},
	}

	res := o.Run(ctx, domain.Claim{}, modules)
	if !res.TimedOut {
		t.Fatal("expected timed-out result")
	}
	if len(res.Judgments) != 1 {
		t.Errorf("judgments = %d, want 1 (only the module that completed)", len(res.Judgments))
	}
	if len(res.Absent) != 3 {
		t.Errorf("absent = %v, want three entries", res.Absent)
	}
}
