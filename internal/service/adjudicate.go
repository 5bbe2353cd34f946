package service

import (
	"context"
	"errors"
	"time"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"github.com/adjudex/tribunal/internal/engine"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrClaimTextEmpty = errors.New("claim text is required")
)

const DefaultAdjudicationTimeout = 500 * time.Millisecond

// AdjudicationService runs the full pass for one claim: orchestrate the
// modules, derive the advisory, decide, synthesize, and archive. It
// always returns a verdict; a deadline overrun yields a SUSPEND verdict
// rather than an error.
type AdjudicationService struct {
	contract     *contract.Contract
	modules      []domain.Reasoner
	orchestrator *engine.Orchestrator
	synthesizer  *engine.Synthesizer
	logger       *zap.Logger

	verdictStore    domain.VerdictStore
	embeddingClient domain.EmbeddingClient

	timeout time.Duration
}

func NewAdjudicationService(c *contract.Contract, modules []domain.Reasoner, logger *zap.Logger) *AdjudicationService {
	return &AdjudicationService{
		contract:     c,
		modules:      modules,
		orchestrator: engine.NewOrchestrator(c, logger),
		synthesizer:  engine.NewSynthesizer(c),
		logger:       logger,
		timeout:      DefaultAdjudicationTimeout,
	}
}

// SetVerdictStore enables best-effort archival of every verdict.
func (s *AdjudicationService) SetVerdictStore(vs domain.VerdictStore) {
	s.verdictStore = vs
}

// SetEmbeddingClient enables claim embeddings on archived verdicts so
// precedent search can find them.
func (s *AdjudicationService) SetEmbeddingClient(ec domain.EmbeddingClient) {
	s.embeddingClient = ec
}

func (s *AdjudicationService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Adjudicate runs one deterministic pass over the claim. Identical
// claims under an identical contract produce identical verdicts, so the
// pass never consults wall-clock state beyond the deadline.
func (s *AdjudicationService) Adjudicate(ctx context.Context, claim domain.Claim) (*domain.Verdict, error) {
	if claim.Text == "" {
		return nil, ErrClaimTextEmpty
	}
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res := s.orchestrator.Run(runCtx, claim, s.modules)
	advisory := engine.Advise(res.Judgments, len(s.contract.Order))

	var out engine.Outcome
	if res.TimedOut {
		out = engine.Outcome{
			Status:   domain.StatusSuspend,
			Rule:     "timeout-suspend",
			Advisory: advisory,
		}
		s.logger.Warn("adjudication pass timed out",
			zap.String("claim_id", claim.ID.String()),
			zap.Strings("absent", res.Absent))
	} else {
		out = engine.Decide(s.contract, engine.Input{
			Judgments: res.Judgments,
			Aggregate: s.synthesizer.AggregateConfidence(res.Judgments),
			Advisory:  advisory,
		})
	}

	verdict := s.synthesizer.Synthesize(claim, res, out)

	s.logger.Info("claim adjudicated",
		zap.String("claim_id", claim.ID.String()),
		zap.String("status", string(verdict.Status)),
		zap.String("rule", verdict.Rule),
		zap.Float64("aggregate_confidence", verdict.AggregateConfidence))

	// Archive after deciding (non-blocking; the verdict stands even if
	// the archive write fails).
	s.archive(ctx, claim, verdict)

	return verdict, nil
}

func (s *AdjudicationService) archive(ctx context.Context, claim domain.Claim, verdict *domain.Verdict) {
	if s.verdictStore == nil {
		return
	}

	record := &domain.VerdictRecord{Verdict: *verdict}
	if s.embeddingClient != nil {
		emb, err := s.embeddingClient.Embed(ctx, claim.Text)
		if err != nil {
			s.logger.Warn("claim embedding failed, archiving without vector",
				zap.String("claim_id", claim.ID.String()),
				zap.Error(err))
		} else {
			record.Embedding = emb
			record.EmbeddingProvider = s.embeddingClient.Provider()
			record.EmbeddingModel = s.embeddingClient.Model()
		}
	}

	if err := s.verdictStore.Create(ctx, record); err != nil {
		s.logger.Warn("verdict archive failed",
			zap.String("claim_id", claim.ID.String()),
			zap.Error(err))
	}
}
