package service

import (
	"context"
	"errors"

	"github.com/adjudex/tribunal/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrPrecedentQueryEmpty = errors.New("query is required")
)

const DefaultPrecedentTopK = 10

// PrecedentService finds archived verdicts whose claims are semantically
// close to a query claim. Precedents are explanatory material for
// callers; they never feed back into adjudication.
type PrecedentService struct {
	verdictStore    domain.VerdictStore
	embeddingClient domain.EmbeddingClient
	logger          *zap.Logger
}

func NewPrecedentService(vs domain.VerdictStore, ec domain.EmbeddingClient, logger *zap.Logger) *PrecedentService {
	return &PrecedentService{
		verdictStore:    vs,
		embeddingClient: ec,
		logger:          logger,
	}
}

func (s *PrecedentService) Search(ctx context.Context, query string, topK int) ([]domain.VerdictWithScore, error) {
	if query == "" {
		return nil, ErrPrecedentQueryEmpty
	}
	if s.embeddingClient == nil {
		return nil, errors.New("embedding client not configured")
	}
	if topK <= 0 {
		topK = DefaultPrecedentTopK
	}

	emb, err := s.embeddingClient.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.verdictStore.SearchSimilar(ctx, emb, topK)
}
