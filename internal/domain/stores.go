package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VerdictRecord is a Verdict as archived, with the claim embedding used
// for precedent recall.
type VerdictRecord struct {
	Verdict
	Embedding         []float32 `json:"-"`
	EmbeddingProvider string    `json:"embedding_provider,omitempty"`
	EmbeddingModel    string    `json:"embedding_model,omitempty"`
}

type VerdictWithScore struct {
	VerdictRecord
	Score float32 `json:"score"`
}

type VerdictStore interface {
	Create(ctx context.Context, v *VerdictRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*VerdictRecord, error)
	List(ctx context.Context, limit int) ([]VerdictRecord, error)
	SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]VerdictWithScore, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Provider() string
	Model() string
}
