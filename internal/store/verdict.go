package store

import (
	"context"
	"errors"
	"time"

	"github.com/adjudex/tribunal/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

var ErrNotFound = errors.New("not found")

type VerdictStore struct {
	db *pgxpool.Pool
}

func NewVerdictStore(db *pgxpool.Pool) *VerdictStore {
	return &VerdictStore{db: db}
}

func (s *VerdictStore) Create(ctx context.Context, v *domain.VerdictRecord) error {
	var embedding *pgvector.Vector
	if len(v.Embedding) > 0 {
		vec := pgvector.NewVector(v.Embedding)
		embedding = &vec
	}

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO verdicts (id, claim_id, claim, status, rule, aggregate_confidence, judgments, absent, failures, reinterpretations, advisory, embedding, embedding_provider, embedding_model, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, COALESCE($15, NOW()))
		 RETURNING created_at`,
		v.ID, v.ClaimID, v.Claim, v.Status, v.Rule, v.AggregateConfidence,
		v.Judgments, v.Absent, v.Failures, v.Reinterpretations, v.Advisory,
		embedding, v.EmbeddingProvider, v.EmbeddingModel, nullableTime(v.CreatedAt),
	).Scan(&v.CreatedAt)
}

func (s *VerdictStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerdictRecord, error) {
	v := &domain.VerdictRecord{}
	err := s.db.QueryRow(ctx,
		`SELECT id, claim_id, claim, status, rule, aggregate_confidence, judgments, absent, failures, reinterpretations, advisory, embedding_provider, embedding_model, created_at
		 FROM verdicts WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.ClaimID, &v.Claim, &v.Status, &v.Rule, &v.AggregateConfidence,
		&v.Judgments, &v.Absent, &v.Failures, &v.Reinterpretations, &v.Advisory,
		&v.EmbeddingProvider, &v.EmbeddingModel, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *VerdictStore) List(ctx context.Context, limit int) ([]domain.VerdictRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, claim_id, claim, status, rule, aggregate_confidence, judgments, absent, failures, reinterpretations, advisory, embedding_provider, embedding_model, created_at
		 FROM verdicts
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verdicts []domain.VerdictRecord
	for rows.Next() {
		var v domain.VerdictRecord
		if err := rows.Scan(&v.ID, &v.ClaimID, &v.Claim, &v.Status, &v.Rule, &v.AggregateConfidence,
			&v.Judgments, &v.Absent, &v.Failures, &v.Reinterpretations, &v.Advisory,
			&v.EmbeddingProvider, &v.EmbeddingModel, &v.CreatedAt); err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

func (s *VerdictStore) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]domain.VerdictWithScore, error) {
	if topK <= 0 {
		topK = 10
	}

	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT id, claim_id, claim, status, rule, aggregate_confidence, judgments, absent, failures, reinterpretations, advisory, embedding_provider, embedding_model, created_at,
		        1 - (embedding <=> $1) AS score
		 FROM verdicts
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, topK,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.VerdictWithScore
	for rows.Next() {
		var vs domain.VerdictWithScore
		if err := rows.Scan(&vs.ID, &vs.ClaimID, &vs.Claim, &vs.Status, &vs.Rule, &vs.AggregateConfidence,
			&vs.Judgments, &vs.Absent, &vs.Failures, &vs.Reinterpretations, &vs.Advisory,
			&vs.EmbeddingProvider, &vs.EmbeddingModel, &vs.CreatedAt,
			&vs.Score); err != nil {
			return nil, err
		}
		results = append(results, vs)
	}
	return results, rows.Err()
}

func (s *VerdictStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM verdicts WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ domain.VerdictStore = (*VerdictStore)(nil)
