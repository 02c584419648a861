package index

import (
	"context"

	"github.com/talentgrid/matchd/internal/domain"
)

// Repository defines the storage contract for index maintenance.
type Repository interface {
	FetchByTenant(ctx context.Context, tenantID string) ([]domain.CandidateRecord, error)
	UpdateVector(ctx context.Context, tenantID, candidateID string, vector []float32) error
	Upsert(ctx context.Context, cand *domain.CandidateRecord) (bool, error)
	DeleteByTenant(ctx context.Context, tenantID string) (int, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
