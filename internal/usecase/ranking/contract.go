package ranking

import (
	"context"

	"github.com/talentgrid/matchd/internal/domain"
)

// Repository defines the storage contract for ranking. Read-only: the
// engine never mutates candidate records.
type Repository interface {
	FetchByTenant(ctx context.Context, tenantID string) ([]domain.CandidateRecord, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Narrator produces analysis text for the top matches. Best-effort.
type Narrator interface {
	Summarize(ctx context.Context, query string, matches []domain.MatchResult) (string, error)
}
