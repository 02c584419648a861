// Package index maintains candidate records and their vectors: upsert with
// automatic vectorization, the self-healing backfill pass, and tenant-wide
// deletion.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentgrid/matchd/internal/domain"
	"github.com/talentgrid/matchd/internal/logger"
	"github.com/talentgrid/matchd/internal/metrics"
)

// Service handles candidate ingestion and vector maintenance.
type Service struct {
	repo       Repository
	embed      Embedder
	dimensions int
}

// New creates an index service for vectors of the given dimension.
func New(repo Repository, embed Embedder, dimensions int) *Service {
	return &Service{repo: repo, embed: embed, dimensions: dimensions}
}

// Upsert stores a candidate with a freshly generated vector. A missing ID
// gets a generated one. Returns the stored record and whether it was created.
func (s *Service) Upsert(ctx context.Context, cand domain.CandidateRecord) (domain.CandidateRecord, bool, error) {
	if strings.TrimSpace(cand.TenantID) == "" {
		return domain.CandidateRecord{}, false, domain.ErrTenantRequired
	}
	if strings.TrimSpace(cand.Name) == "" {
		return domain.CandidateRecord{}, false, fmt.Errorf("%w: candidate name is required", domain.ErrInvalidCandidate)
	}
	if cand.ID == "" {
		cand.ID = uuid.NewString()
	}

	result, err := s.embed.Embed(ctx, cand.EmbeddingText())
	if err != nil {
		return domain.CandidateRecord{}, false, fmt.Errorf("vectorize candidate: %w", err)
	}
	if len(result.Embedding) != s.dimensions {
		return domain.CandidateRecord{}, false, fmt.Errorf(
			"got %d dimensions, want %d: %w",
			len(result.Embedding), s.dimensions, domain.ErrDimensionMismatch,
		)
	}
	cand.Vector = result.Embedding

	created, err := s.repo.Upsert(ctx, &cand)
	if err != nil {
		return domain.CandidateRecord{}, false, fmt.Errorf("upsert candidate: %w", err)
	}
	return cand, created, nil
}

// Backfill regenerates vectors for every candidate of the tenant whose
// vector is missing or has a stale dimension. Idempotent: a second run over
// a fully indexed tenant updates nothing. Safe to run concurrently with
// searches; a search may observe a candidate transition from unindexed to
// indexed, which is acceptable eventual consistency.
func (s *Service) Backfill(ctx context.Context, tenantID string) (int, error) {
	if strings.TrimSpace(tenantID) == "" {
		return 0, domain.ErrTenantRequired
	}

	cands, err := s.repo.FetchByTenant(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("fetch candidates: %w", err)
	}

	log := logger.FromContext(ctx)
	updated := 0
	for i := range cands {
		if err := ctx.Err(); err != nil {
			return updated, fmt.Errorf("backfill interrupted: %w", err)
		}

		cand := &cands[i]
		if cand.Indexed(s.dimensions) {
			continue
		}

		result, err := s.embed.Embed(ctx, cand.EmbeddingText())
		if err != nil {
			log.Warn("Backfill embedding failed, skipping candidate",
				zap.String("candidate_id", cand.ID), zap.Error(err))
			continue
		}
		if len(result.Embedding) != s.dimensions {
			log.Warn("Backfill produced wrong-dimension vector, skipping candidate",
				zap.String("candidate_id", cand.ID),
				zap.Int("got", len(result.Embedding)), zap.Int("want", s.dimensions))
			continue
		}

		// Single-row write; no cross-row transaction is needed.
		if err := s.repo.UpdateVector(ctx, tenantID, cand.ID, result.Embedding); err != nil {
			log.Warn("Backfill vector update failed, skipping candidate",
				zap.String("candidate_id", cand.ID), zap.Error(err))
			continue
		}

		metrics.BackfillUpdatedTotal.Inc()
		updated++
	}

	return updated, nil
}

// Clear deletes all of a tenant's candidates, returning the count removed.
func (s *Service) Clear(ctx context.Context, tenantID string) (int, error) {
	if strings.TrimSpace(tenantID) == "" {
		return 0, domain.ErrTenantRequired
	}

	count, err := s.repo.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("clear tenant %s: %w", tenantID, err)
	}
	return count, nil
}
