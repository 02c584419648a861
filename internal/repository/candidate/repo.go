// Package candidate persists tenant-scoped candidate records as JSON values
// in the key-value store.
package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentgrid/matchd/internal/db"
	"github.com/talentgrid/matchd/internal/domain"
	"github.com/talentgrid/matchd/internal/logger"
)

var keyPrefix = domain.KeyPrefix + "cand:"

// store is the consumer interface for candidate persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) (int, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Compile-time check: Repo implements domain.CandidateStore.
var _ domain.CandidateStore = (*Repo)(nil)

// Repo implements domain.CandidateStore.
type Repo struct {
	store store
}

// New creates a candidate repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// FetchByTenant returns all candidates for a tenant. Records that fail to
// decode are logged and skipped, never aborting the whole fetch.
func (r *Repo) FetchByTenant(ctx context.Context, tenantID string) ([]domain.CandidateRecord, error) {
	keys, err := r.store.Scan(ctx, tenantPattern(tenantID))
	if err != nil {
		return nil, fmt.Errorf("scan candidates for tenant %s: %w: %w", tenantID, domain.ErrStoreUnavailable, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for tenant %s: %w: %w", tenantID, domain.ErrStoreUnavailable, err)
	}

	log := logger.FromContext(ctx)
	out := make([]domain.CandidateRecord, 0, len(values))
	for i, raw := range values {
		if raw == nil {
			continue // key expired between SCAN and MGET
		}
		var dto candidateDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			log.Warn("Skipping undecodable candidate record",
				zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out = append(out, fromDTO(dto))
	}
	return out, nil
}

// UpdateVector persists a regenerated vector for a single candidate.
// Scoped to one record; no cross-row transaction is needed.
func (r *Repo) UpdateVector(ctx context.Context, tenantID, candidateID string, vector []float32) error {
	key := candKey(tenantID, candidateID)

	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("candidate %s: %w", candidateID, domain.ErrCandidateNotFound)
		}
		return fmt.Errorf("get candidate %s: %w: %w", candidateID, domain.ErrStoreUnavailable, err)
	}

	var dto candidateDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return fmt.Errorf("decode candidate %s: %w", candidateID, err)
	}

	dto.Vector = vector
	data, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("encode candidate %s: %w", candidateID, err)
	}

	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("update vector for %s: %w: %w", candidateID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Upsert creates or replaces a candidate record. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, cand *domain.CandidateRecord) (bool, error) {
	key := candKey(cand.TenantID, cand.ID)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check candidate %s: %w: %w", cand.ID, domain.ErrStoreUnavailable, err)
	}

	data, err := json.Marshal(toDTO(cand))
	if err != nil {
		return false, fmt.Errorf("encode candidate %s: %w", cand.ID, err)
	}

	if err := r.store.Set(ctx, key, data); err != nil {
		return false, fmt.Errorf("store candidate %s: %w: %w", cand.ID, domain.ErrStoreUnavailable, err)
	}
	return !exists, nil
}

// DeleteByTenant removes all of a tenant's candidates.
func (r *Repo) DeleteByTenant(ctx context.Context, tenantID string) (int, error) {
	keys, err := r.store.Scan(ctx, tenantPattern(tenantID))
	if err != nil {
		return 0, fmt.Errorf("scan candidates for tenant %s: %w: %w", tenantID, domain.ErrStoreUnavailable, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	count, err := r.store.Del(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("delete candidates for tenant %s: %w: %w", tenantID, domain.ErrStoreUnavailable, err)
	}
	return count, nil
}

func candKey(tenantID, id string) string {
	return keyPrefix + tenantID + ":" + id
}

func tenantPattern(tenantID string) string {
	return keyPrefix + tenantID + ":*"
}
