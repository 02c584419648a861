package domain

import "context"

// CandidateStore is the persistence contract consumed by the ranking and
// index services. Implementations must wrap infrastructure failures with
// ErrStoreUnavailable; the engine never owns transactions or schema.
type CandidateStore interface {
	// FetchByTenant returns every candidate owned by the tenant, indexed or
	// not. Ranking never crosses tenant boundaries.
	FetchByTenant(ctx context.Context, tenantID string) ([]CandidateRecord, error)
	// UpdateVector persists a regenerated vector for a single candidate.
	UpdateVector(ctx context.Context, tenantID, candidateID string, vector []float32) error
	// Upsert creates or replaces a candidate record. Returns true if created.
	Upsert(ctx context.Context, cand *CandidateRecord) (bool, error)
	// DeleteByTenant removes all of a tenant's candidates, returning the count.
	DeleteByTenant(ctx context.Context, tenantID string) (int, error)
}
