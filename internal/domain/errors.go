package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTenantRequired signals a missing tenant identifier.
	ErrTenantRequired = errors.New("tenant id is required")
	// ErrDimensionMismatch signals a vector length inconsistency.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrStoreUnavailable signals a candidate store failure.
	ErrStoreUnavailable = errors.New("candidate store unavailable")
	// ErrCandidateNotFound signals a missing candidate record.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrInvalidCandidate signals a malformed candidate record on ingestion.
	ErrInvalidCandidate = errors.New("invalid candidate")
)
