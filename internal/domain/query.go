package domain

import (
	"fmt"
	"strings"
)

// Query is one tenant-scoped search request. Constructed per request,
// immutable afterwards.
type Query struct {
	TenantID           string
	Text               string
	Location           string
	MinExperienceYears *float64
}

// Validate checks the query for required fields.
func (q *Query) Validate() error {
	if strings.TrimSpace(q.TenantID) == "" {
		return ErrTenantRequired
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: query text must not be empty", ErrInvalidQuery)
	}
	if q.MinExperienceYears != nil && *q.MinExperienceYears < 0 {
		return fmt.Errorf("%w: experience_years must not be negative", ErrInvalidQuery)
	}
	return nil
}

// Keywords tokenizes the query text into lowercase whitespace-delimited
// keywords. No stemming, no stop-word removal.
func (q *Query) Keywords() []string {
	return strings.Fields(strings.ToLower(q.Text))
}
