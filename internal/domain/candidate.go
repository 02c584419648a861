package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyPrefix namespaces all matchd keys in the shared store.
const KeyPrefix = "matchd:"

// CandidateRecord is a single candidate as stored by the ingestion pipeline.
// The ranking engine treats records as read-only; only the backfill pass
// writes vectors back through the store.
type CandidateRecord struct {
	ID         string
	TenantID   string
	Name       string
	Skills     []string
	Experience string
	Education  string
	Location   string
	Summary    string
	Vector     []float32
}

// Indexed reports whether the candidate carries a vector of the configured
// dimension. Records that fail this check are invisible to search until the
// backfill pass regenerates their vector.
func (c *CandidateRecord) Indexed(dim int) bool {
	return dim > 0 && len(c.Vector) == dim
}

// ExperienceYears parses the leading numeric token of the free-form
// experience description ("3 years in backend" -> 3). The second return
// value is false when no leading number is present.
func (c *CandidateRecord) ExperienceYears() (float64, bool) {
	fields := strings.Fields(c.Experience)
	if len(fields) == 0 {
		return 0, false
	}
	years, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || years < 0 {
		return 0, false
	}
	return years, true
}

// EmbeddingText builds the canonical text block a candidate is vectorized
// from. Upsert and backfill must agree on this format so re-embedding is
// stable.
func (c *CandidateRecord) EmbeddingText() string {
	return fmt.Sprintf(
		"Name: %s\nSummary: %s\nSkills: %s\nExperience: %s\nEducation: %s\nLocation: %s",
		c.Name, c.Summary, strings.Join(c.Skills, ", "), c.Experience, c.Education, c.Location,
	)
}
