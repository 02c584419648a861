package ranking

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/talentgrid/matchd/internal/domain"
	"github.com/talentgrid/matchd/internal/domain/vector"
	"github.com/talentgrid/matchd/internal/logger"
)

// Scoring constants. The relative scales are deliberate: the location boost
// is large compared to the 0-1 cosine base, and the multiplicative penalties
// compound so a candidate failing several soft constraints is suppressed
// super-linearly.
const (
	keywordBonus = 0.1

	locationBoostThreshold   = 0.7
	locationPenaltyThreshold = 0.3
	locationBoostScale       = 10.0
	locationPenaltyFactor    = 0.7
	missingLocationAffinity  = 0.3
	neutralLocationAffinity  = 0.5

	unparseableExperiencePenalty = 0.4
	experiencePenaltyBase        = 0.4
	experiencePenaltyFloor       = 0.05
)

// queryContext carries the precomputed per-request inputs for scoring:
// keywords and vectors are derived once, then shared read-only across the
// parallel per-candidate evaluations.
type queryContext struct {
	keywords    []string
	vector      []float32
	location    string
	locationVec []float32
	minYears    *float64
}

// Policy produces one unclamped desirability score per (query, candidate)
// pair. The caller owns threshold filtering and final clamping.
type Policy struct {
	embed      Embedder
	dimensions int
}

// NewPolicy creates a scoring policy for vectors of the given dimension.
func NewPolicy(embed Embedder, dimensions int) *Policy {
	return &Policy{embed: embed, dimensions: dimensions}
}

// Score evaluates one candidate against the query. The second return value
// is false when the candidate is not indexed (missing or wrong-dimension
// vector); such candidates are excluded from the result set entirely rather
// than scored at zero.
func (p *Policy) Score(ctx context.Context, q *queryContext, cand *domain.CandidateRecord) (float64, bool) {
	if !cand.Indexed(p.dimensions) {
		return 0, false
	}

	base, err := vector.CosineSimilarity(q.vector, cand.Vector)
	if err != nil {
		return 0, false
	}
	score := base

	// Lexical overlap is a hard floor: no keyword match means the candidate
	// is irrelevant no matter how close the vectors are.
	matches := keywordMatches(q.keywords, cand)
	if matches == 0 {
		return 0, true
	}
	score += keywordBonus * float64(matches)

	if q.location != "" {
		affinity := p.locationAffinity(ctx, q, cand)
		switch {
		case affinity > locationBoostThreshold:
			score += affinity * locationBoostScale
		case affinity < locationPenaltyThreshold:
			score *= locationPenaltyFactor
		}
	}

	if q.minYears != nil {
		years, parsed := cand.ExperienceYears()
		switch {
		case !parsed:
			score *= unparseableExperiencePenalty
		case years < *q.minYears:
			shortfall := *q.minYears - years
			score *= math.Max(experiencePenaltyFloor, math.Pow(experiencePenaltyBase, shortfall))
		}
	}

	return score, true
}

// keywordMatches counts query keywords appearing as substrings of the
// candidate's joined skills or summary. Each keyword counts at most once.
func keywordMatches(keywords []string, cand *domain.CandidateRecord) int {
	skillsText := strings.ToLower(strings.Join(cand.Skills, " "))
	summaryText := strings.ToLower(cand.Summary)

	count := 0
	for _, kw := range keywords {
		if strings.Contains(skillsText, kw) || strings.Contains(summaryText, kw) {
			count++
		}
	}
	return count
}

// locationAffinity computes the clamped cosine similarity between the query
// and candidate locations. A candidate without a location gets a weak
// stand-in affinity; an embedding failure falls back to a neutral one so a
// flaky provider degrades a single candidate's adjustment, never the search.
func (p *Policy) locationAffinity(ctx context.Context, q *queryContext, cand *domain.CandidateRecord) float64 {
	if cand.Location == "" {
		return missingLocationAffinity
	}
	if q.locationVec == nil {
		return neutralLocationAffinity
	}

	result, err := p.embed.Embed(ctx, cand.Location)
	if err != nil {
		logger.FromContext(ctx).Warn("Candidate location embedding failed",
			zap.String("candidate_id", cand.ID), zap.Error(err))
		return neutralLocationAffinity
	}

	affinity, err := vector.CosineSimilarity(q.locationVec, result.Embedding)
	if err != nil {
		return neutralLocationAffinity
	}
	return vector.Clamp01(affinity)
}
