package domain

const (
	// MaxMatches bounds every search result. Fixed, not caller-configurable.
	MaxMatches = 5
	// MinScore is the minimum unclamped score a candidate must exceed to be
	// surfaced at all. Candidates at or below it are never returned, even as
	// low-ranked results.
	MinScore = 0.3
)

// Canned analysis strings for degraded and empty outcomes.
const (
	AnalysisNoCandidates   = "No resumes found in your database."
	AnalysisNoMatches      = "No matching resumes found for your search criteria."
	AnalysisNarratorFailed = "Error generating analysis. Please try again."
	AnalysisSearchDegraded = "Error performing search. Please try again."
)

// MatchResult is one ranked candidate in a search response.
// SimilarityScore is always clamped to [0,1].
type MatchResult struct {
	Candidate       CandidateRecord
	SimilarityScore float64
}

// SearchResponse is the full result of one search call: a bounded ranked
// match list plus a human-readable analysis.
type SearchResponse struct {
	Matches  []MatchResult
	Analysis string
}
