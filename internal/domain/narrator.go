package domain

import "context"

// Narrator produces a human-readable analysis of the top matches.
// Always best-effort: a narrator failure degrades the analysis text only
// and must never suppress valid matches.
type Narrator interface {
	Summarize(ctx context.Context, query string, matches []MatchResult) (string, error)
}
