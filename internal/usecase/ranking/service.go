// Package ranking implements the tenant-scoped search engine: a linear scan
// over the tenant's candidates scored by the policy, threshold-filtered,
// sorted, and truncated to a fixed bound.
package ranking

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentgrid/matchd/internal/domain"
	"github.com/talentgrid/matchd/internal/domain/vector"
	"github.com/talentgrid/matchd/internal/logger"
	"github.com/talentgrid/matchd/internal/metrics"
)

// Service is the ranking engine. Each Search call is independent and
// stateless; the only shared resources are the read-only repository and the
// embedder.
type Service struct {
	repo            Repository
	embed           Embedder
	narrator        Narrator // nil disables analysis generation
	policy          *Policy
	workers         int
	narratorTimeout time.Duration
}

// New creates a ranking engine for vectors of the given dimension.
func New(repo Repository, embed Embedder, narrator Narrator, dimensions int) *Service {
	return &Service{
		repo:            repo,
		embed:           embed,
		narrator:        narrator,
		policy:          NewPolicy(embed, dimensions),
		workers:         runtime.GOMAXPROCS(0),
		narratorTimeout: 30 * time.Second,
	}
}

// WithWorkers bounds the per-candidate scoring parallelism.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithNarratorTimeout sets the independent deadline for analysis generation.
func (s *Service) WithNarratorTimeout(d time.Duration) *Service {
	if d > 0 {
		s.narratorTimeout = d
	}
	return s
}

// scoredCandidate pairs a candidate with its unclamped score for one pass.
type scoredCandidate struct {
	candidate *domain.CandidateRecord
	score     float64
	ok        bool
}

// Search runs one tenant-scoped query end to end.
//
// An embedding provider outage degrades the response (empty matches plus an
// explanatory analysis, nil error); a store failure is fatal to the call.
func (s *Service) Search(ctx context.Context, q domain.Query) (domain.SearchResponse, error) {
	start := time.Now()
	defer func() { metrics.SearchDuration.Observe(time.Since(start).Seconds()) }()

	if err := q.Validate(); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return domain.SearchResponse{}, err
	}

	cands, err := s.repo.FetchByTenant(ctx, q.TenantID)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return domain.SearchResponse{}, fmt.Errorf("fetch candidates: %w", err)
	}
	if len(cands) == 0 {
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
		return domain.SearchResponse{
			Matches:  []domain.MatchResult{},
			Analysis: domain.AnalysisNoCandidates,
		}, nil
	}

	qctx, err := s.buildQueryContext(ctx, &q)
	if err != nil {
		logger.FromContext(ctx).Error("Query embedding failed, degrading search",
			zap.String("tenant_id", q.TenantID), zap.Error(err))
		metrics.SearchRequestsTotal.WithLabelValues("degraded").Inc()
		return domain.SearchResponse{
			Matches:  []domain.MatchResult{},
			Analysis: domain.AnalysisSearchDegraded,
		}, nil
	}

	scored, err := s.scoreAll(ctx, qctx, cands)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return domain.SearchResponse{}, err
	}

	matches := rankAndTruncate(scored)
	if len(matches) == 0 {
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
		return domain.SearchResponse{
			Matches:  []domain.MatchResult{},
			Analysis: domain.AnalysisNoMatches,
		}, nil
	}

	analysis := s.narrate(ctx, q.Text, matches)

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	return domain.SearchResponse{Matches: matches, Analysis: analysis}, nil
}

// buildQueryContext embeds the query text (and location, if any) once per
// request. A location embedding failure leaves locationVec nil; the policy
// then falls back to a neutral affinity per candidate.
func (s *Service) buildQueryContext(ctx context.Context, q *domain.Query) (*queryContext, error) {
	result, err := s.embed.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	qctx := &queryContext{
		keywords: q.Keywords(),
		vector:   result.Embedding,
		location: q.Location,
		minYears: q.MinExperienceYears,
	}

	if q.Location != "" {
		locResult, err := s.embed.Embed(ctx, q.Location)
		if err != nil {
			logger.FromContext(ctx).Warn("Query location embedding failed",
				zap.String("location", q.Location), zap.Error(err))
		} else {
			qctx.locationVec = locResult.Embedding
		}
	}

	return qctx, nil
}

// scoreAll evaluates every candidate with bounded parallelism. Scoring is
// pure per candidate; each goroutine writes its own slot, so no locking is
// needed. Only context cancellation aborts the pass.
func (s *Service) scoreAll(
	ctx context.Context, qctx *queryContext, cands []domain.CandidateRecord,
) ([]scoredCandidate, error) {
	scored := make([]scoredCandidate, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, ok := s.policy.Score(gctx, qctx, &cands[i])
			scored[i] = scoredCandidate{candidate: &cands[i], score: score, ok: ok}
			metrics.CandidatesScoredTotal.Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	return scored, nil
}

// rankAndTruncate keeps candidates above the relevance threshold, sorts by
// score descending with candidate ID ascending as the tie-break, truncates
// to the fixed bound, and clamps exposed scores into [0,1].
func rankAndTruncate(scored []scoredCandidate) []domain.MatchResult {
	kept := make([]scoredCandidate, 0, len(scored))
	for _, sc := range scored {
		if sc.ok && sc.score > domain.MinScore {
			kept = append(kept, sc)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].candidate.ID < kept[j].candidate.ID
	})

	if len(kept) > domain.MaxMatches {
		kept = kept[:domain.MaxMatches]
	}

	matches := make([]domain.MatchResult, len(kept))
	for i, sc := range kept {
		matches[i] = domain.MatchResult{
			Candidate:       *sc.candidate,
			SimilarityScore: vector.Clamp01(sc.score),
		}
	}
	return matches
}

// narrate asks the narrator for analysis text under its own deadline. Any
// failure degrades the analysis only; the computed matches always survive.
func (s *Service) narrate(ctx context.Context, queryText string, matches []domain.MatchResult) string {
	if s.narrator == nil {
		return fmt.Sprintf("Found %d matching resumes.", len(matches))
	}

	nctx, cancel := context.WithTimeout(ctx, s.narratorTimeout)
	defer cancel()

	analysis, err := s.narrator.Summarize(nctx, queryText, matches)
	if err != nil {
		logger.FromContext(ctx).Warn("Narrator failed, using fallback analysis", zap.Error(err))
		metrics.NarratorRequestsTotal.WithLabelValues("error").Inc()
		return domain.AnalysisNarratorFailed
	}

	metrics.NarratorRequestsTotal.WithLabelValues("success").Inc()
	return analysis
}
