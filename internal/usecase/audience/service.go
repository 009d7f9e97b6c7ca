// Package audience runs the recommendation pipeline: refine, parse,
// filter, aggregate and rank.
package audience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
	"github.com/kailas-cloud/audience/internal/domain/criteria"
	"github.com/kailas-cloud/audience/internal/domain/profile"
	"github.com/kailas-cloud/audience/internal/domain/ranking"
	"github.com/kailas-cloud/audience/internal/logger"
	"github.com/kailas-cloud/audience/internal/metrics"
	"github.com/kailas-cloud/audience/internal/usecase/aggregate"
	"github.com/kailas-cloud/audience/internal/usecase/filter"
	"github.com/kailas-cloud/audience/internal/usecase/refine"
)

// Request is one recommendation run.
type Request struct {
	Query    string
	TopK     int
	Location string
	// Refine asks the refiner for a rewritten query; Option picks among its
	// suggestions (0-based, out of range means the first).
	Refine bool
	Option int
}

// Report is the outcome of a recommendation run.
type Report struct {
	RunID         string
	Query         string // query used for parsing and ranking
	Refined       bool
	NeedsLocation bool
	Criteria      criteria.Criteria
	Filtered      int
	Embedded      int
	Resolution    aggregate.Stats
	Results       []ranking.Result
}

// Service holds the profile pool and the pipeline stages. The pool is
// read-only and each profile's embedding is built once, on the first run
// that reaches it; Recommend may be called concurrently.
type Service struct {
	pool    []profile.Profile
	cities  []string
	parser  QueryParser
	vectors *aggregate.Cache
	ranker  Ranker
	refiner Refiner
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a Service over a profile pool.
func New(
	pool []profile.Profile, parser QueryParser, resolver GroupResolver,
	ranker Ranker, logger *zap.Logger,
) *Service {
	return &Service{
		pool:    pool,
		cities:  filter.Cities(pool),
		parser:  parser,
		vectors: aggregate.NewCache(resolver, recordResolutions),
		ranker:  ranker,
		logger:  logger,
		now:     time.Now,
	}
}

// WithRefiner enables query refinement.
func (s *Service) WithRefiner(r Refiner) *Service {
	s.refiner = r
	return s
}

// WithClock overrides the instant ages are computed at.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PoolSize returns the number of profiles in the pool.
func (s *Service) PoolSize() int { return len(s.pool) }

// Criteria extracts criteria from query without running the pipeline.
func (s *Service) Criteria(query string) (criteria.Criteria, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return criteria.Criteria{}, domain.ErrEmptyQuery
	}
	return s.parser.Parse(query, s.cities), nil
}

// Recommend runs the pipeline and returns the top ranked profiles.
// An empty candidate set after filtering and aggregation is reported as
// domain.ErrNoValidProfiles, never as an empty result.
func (s *Service) Recommend(ctx context.Context, req Request) (*Report, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if req.TopK <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	rep := &Report{
		RunID:         uuid.NewString(),
		NeedsLocation: refine.NeedsLocation(query),
	}
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("run_id", rep.RunID))

	located := refine.WithLocation(query, req.Location)
	if req.Refine && s.refiner != nil {
		start := time.Now()
		refined, err := s.refiner.Refine(ctx, query, req.Location, req.Option)
		observeStage("refine", start)
		if err != nil {
			log.Warn("Query refinement failed, using raw query", zap.String("query", located), zap.Error(err))
			query = located
		} else {
			query, rep.Refined = refined, true
		}
	} else {
		query = located
	}
	rep.Query = query

	start := time.Now()
	rep.Criteria = s.parser.Parse(query, s.cities)
	observeStage("parse", start)

	start = time.Now()
	members := filter.Apply(rep.Criteria, s.pool, s.now())
	observeStage("filter", start)
	rep.Filtered = len(members)
	metrics.PipelineCandidates.WithLabelValues("filter").Observe(float64(rep.Filtered))

	start = time.Now()
	embeddings, stats := s.vectors.Aggregate(members)
	observeStage("aggregate", start)
	rep.Embedded, rep.Resolution = len(embeddings), stats
	metrics.PipelineCandidates.WithLabelValues("aggregate").Observe(float64(rep.Embedded))

	start = time.Now()
	results, err := s.ranker.Rank(ctx, query, embeddings, req.TopK)
	observeStage("rank", start)

	fields := []zap.Field{
		zap.String("query", query),
		zap.Bool("refined", rep.Refined),
		zap.String("criteria", Describe(rep.Criteria)),
		zap.Int("pool", len(s.pool)),
		zap.Int("filtered", rep.Filtered),
		zap.Int("embedded", rep.Embedded),
		zap.Int("groups", stats.Groups()),
		zap.Int("groups_direct", stats.Direct),
		zap.Int("groups_fallback", stats.Fallback),
		zap.Int("groups_unresolved", stats.Unresolved),
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoValidProfiles) {
			metrics.PipelineRunsTotal.WithLabelValues("no_valid_profiles").Inc()
			log.Warn("No valid profiles to rank", append(fields, zap.Error(err))...)
		} else {
			metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
			log.Error("Recommendation failed", append(fields, zap.Error(err))...)
		}
		return nil, fmt.Errorf("rank: %w", err)
	}

	rep.Results = results
	metrics.PipelineRunsTotal.WithLabelValues("ok").Inc()
	log.Info("Recommendation completed", append(fields, zap.Int("ranked", len(results)))...)
	return rep, nil
}

func observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// recordResolutions counts group outcomes once per profile, when its vector
// is first built.
func recordResolutions(st aggregate.Stats) {
	metrics.GroupResolutionsTotal.WithLabelValues(metrics.OutcomeDirect).Add(float64(st.Direct))
	metrics.GroupResolutionsTotal.WithLabelValues(metrics.OutcomeFallback).Add(float64(st.Fallback))
	metrics.GroupResolutionsTotal.WithLabelValues(metrics.OutcomeUnresolved).Add(float64(st.Unresolved))
}

// Describe renders criteria as space-separated key=value pairs, or "none".
func Describe(c criteria.Criteria) string {
	var parts []string
	if v, ok := c.MinAge(); ok {
		parts = append(parts, fmt.Sprintf("min_age=%d", v))
	}
	if v, ok := c.MaxAge(); ok {
		parts = append(parts, fmt.Sprintf("max_age=%d", v))
	}
	if v, ok := c.Gender(); ok {
		parts = append(parts, "gender="+v.String())
	}
	if v, ok := c.City(); ok {
		parts = append(parts, "city="+v)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
