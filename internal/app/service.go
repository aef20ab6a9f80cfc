// Package service runs the dream team pipeline: source candidates, enrich
// them with their strengths, assemble a team and report progress to a sink.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dreamteam/internal/adapters/mq/queue"
	"github.com/okian/dreamteam/internal/adapters/mq/worker"
	"github.com/okian/dreamteam/internal/domain/assembly"
	"github.com/okian/dreamteam/internal/domain/dedupe"
	"github.com/okian/dreamteam/internal/domain/model"
	"github.com/okian/dreamteam/internal/domain/types"
	"github.com/okian/dreamteam/pkg/logger"
	"github.com/okian/dreamteam/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultEnrichConcurrency = 16
	defaultTeamSize          = 3
	defaultMaxTeamSize       = 10
)

// Status texts sent to the consumer.
const (
	msgSearching    = "Searching for up to %d candidates..."
	msgNoCandidates = "No candidates were found with these skills. Please try a different search."
	msgEnriching    = "Found %d candidates. Fetching detailed profiles..."
	msgAssembling   = "Analyzing profiles and selecting the optimal team of %d..."
)

// Searcher runs the filtered people search.
type Searcher interface {
	Search(ctx context.Context, skills []string) ([]model.RawCandidate, error)
	// Limit is the maximum number of results one search returns.
	Limit() int
}

// GenomeFetcher fetches the detail of one person.
type GenomeFetcher interface {
	Fetch(ctx context.Context, username string) (model.Genome, error)
}

// Fanout runs n indexed tasks with bounded concurrency and waits for them.
type Fanout interface {
	Run(ctx context.Context, n int, task worker.Task) error
}

// Service runs pipelines. Runs share no mutable state, so one Service serves
// any number of concurrent requests.
type Service struct {
	searcher  Searcher
	genomes   GenomeFetcher
	pool      Fanout
	assembler *assembly.Assembler

	enrichConcurrency int
	defaultTeamSize   int
	maxTeamSize       int

	logger logger.Logger

	runsStarted   atomic.Int64
	runsInFlight  atomic.Int64
	teamsBuilt    atomic.Int64
	emptySearches atomic.Int64
	failedRuns    atomic.Int64
	fallbacks     atomic.Int64
}

// New constructs a Service over the search and genome clients.
func New(searcher Searcher, genomes GenomeFetcher, opts ...Option) *Service {
	s := &Service{
		searcher:          searcher,
		genomes:           genomes,
		enrichConcurrency: defaultEnrichConcurrency,
		defaultTeamSize:   defaultTeamSize,
		maxTeamSize:       defaultMaxTeamSize,
		logger:            logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.assembler == nil {
		s.assembler = assembly.New(assembly.WithLogger(s.logger.Named("assembly")))
	}
	if s.pool == nil {
		s.pool = worker.NewPool(s.enrichConcurrency,
			worker.WithName("enrich"),
			worker.WithLogger(s.logger),
			worker.WithInFlight(metrics.AddEnrichInFlight),
		)
	}

	return s
}

// NormalizeSkills trims and lower-cases skills, dropping empty entries and
// repeats while keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	return dedupe.Of(skills, dedupe.WithFold()).Items()
}

// ClampTeamSize replaces an unset size (0) with def and bounds the result
// to [1, maxSize].
func ClampTeamSize(n, def, maxSize int) int {
	if n == 0 {
		n = def
	}
	if n > maxSize {
		n = maxSize
	}
	if n < 1 {
		n = 1
	}
	return n
}

// run holds the bookkeeping of one pipeline invocation.
type run struct {
	state  types.State
	sink   queue.Sink
	logger logger.Logger
}

func (r *run) to(ctx context.Context, next types.State) error {
	if !r.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, next)
	}
	r.logger.Debug(ctx, "pipeline state", logger.String("from", string(r.state)), logger.String("to", string(next)))
	r.state = next
	return nil
}

func (r *run) emit(ctx context.Context, kind types.EventKind, payload any) {
	if err := r.sink.Emit(kind, payload); err != nil {
		r.logger.Debug(ctx, "event dropped", logger.String("kind", string(kind)), logger.Error(err))
	}
}

// Run executes one pipeline and reports it to sink. A teamSize of 0 means
// the default size. Empty skills fail with ErrValidation before anything is
// emitted or fetched. A search failure or cancellation emits a single error
// event and is returned. Otherwise the run ends with exactly one dreamTeam
// event and Run returns nil.
func (s *Service) Run(ctx context.Context, skills []string, teamSize int, sink queue.Sink) error {
	skills = NormalizeSkills(skills)
	if len(skills) == 0 {
		metrics.RecordRun(metrics.OutcomeValidation)
		metrics.RecordErrorByComponent("service", "validation_error")
		return fmt.Errorf("%w: at least one skill is required", ErrValidation)
	}
	teamSize = ClampTeamSize(teamSize, s.defaultTeamSize, s.maxTeamSize)

	id := uuid.NewString()
	r := &run{
		state:  types.StateSourcing,
		sink:   sink,
		logger: s.logger.With(logger.String("run_id", id)),
	}

	start := time.Now()
	s.runsStarted.Add(1)
	s.runsInFlight.Add(1)
	metrics.RunStarted()
	defer func() {
		s.runsInFlight.Add(-1)
		metrics.RunFinished(float64(time.Since(start).Milliseconds()))
	}()

	r.logger.Info(ctx, "pipeline started",
		logger.String("skills", strings.Join(skills, ",")),
		logger.Int("teamSize", teamSize),
	)

	err := s.execute(ctx, r, skills, teamSize)
	if err != nil {
		s.fail(ctx, r, err, start)
		return err
	}

	r.logger.Info(ctx, "pipeline finished",
		logger.String("state", string(r.state)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *Service) execute(ctx context.Context, r *run, skills []string, teamSize int) error {
	r.emit(ctx, types.EventStatus, fmt.Sprintf(msgSearching, s.searcher.Limit()))
	candidates, err := s.source(ctx, r, skills)
	if err != nil {
		return err
	}

	for _, c := range candidates {
		r.emit(ctx, types.EventCandidate, c)
	}

	if len(candidates) == 0 {
		if err := r.to(ctx, types.StateNoCandidates); err != nil {
			return err
		}
		r.emit(ctx, types.EventStatus, msgNoCandidates)
		if err := r.to(ctx, types.StateDone); err != nil {
			return err
		}
		r.emit(ctx, types.EventDreamTeam, model.Team{})
		s.emptySearches.Add(1)
		metrics.RecordRun(metrics.OutcomeNoCandidates)
		return nil
	}

	if err := r.to(ctx, types.StateEnriching); err != nil {
		return err
	}
	r.emit(ctx, types.EventStatus, fmt.Sprintf(msgEnriching, len(candidates)))
	enriched, err := s.enrich(ctx, r, candidates)
	if err != nil {
		return err
	}

	if err := r.to(ctx, types.StateAssembling); err != nil {
		return err
	}
	r.emit(ctx, types.EventStatus, fmt.Sprintf(msgAssembling, teamSize))
	assembleStart := time.Now()
	res := s.assembler.Assemble(ctx, enriched, skills, teamSize)
	metrics.RecordAssembly(float64(time.Since(assembleStart).Microseconds())/1000, len(res.Team), len(res.Uncovered))

	if err := r.to(ctx, types.StateDone); err != nil {
		return err
	}
	r.emit(ctx, types.EventDreamTeam, res.Team)
	s.teamsBuilt.Add(1)
	metrics.RecordRun(metrics.OutcomeTeam)

	r.logger.Info(ctx, "team assembled",
		logger.String("team", strings.Join(res.Team.Usernames(), ",")),
		logger.Any("uncovered", res.Uncovered),
	)
	return nil
}

// source runs the search and drops results without a username or repeating
// one already seen, so identity is unique downstream.
func (s *Service) source(ctx context.Context, r *run, skills []string) ([]model.RawCandidate, error) {
	start := time.Now()
	raw, err := s.searcher.Search(ctx, skills)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordSearch(latency, -1)
		metrics.RecordErrorLatency("search", "source_query", latency)
		return nil, err
	}
	metrics.RecordSearch(latency, len(raw))

	seen := dedupe.New()
	out := make([]model.RawCandidate, 0, len(raw))
	for _, c := range raw {
		if seen.SeenAndRecord(c.Username) {
			r.logger.Debug(ctx, "skipping candidate", logger.String("username", c.Username))
			continue
		}
		out = append(out, c)
	}
	r.logger.Debug(ctx, "search returned",
		logger.Int("results", len(raw)),
		logger.Int("candidates", len(out)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// enrich fetches every candidate's genome through the pool. A failed fetch
// leaves the candidate with no strengths. Output order matches input order.
func (s *Service) enrich(ctx context.Context, r *run, candidates []model.RawCandidate) ([]model.EnrichedCandidate, error) {
	out := make([]model.EnrichedCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = model.EnrichedCandidate{RawCandidate: c, Strengths: []model.StrengthEntry{}}
	}

	var fallbacks atomic.Int64
	err := s.pool.Run(ctx, len(candidates), func(ctx context.Context, i int) error {
		username := candidates[i].Username
		start := time.Now()
		g, err := s.genomes.Fetch(ctx, username)
		latency := float64(time.Since(start).Milliseconds())
		if err != nil {
			fallbacks.Add(1)
			metrics.RecordEnrichment(metrics.EnrichFallback, latency)
			metrics.RecordErrorByComponent("torre", "enrichment_fetch")
			r.logger.Warn(ctx, "enrichment failed, continuing without strengths",
				logger.String("username", username),
				logger.Error(err),
			)
			return nil
		}
		metrics.RecordEnrichment(metrics.EnrichOK, latency)

		strengths := g.Strengths
		if strengths == nil {
			strengths = []model.StrengthEntry{}
		}
		out[i] = model.EnrichedCandidate{
			RawCandidate: candidates[i].Merge(g.Person),
			Strengths:    strengths,
		}
		// identity stays the sourced username
		out[i].Username = username
		return nil
	})

	s.fallbacks.Add(fallbacks.Load())
	r.logger.Debug(ctx, "enrichment finished",
		logger.Int("candidates", len(out)),
		logger.Int("fallbacks", int(fallbacks.Load())),
	)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) fail(ctx context.Context, r *run, err error, start time.Time) {
	s.failedRuns.Add(1)
	outcome := metrics.OutcomeSourceError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome = metrics.OutcomeCancelled
	}
	metrics.RecordRun(outcome)
	metrics.RecordErrorByType(outcome, "high")

	if terr := r.to(ctx, types.StateError); terr != nil {
		r.logger.Error(ctx, "unexpected state on failure", logger.Error(terr))
	}
	r.emit(ctx, types.EventError, types.ErrorPayload{Message: err.Error()})
	r.logger.Error(ctx, "pipeline failed",
		logger.String("outcome", outcome),
		logger.Duration("elapsed", time.Since(start)),
		logger.Error(err),
	)
}

// MaxTeamSize returns the upper bound applied to team sizes.
func (s *Service) MaxTeamSize() int {
	return s.maxTeamSize
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"searchLimit":       s.searcher.Limit(),
		"enrichConcurrency": s.enrichConcurrency,
		"defaultTeamSize":   s.defaultTeamSize,
		"maxTeamSize":       s.maxTeamSize,
		"runsStarted":       s.runsStarted.Load(),
		"runsInFlight":      s.runsInFlight.Load(),
		"teamsBuilt":        s.teamsBuilt.Load(),
		"emptySearches":     s.emptySearches.Load(),
		"failedRuns":        s.failedRuns.Load(),
		"enrichFallbacks":   s.fallbacks.Load(),
	}
	if p, ok := s.pool.(interface{ Processed() int64 }); ok {
		stats["genomeFetches"] = p.Processed()
	}
	return stats
}
