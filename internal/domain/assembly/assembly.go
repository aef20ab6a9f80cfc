// Package assembly selects a team that covers a requested skill set using a
// single-pass weighted greedy heuristic.
//
// Each round scores every still-available candidate by the proficiency
// weights it brings to the skills nobody on the team covers yet, picks the
// highest score (earliest position wins ties) and marks the picked
// candidate's skills as covered. Rounds continue until the team is full or
// the pool is empty; the loop does not stop once every skill is covered and
// it will pick a zero-score candidate when nothing better remains.
package assembly

import (
	"context"

	"github.com/okian/dreamteam/internal/domain/dedupe"
	"github.com/okian/dreamteam/internal/domain/model"
	"github.com/okian/dreamteam/internal/domain/scoring"
	"github.com/okian/dreamteam/pkg/logger"
)

// Round records one selection.
type Round struct {
	Index     int
	Username  string
	Score     int
	Covered   []string
	Remaining []string
}

// Result is the outcome of Assemble.
type Result struct {
	Team   model.Team
	Rounds []Round
	// Uncovered lists the requested skills nobody on the team reports.
	Uncovered []string
}

// Assembler runs greedy team assembly. It holds no per-run state and is safe
// for concurrent use.
type Assembler struct {
	scale  scoring.Scale
	logger logger.Logger
}

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithScale overrides the proficiency weights.
func WithScale(scale scoring.Scale) Option {
	return func(a *Assembler) {
		if scale != nil {
			a.scale = scale
		}
	}
}

// WithLogger sets the logger used for per-round debug output.
func WithLogger(l logger.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Assembler with the default proficiency scale.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		scale:  scoring.DefaultScale(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble picks up to teamSize candidates covering skills. The input slice
// is not modified; the result is fully determined by its contents and order.
func (a *Assembler) Assemble(ctx context.Context, candidates []model.EnrichedCandidate, skills []string, teamSize int) Result {
	available := make([]model.EnrichedCandidate, len(candidates))
	copy(available, candidates)
	uncovered := dedupe.Of(skills, dedupe.WithNormalizer(scoring.SkillKey))

	a.logger.Debug(ctx, "starting greedy assembly",
		logger.Int("candidates", len(available)),
		logger.Int("teamSize", teamSize),
		logger.Any("uncovered", uncovered.Items()),
	)

	res := Result{Team: model.Team{}}
	for i := 0; i < teamSize && len(available) > 0; i++ {
		best, bestScore := -1, -1
		for j := range available {
			score := a.scale.Marginal(available[j].Strengths, uncovered)
			if score > bestScore {
				best, bestScore = j, score
			}
		}

		picked := available[best]
		res.Team = append(res.Team, picked)
		available = without(available, picked.Username)

		var covered []string
		for _, st := range picked.Strengths {
			key := scoring.SkillKey(st.Name)
			if uncovered.Unrecord(key) {
				covered = append(covered, key)
			}
		}

		round := Round{
			Index:     i + 1,
			Username:  picked.Username,
			Score:     bestScore,
			Covered:   covered,
			Remaining: uncovered.Items(),
		}
		res.Rounds = append(res.Rounds, round)
		a.logger.Debug(ctx, "selected candidate",
			logger.Int("round", round.Index),
			logger.String("username", round.Username),
			logger.Int("score", round.Score),
			logger.Any("covered", round.Covered),
			logger.Any("remaining", round.Remaining),
		)
	}

	res.Uncovered = uncovered.Items()
	return res
}

// without returns the candidates whose identity differs from username.
func without(pool []model.EnrichedCandidate, username string) []model.EnrichedCandidate {
	out := pool[:0]
	for _, c := range pool {
		if c.Username != username {
			out = append(out, c)
		}
	}
	return out
}
