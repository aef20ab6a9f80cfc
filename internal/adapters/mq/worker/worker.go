// Package worker runs bounded fan-out batches, such as fetching detail for
// every sourced candidate.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/dreamteam/pkg/logger"
)

// Default pool configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
)

// Task handles item i of a batch. A non-nil error cancels the tasks that
// have not started yet and is returned by Run.
type Task func(ctx context.Context, i int) error

// Pool runs the items of a batch with at most Size of them in flight. A Pool
// keeps no per-batch state and may run several batches concurrently, each
// with its own ceiling.
type Pool struct {
	size     int
	name     string
	logger   logger.Logger
	inFlight func(delta float64)

	processed atomic.Int64
}

// NewPool creates a pool. A size below 1 defaults to a multiple of the CPU count.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		size:     size,
		name:     "pool",
		logger:   logger.Nop(),
		inFlight: func(float64) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	return p
}

// Size returns the concurrency ceiling.
func (p *Pool) Size() int {
	return p.size
}

// Processed returns how many tasks have completed across all batches.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Run calls task for every index in [0, n) and waits for all started tasks to
// return. Tasks write their results by index, so completion order does not
// matter to callers. Run stops starting tasks once ctx is done and then
// reports ctx.Err().
func (p *Pool) Run(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return nil
	}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	started := 0
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		started++
		g.Go(func() error {
			p.inFlight(1)
			defer p.inFlight(-1)
			defer p.processed.Add(1)
			return task(gctx, i)
		})
	}

	err := g.Wait()
	p.logger.Debug(ctx, "batch finished",
		logger.Int("items", n),
		logger.Int("started", started),
		logger.Int("limit", p.size),
		logger.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", p.name, err)
	}
	if started < n {
		return fmt.Errorf("%s: %w", p.name, ctx.Err())
	}
	return nil
}
