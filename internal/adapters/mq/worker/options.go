package worker

import (
	"github.com/okian/dreamteam/pkg/logger"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithName sets the pool name for identification and logging.
func WithName(name string) Option {
	return func(p *Pool) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithInFlight registers a callback told +1 when a task starts and -1 when
// it returns, e.g. a gauge.
func WithInFlight(fn func(delta float64)) Option {
	return func(p *Pool) {
		if fn != nil {
			p.inFlight = fn
		}
	}
}
