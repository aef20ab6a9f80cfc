package service

import (
	"github.com/okian/dreamteam/internal/domain/assembly"
	"github.com/okian/dreamteam/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEnrichConcurrency bounds how many genome fetches a run keeps in flight.
func WithEnrichConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.enrichConcurrency = n
		}
	}
}

// WithPool replaces the enrichment fan-out pool.
func WithPool(p Fanout) Option {
	return func(s *Service) {
		if p != nil {
			s.pool = p
		}
	}
}

// WithAssembler replaces the team assembler.
func WithAssembler(a *assembly.Assembler) Option {
	return func(s *Service) {
		if a != nil {
			s.assembler = a
		}
	}
}

// WithMaxTeamSize sets the upper bound applied to requested team sizes.
func WithMaxTeamSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTeamSize = n
		}
	}
}

// WithDefaultTeamSize sets the size used when Run is called with 0.
func WithDefaultTeamSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultTeamSize = n
		}
	}
}
