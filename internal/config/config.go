// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) builds a Config with defaults; Load(ctx) layers file and env on top.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SearchEndpoint is the people search URL (POST, JSON body).
	SearchEndpoint string `koanf:"search_endpoint"`

	// GenomeEndpoint is the base URL for per-person detail lookups; the
	// username is appended as the last path segment.
	GenomeEndpoint string `koanf:"genome_endpoint"`

	// SearchLimit caps the number of search results requested.
	SearchLimit int `koanf:"search_limit"`

	// EnrichConcurrency bounds concurrent genome fetches per run.
	EnrichConcurrency int `koanf:"enrich_concurrency"`

	// SearchTimeoutMS and GenomeTimeoutMS bound each upstream call.
	SearchTimeoutMS int `koanf:"search_timeout_ms"`
	GenomeTimeoutMS int `koanf:"genome_timeout_ms"`

	// DefaultTeamSize applies when the request size is missing or invalid;
	// requested sizes are clamped to [1, MaxTeamSize].
	DefaultTeamSize int `koanf:"default_team_size"`
	MaxTeamSize     int `koanf:"max_team_size"`

	// StreamTimeoutMS bounds a whole search stream.
	StreamTimeoutMS int `koanf:"stream_timeout_ms"`

	// EventBuffer sizes the channel between a run and its stream writer.
	EventBuffer int `koanf:"event_buffer"`

	// FrontendURL is sent as Access-Control-Allow-Origin.
	FrontendURL string `koanf:"frontend_url"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		SearchEndpoint:    "https://search.torre.co/people/_search",
		GenomeEndpoint:    "https://torre.ai/api/genome/bios",
		SearchLimit:       100,
		EnrichConcurrency: 16,
		SearchTimeoutMS:   15_000,
		GenomeTimeoutMS:   10_000,
		DefaultTeamSize:   3,
		MaxTeamSize:       10,
		StreamTimeoutMS:   120_000,
		EventBuffer:       64,
		FrontendURL:       "http://localhost:3000",
	}
}

// SearchTimeout returns SearchTimeoutMS as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutMS) * time.Millisecond
}

// GenomeTimeout returns GenomeTimeoutMS as a duration.
func (c *Config) GenomeTimeout() time.Duration {
	return time.Duration(c.GenomeTimeoutMS) * time.Millisecond
}

// StreamTimeout returns StreamTimeoutMS as a duration.
func (c *Config) StreamTimeout() time.Duration {
	return time.Duration(c.StreamTimeoutMS) * time.Millisecond
}

// Validate checks the invariants the service relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SearchEndpoint == "":
		return fmt.Errorf("%w: search_endpoint must not be empty", ErrInvalidConfig)
	case c.GenomeEndpoint == "":
		return fmt.Errorf("%w: genome_endpoint must not be empty", ErrInvalidConfig)
	case c.SearchLimit < 1:
		return fmt.Errorf("%w: search_limit must be positive", ErrInvalidConfig)
	case c.EnrichConcurrency < 1:
		return fmt.Errorf("%w: enrich_concurrency must be positive", ErrInvalidConfig)
	case c.MaxTeamSize < 1:
		return fmt.Errorf("%w: max_team_size must be positive", ErrInvalidConfig)
	case c.DefaultTeamSize < 1 || c.DefaultTeamSize > c.MaxTeamSize:
		return fmt.Errorf("%w: default_team_size must be within [1, max_team_size]", ErrInvalidConfig)
	case c.SearchTimeoutMS < 1 || c.GenomeTimeoutMS < 1 || c.StreamTimeoutMS < 1:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.EventBuffer < 0:
		return fmt.Errorf("%w: event_buffer must not be negative", ErrInvalidConfig)
	}
	return nil
}
