// Package searchprobe drives one search against a running server and checks
// the event stream it returns.
package searchprobe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dreamteam/pkg/logger"
)

// Run executes the probe and returns what it observed. A non-nil error means
// the service was unreachable or the stream broke the contract.
func Run(ctx context.Context, config *Config) (*Report, error) {
	report := &Report{StartTime: time.Now()}
	log := logger.Get().With(logger.String("probe_id", uuid.NewString()))

	log.Info(ctx, "starting search probe",
		logger.String("baseURL", config.BaseURL),
		logger.String("skills", config.Skills),
		logger.Int("size", config.Size),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	client := &http.Client{}

	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return report, fmt.Errorf("service health check failed: %w", err)
	}

	body, err := openStream(ctx, client, config)
	if err != nil {
		return report, err
	}
	defer body.Close()

	events, err := ReadEvents(body, func(e Event) {
		log.Debug(ctx, "event", logger.String("kind", e.Kind), logger.Int("bytes", len(e.Data)))
	})
	if err != nil {
		return report, err
	}

	report.Duration = time.Since(report.StartTime)
	if err := Verify(events, config.Size, report); err != nil {
		return report, fmt.Errorf("stream verification failed: %w", err)
	}

	displayReport(ctx, log, report)
	return report, nil
}

// displayReport prints the probe summary.
func displayReport(ctx context.Context, log logger.Logger, r *Report) {
	log.Info(ctx, "probe statistics",
		logger.Int("events", r.Events),
		logger.Int("candidates", r.Candidates),
		logger.Int("statuses", len(r.Statuses)),
		logger.Int("teamSize", len(r.Team)),
		logger.Duration("duration", r.Duration))

	if r.Failure != "" {
		log.Warn(ctx, "pipeline reported an error", logger.String("message", r.Failure))
		return
	}
	for i, m := range r.Team {
		skills := make([]string, len(m.Strengths))
		for j, s := range m.Strengths {
			skills[j] = s.Name + ":" + s.Proficiency
		}
		log.Info(ctx, "team member",
			logger.Int("position", i+1),
			logger.String("username", m.Username),
			logger.String("name", m.Name),
			logger.String("strengths", strings.Join(skills, ",")))
	}
}
