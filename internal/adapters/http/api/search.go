package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/dreamteam/internal/adapters/mq/queue"
	"github.com/okian/dreamteam/internal/domain/dedupe"
	"github.com/okian/dreamteam/pkg/logger"
)

// Request defaults used when SearchConfig leaves them unset.
const (
	defaultTeamSize      = 3
	defaultMaxTeamSize   = 10
	defaultStreamTimeout = 2 * time.Minute
)

// SearchHandler streams a pipeline run as server-sent events.
type SearchHandler struct {
	deps   Dependencies
	cfg    SearchConfig
	logger logger.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps Dependencies, cfg SearchConfig, l logger.Logger) *SearchHandler {
	if cfg.DefaultTeamSize <= 0 {
		cfg.DefaultTeamSize = defaultTeamSize
	}
	if cfg.MaxTeamSize <= 0 {
		cfg.MaxTeamSize = defaultMaxTeamSize
	}
	if cfg.StreamTimeout <= 0 {
		cfg.StreamTimeout = defaultStreamTimeout
	}
	return &SearchHandler{deps: deps, cfg: cfg, logger: l}
}

// parseSkills splits a comma-separated list into trimmed, lower-cased,
// unique skills.
func parseSkills(raw string) []string {
	return dedupe.Of(strings.Split(raw, ","), dedupe.WithFold()).Items()
}

// parseTeamSize reads the leading integer of raw, so "2abc" is 2. A missing,
// non-numeric or zero size becomes def; the result is clamped to
// [1, maxSize].
func parseTeamSize(raw string, def, maxSize int) int {
	n := leadingInt(strings.TrimSpace(raw))
	if n == 0 {
		n = def
	}
	return min(max(n, 1), maxSize)
}

// leadingInt parses an optionally signed run of decimal digits at the start
// of s. It returns 0 when s does not start with one.
func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of int range
		if s[0] == '-' {
			return -1
		}
		return math.MaxInt
	}
	return n
}

// HandleSearch handles GET /api/search?skills=a,b&size=N.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	if h.cfg.AllowOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", h.cfg.AllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	}
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		w.Header().Set("Allow", "GET, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	q := r.URL.Query()
	skills := parseSkills(q.Get("skills"))
	if len(skills) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("skills query parameter is required")))
		return
	}
	teamSize := parseTeamSize(q.Get("size"), h.cfg.DefaultTeamSize, h.cfg.MaxTeamSize)

	h.stream(w, r, skills, teamSize)
}

func (h *SearchHandler) stream(w http.ResponseWriter, r *http.Request, skills []string, teamSize int) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.StreamTimeout)
	defer cancel()

	rc := http.NewResponseController(w)
	// The server write timeout is sized for plain requests.
	if err := rc.SetWriteDeadline(time.Now().Add(h.cfg.StreamTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn(ctx, "cannot extend write deadline", logger.Error(err))
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	sink := queue.NewChannelSink(queue.WithBufferSize(h.cfg.EventBuffer))
	defer sink.Close()

	done := make(chan error, 1)
	go func() {
		defer sink.Finish()
		done <- h.deps.Run(ctx, skills, teamSize, sink)
	}()

	for e := range sink.Events() {
		err := writeEvent(w, e)
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			h.logger.Debug(ctx, "consumer went away", logger.String("kind", string(e.Kind)), logger.Error(err))
			cancel()
			_ = sink.Close()
			break
		}
	}

	if err := <-done; err != nil {
		h.logger.Debug(ctx, "search run ended with error", logger.Error(err))
	}
}
