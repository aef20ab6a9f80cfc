package searchprobe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// openStream starts a search and returns the event stream body.
func openStream(ctx context.Context, client *http.Client, cfg *Config) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("skills", cfg.Skills)
	q.Set("size", strconv.Itoa(cfg.Size))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+"/api/search?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.StatusCode != StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxEventBytes))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("search rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return resp.Body, nil
}

// ReadEvents parses a server-sent event stream until EOF. Data lines of one
// block are joined with newlines; comment lines and unknown fields are ignored.
func ReadEvents(r io.Reader, onEvent func(Event)) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventBytes)

	var (
		events []Event
		kind   string
		data   []string
	)
	dispatch := func() {
		if kind == "" && len(data) == 0 {
			return
		}
		if kind == "" {
			kind = "message"
		}
		e := Event{Kind: kind, Data: strings.Join(data, "\n")}
		events = append(events, e)
		if onEvent != nil {
			onEvent(e)
		}
		kind, data = "", nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			dispatch()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			kind = value
		case "data":
			data = append(data, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("read stream: %w", err)
	}
	dispatch()
	return events, nil
}
