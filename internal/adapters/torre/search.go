// Package torre talks to the people search and genome services that supply
// candidates and their strengths.
package torre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/dreamteam/internal/domain/model"
	"github.com/okian/dreamteam/internal/domain/scoring"
	"github.com/okian/dreamteam/pkg/logger"
)

// Fixed eligibility filters applied to every search.
const (
	openToTerm     = "full-time-employment"
	languageTerm   = "English"
	languageFluent = "fully-fluent"
)

// Clause is one operand of the search "and" expression.
type Clause map[string]any

// Query is the search request body.
type Query struct {
	And []Clause `json:"and"`
}

// BuildQuery returns the search body: one skill/role clause per skill asking
// for at least proficient, followed by the availability and language filters.
func BuildQuery(skills []string) Query {
	q := Query{And: make([]Clause, 0, len(skills)+2)}
	for _, skill := range skills {
		q.And = append(q.And, Clause{
			"skill/role": map[string]string{
				"text":        strings.ToLower(skill),
				"proficiency": scoring.Proficient,
			},
		})
	}
	q.And = append(q.And,
		Clause{"opento": map[string]string{"term": openToTerm}},
		Clause{"language": map[string]string{"term": languageTerm, "fluency": languageFluent}},
	)
	return q
}

type searchResponse struct {
	Results []model.RawCandidate `json:"results"`
}

// SearchClient issues people searches.
type SearchClient struct {
	endpoint string
	limit    int
	client   *http.Client
	logger   logger.Logger
}

// NewSearchClient creates a client for the search endpoint, e.g.
// https://search.torre.co/people/_search.
func NewSearchClient(endpoint string, opts ...Option) *SearchClient {
	o := buildOptions(defaultSearchTimeout, opts)
	return &SearchClient{
		endpoint: endpoint,
		limit:    o.limit,
		client:   o.httpClient,
		logger:   o.logger,
	}
}

// Limit returns the number of results requested per search.
func (c *SearchClient) Limit() int {
	return c.limit
}

// Search runs one filtered query and returns the results in service order.
// Any failure is reported as ErrSourceQuery; there is no retry.
func (c *SearchClient) Search(ctx context.Context, skills []string) ([]model.RawCandidate, error) {
	target, err := c.searchURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceQuery, err)
	}
	body, err := json.Marshal(BuildQuery(skills))
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %w", ErrSourceQuery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceQuery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.logger.Debug(ctx, "searching people", logger.String("url", target), logger.Int("clauses", len(skills)+2))
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceQuery, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "search responded",
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: search request failed with status %d: %s",
			ErrSourceQuery, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode results: %w", ErrSourceQuery, err)
	}
	if out.Results == nil {
		out.Results = []model.RawCandidate{}
	}
	return out.Results, nil
}

func (c *SearchClient) searchURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("size", strconv.Itoa(c.limit))
	q.Set("aggregate", "false")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
