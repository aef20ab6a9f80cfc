package torre

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/dreamteam/internal/domain/model"
	"github.com/okian/dreamteam/pkg/logger"
)

// GenomeClient fetches per-person detail used for enrichment.
type GenomeClient struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger
}

// NewGenomeClient creates a client for the genome base URL, e.g.
// https://torre.ai/api/genome/bios.
func NewGenomeClient(endpoint string, opts ...Option) *GenomeClient {
	o := buildOptions(defaultGenomeTimeout, opts)
	return &GenomeClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   o.httpClient,
		logger:   o.logger,
	}
}

// Fetch returns the genome of username. Every failure, including a
// malformed body, is reported as ErrEnrichmentFetch.
func (c *GenomeClient) Fetch(ctx context.Context, username string) (model.Genome, error) {
	if username == "" {
		return model.Genome{}, fmt.Errorf("%w: empty username", ErrEnrichmentFetch)
	}
	target := c.endpoint + "/" + url.PathEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return model.Genome{}, fmt.Errorf("%w: %w", ErrEnrichmentFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.Genome{}, fmt.Errorf("%w: %s: %w", ErrEnrichmentFetch, username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Genome{}, fmt.Errorf("%w: %s: status %d", ErrEnrichmentFetch, username, resp.StatusCode)
	}

	var g model.Genome
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return model.Genome{}, fmt.Errorf("%w: %s: decode: %w", ErrEnrichmentFetch, username, err)
	}
	return g, nil
}
