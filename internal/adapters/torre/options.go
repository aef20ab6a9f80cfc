package torre

import (
	"net/http"
	"time"

	"github.com/okian/dreamteam/pkg/logger"
)

// Default client configuration constants.
const (
	defaultSearchLimit   = 100
	defaultSearchTimeout = 15 * time.Second
	defaultGenomeTimeout = 10 * time.Second
	maxErrorBodyBytes    = 4 << 10
)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	limit      int
	logger     logger.Logger
}

// Option applies a configuration option to a SearchClient or GenomeClient.
type Option func(*clientOptions)

// WithHTTPClient sets the underlying HTTP client. Its Timeout is overridden
// when WithTimeout is also given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout bounds every request issued by the client.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLimit sets the number of search results requested. Ignored by GenomeClient.
func WithLimit(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(timeout time.Duration, opts []Option) clientOptions {
	o := clientOptions{
		limit:  defaultSearchLimit,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout == 0 {
		o.timeout = timeout
		if o.httpClient != nil && o.httpClient.Timeout > 0 {
			o.timeout = o.httpClient.Timeout
		}
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}
	c := *o.httpClient
	c.Timeout = o.timeout
	o.httpClient = &c
	return o
}
