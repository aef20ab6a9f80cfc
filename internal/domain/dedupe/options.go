package dedupe

import "strings"

// Option applies a configuration option to a Set.
type Option func(*Set)

// WithNormalizer sets the function applied to every id before lookup.
func WithNormalizer(fn func(string) string) Option {
	return func(s *Set) {
		if fn != nil {
			s.normalize = fn
		}
	}
}

// WithFold trims and lower-cases ids, so "  SQL" and "sql" are one entry.
func WithFold() Option {
	return WithNormalizer(func(id string) string {
		return strings.ToLower(strings.TrimSpace(id))
	})
}
