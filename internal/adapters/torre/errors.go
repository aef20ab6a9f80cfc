package torre

import "errors"

// Sentinel kinds for upstream failures.
var (
	// ErrSourceQuery marks a failed people search. It is fatal for a run.
	ErrSourceQuery = errors.New("source query failed")
	// ErrEnrichmentFetch marks a failed genome lookup for one candidate.
	// Callers recover from it locally.
	ErrEnrichmentFetch = errors.New("enrichment fetch failed")
)
