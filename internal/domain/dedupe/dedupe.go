// Package dedupe tracks identities seen within a single pipeline run:
// requested skills, sourced usernames and the uncovered skill set.
//
// A Set is owned by one run and is not safe for concurrent use.
package dedupe

// Set is an insertion-ordered set of string identities.
type Set struct {
	seen      map[string]int // id -> position in order
	order     []string
	normalize func(string) string
}

// New creates an empty Set.
func New(opts ...Option) *Set {
	s := &Set{
		seen:      make(map[string]int),
		normalize: func(id string) string { return id },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Of builds a Set from ids, keeping the first occurrence of each.
func Of(ids []string, opts ...Option) *Set {
	s := New(opts...)
	for _, id := range ids {
		s.SeenAndRecord(id)
	}
	return s
}

// SeenAndRecord reports whether id was already present and records it if not.
// Ids that normalize to "" are never recorded and report true.
func (s *Set) SeenAndRecord(id string) bool {
	key := s.normalize(id)
	if key == "" {
		return true
	}
	if _, exists := s.seen[key]; exists {
		return true
	}
	s.seen[key] = len(s.order)
	s.order = append(s.order, key)
	return false
}

// Unrecord removes id. It reports whether id was present.
func (s *Set) Unrecord(id string) bool {
	key := s.normalize(id)
	pos, exists := s.seen[key]
	if !exists {
		return false
	}
	delete(s.seen, key)
	s.order[pos] = ""
	return true
}

// Has reports whether id is present.
func (s *Set) Has(id string) bool {
	_, exists := s.seen[s.normalize(id)]
	return exists
}

// Len returns the number of ids present.
func (s *Set) Len() int {
	return len(s.seen)
}

// Items returns the present ids in first-recorded order.
func (s *Set) Items() []string {
	out := make([]string, 0, len(s.seen))
	for _, id := range s.order {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
