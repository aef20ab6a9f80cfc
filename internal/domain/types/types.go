// Package types contains common types used across the application
package types

// EventKind names a progress event carried by the event sink.
type EventKind string

// Event kinds, in the order a successful run emits them.
const (
	EventStatus    EventKind = "status"
	EventCandidate EventKind = "candidate"
	EventDreamTeam EventKind = "dreamTeam"
	EventError     EventKind = "error"
)

// Terminal reports whether no event may follow one of this kind.
func (k EventKind) Terminal() bool {
	return k == EventDreamTeam || k == EventError
}

// Valid reports whether k is one of the four known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventStatus, EventCandidate, EventDreamTeam, EventError:
		return true
	}
	return false
}

// State is a pipeline run state.
//
//	SOURCING -> NO_CANDIDATES -> DONE
//	SOURCING -> ENRICHING -> ASSEMBLING -> DONE
//	any      -> ERROR
type State string

// Pipeline states.
const (
	StateSourcing     State = "sourcing"
	StateNoCandidates State = "no_candidates"
	StateEnriching    State = "enriching"
	StateAssembling   State = "assembling"
	StateDone         State = "done"
	StateError        State = "error"
)

var transitions = map[State][]State{
	StateSourcing:     {StateNoCandidates, StateEnriching},
	StateNoCandidates: {StateDone},
	StateEnriching:    {StateAssembling},
	StateAssembling:   {StateDone},
}

// CanTransition reports whether a run may move from s to next.
func (s State) CanTransition(next State) bool {
	if next == StateError {
		return s != StateDone && s != StateError
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Final reports whether s ends a run.
func (s State) Final() bool {
	return s == StateDone || s == StateError
}

// ErrorPayload is the body of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}
