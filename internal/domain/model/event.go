package model

import (
	"encoding/json"
	"fmt"

	"github.com/okian/dreamteam/internal/domain/types"
)

// Event is one progress notification pushed through the event sink.
// Payload is a string for status events, a RawCandidate for candidate
// events, a Team for dreamTeam events and a types.ErrorPayload for errors.
type Event struct {
	Kind    types.EventKind
	Payload any
}

// Data renders the event payload for a text stream: status payloads are the
// plain string, everything else is JSON.
func (e Event) Data() ([]byte, error) {
	if e.Kind == types.EventStatus {
		if s, ok := e.Payload.(string); ok {
			return []byte(s), nil
		}
	}
	b, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.Kind, err)
	}
	return b, nil
}
