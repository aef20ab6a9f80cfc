// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
)

// Profile keys decoded into typed fields. Everything else the upstream
// service returns is carried through Attributes untouched.
const (
	keyUsername = "username"
	keyName     = "name"
	keyHeadline = "professionalHeadline"
	keyPicture  = "picture"
)

// RawCandidate is a person record as returned by the search service. Identity
// is the Username.
type RawCandidate struct {
	Username             string
	Name                 string
	ProfessionalHeadline string
	Picture              string

	// Attributes holds the remaining JSON fields keyed by name.
	Attributes map[string]json.RawMessage
}

// UnmarshalJSON decodes a person object, keeping unknown fields.
func (c *RawCandidate) UnmarshalJSON(data []byte) error {
	*c = RawCandidate{}
	rest, err := decodeFields(data, map[string]*string{
		keyUsername: &c.Username,
		keyName:     &c.Name,
		keyHeadline: &c.ProfessionalHeadline,
		keyPicture:  &c.Picture,
	})
	if err != nil {
		return err
	}
	c.Attributes = rest
	return nil
}

// decodeFields decodes a JSON object, storing the typed string keys into
// their destinations and returning every other field, or nil if none remain.
// A null typed key leaves its destination empty.
func decodeFields(data []byte, typed map[string]*string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, dst := range typed {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)
		if string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// MarshalJSON encodes the candidate as a flat object.
func (c RawCandidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.fields())
}

func (c RawCandidate) fields() map[string]any {
	out := make(map[string]any, len(c.Attributes)+4)
	for k, v := range c.Attributes {
		out[k] = v
	}
	out[keyUsername] = c.Username
	if c.Name != "" {
		out[keyName] = c.Name
	}
	if c.ProfessionalHeadline != "" {
		out[keyHeadline] = c.ProfessionalHeadline
	}
	if c.Picture != "" {
		out[keyPicture] = c.Picture
	}
	return out
}

// Merge overlays the non-empty fields of detail onto a copy of c. The
// username of c is kept when detail does not carry one.
func (c RawCandidate) Merge(detail RawCandidate) RawCandidate {
	merged := c
	merged.Attributes = make(map[string]json.RawMessage, len(c.Attributes)+len(detail.Attributes))
	for k, v := range c.Attributes {
		merged.Attributes[k] = v
	}
	for k, v := range detail.Attributes {
		merged.Attributes[k] = v
	}
	if len(merged.Attributes) == 0 {
		merged.Attributes = nil
	}
	if detail.Username != "" {
		merged.Username = detail.Username
	}
	if detail.Name != "" {
		merged.Name = detail.Name
	}
	if detail.ProfessionalHeadline != "" {
		merged.ProfessionalHeadline = detail.ProfessionalHeadline
	}
	if detail.Picture != "" {
		merged.Picture = detail.Picture
	}
	return merged
}

// StrengthEntry is one skill a person reports, with its proficiency label.
type StrengthEntry struct {
	Name        string
	Proficiency string

	// Attributes holds the remaining JSON fields (id, weight, ...) keyed by name.
	Attributes map[string]json.RawMessage
}

// UnmarshalJSON decodes a strength object, keeping unknown fields.
func (e *StrengthEntry) UnmarshalJSON(data []byte) error {
	*e = StrengthEntry{}
	rest, err := decodeFields(data, map[string]*string{
		"name":        &e.Name,
		"proficiency": &e.Proficiency,
	})
	if err != nil {
		return err
	}
	e.Attributes = rest
	return nil
}

// MarshalJSON encodes the strength with its extra fields.
func (e StrengthEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attributes)+2)
	for k, v := range e.Attributes {
		out[k] = v
	}
	out["name"] = e.Name
	out["proficiency"] = e.Proficiency
	return json.Marshal(out)
}

// EnrichedCandidate is a raw candidate plus its reported strengths. It is
// built once by enrichment and never mutated afterwards.
type EnrichedCandidate struct {
	RawCandidate
	Strengths []StrengthEntry
}

// MarshalJSON encodes the candidate profile with a "strengths" array.
func (c EnrichedCandidate) MarshalJSON() ([]byte, error) {
	out := c.RawCandidate.fields()
	strengths := c.Strengths
	if strengths == nil {
		strengths = []StrengthEntry{}
	}
	out["strengths"] = strengths
	return json.Marshal(out)
}

// UnmarshalJSON decodes a flat profile object that may carry "strengths".
func (c *EnrichedCandidate) UnmarshalJSON(data []byte) error {
	var raw RawCandidate
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = EnrichedCandidate{}
	if s, ok := raw.Attributes["strengths"]; ok {
		delete(raw.Attributes, "strengths")
		if len(raw.Attributes) == 0 {
			raw.Attributes = nil
		}
		if string(s) != "null" {
			if err := json.Unmarshal(s, &c.Strengths); err != nil {
				return fmt.Errorf("decode strengths: %w", err)
			}
		}
	}
	c.RawCandidate = raw
	return nil
}

// Genome is the detail payload fetched per candidate during enrichment.
type Genome struct {
	Person    RawCandidate    `json:"person"`
	Strengths []StrengthEntry `json:"strengths"`
}

// Team is the ordered result of greedy assembly.
type Team []EnrichedCandidate

// MarshalJSON encodes an empty team as [] rather than null.
func (t Team) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]EnrichedCandidate(t))
}

// Usernames returns the identities of the team members in order.
func (t Team) Usernames() []string {
	out := make([]string, len(t))
	for i, m := range t {
		out[i] = m.Username
	}
	return out
}
