package searchprobe

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Verify checks a complete stream against the ordering contract and fills
// report with what it saw. All violations are returned joined.
func Verify(events []Event, size int, report *Report) error {
	var errs []error
	if len(events) == 0 {
		return errors.New("stream carried no events")
	}
	if events[0].Kind != KindStatus {
		errs = append(errs, fmt.Errorf("first event is %q, want status", events[0].Kind))
	}

	statuses, terminals := 0, 0
	for i, e := range events {
		if terminals > 0 {
			errs = append(errs, fmt.Errorf("event %d (%s) follows the terminal event", i, e.Kind))
			break
		}
		switch e.Kind {
		case KindStatus:
			statuses++
			report.Statuses = append(report.Statuses, e.Data)
		case KindCandidate:
			report.Candidates++
			if statuses != 1 {
				errs = append(errs, fmt.Errorf("candidate at event %d arrived after status %d", i, statuses))
			}
		case KindDreamTeam:
			terminals++
			if err := json.Unmarshal([]byte(e.Data), &report.Team); err != nil {
				errs = append(errs, fmt.Errorf("decode team: %w", err))
			}
		case KindError:
			terminals++
			var payload ErrorEvent
			if err := json.Unmarshal([]byte(e.Data), &payload); err != nil {
				errs = append(errs, fmt.Errorf("decode error event: %w", err))
			}
			report.Failure = payload.Message
		default:
			errs = append(errs, fmt.Errorf("unknown event kind %q", e.Kind))
		}
	}
	report.Events = len(events)

	if terminals == 0 {
		errs = append(errs, errors.New("stream ended without dreamTeam or error"))
	}
	if len(report.Team) > size {
		errs = append(errs, fmt.Errorf("team has %d members, requested %d", len(report.Team), size))
	}
	seen := make(map[string]bool, len(report.Team))
	for _, m := range report.Team {
		if seen[m.Username] {
			errs = append(errs, fmt.Errorf("username %q appears twice in the team", m.Username))
		}
		seen[m.Username] = true
	}
	return errors.Join(errs...)
}
