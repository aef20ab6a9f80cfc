package searchprobe

import "time"

// Config holds configuration for one probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Skills  string        // Comma separated skills
	Size    int           // Requested team size
	Timeout time.Duration // Bound for the whole stream
	LogFile string        // Log file for probe output
	Verbose bool          // Enable verbose logging
}

// Event is one server-sent event block as read off the wire.
type Event struct {
	Kind string
	Data string
}

// Strength is a team member's reported skill.
type Strength struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// Member is the part of a team member the probe inspects.
type Member struct {
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Strengths []Strength `json:"strengths"`
}

// ErrorEvent is the payload of an error event.
type ErrorEvent struct {
	Message string `json:"message"`
}

// Report summarizes a probe run.
type Report struct {
	Events     int
	Statuses   []string
	Candidates int
	Team       []Member
	Failure    string
	StartTime  time.Time
	Duration   time.Duration
}
