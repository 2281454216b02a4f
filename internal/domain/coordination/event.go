package coordination

import "time"

// EventType is the lifecycle stage a coordination event records.
type EventType string

const (
	EventStart    EventType = "start"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Terminal reports whether t ends a coordination.
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// Event is one append-only log entry. A start/terminal pair with the same ID
// forms one completed coordination.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	ItemCount    int       `json:"item_count"`
	Domains      []string  `json:"domains,omitempty"`
	Strategy     Strategy  `json:"strategy"`
	Duration     *float64  `json:"duration,omitempty"` // seconds; nil for starts and orphans
	Success      *bool     `json:"success,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}
