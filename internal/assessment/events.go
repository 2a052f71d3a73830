package assessment

import (
	"time"

	"github.com/ashureev/careercompass/internal/domain"
)

// EventType categorizes machine events.
type EventType string

const (
	// EventThinking is emitted when a reply has been scheduled.
	EventThinking EventType = "thinking"
	// EventMessage carries a newly appended transcript message.
	EventMessage EventType = "message"
	// EventProgress carries the updated completion percentage.
	EventProgress EventType = "progress"
	// EventComplete is emitted once when the last question has been asked.
	EventComplete EventType = "complete"
	// EventNotify asks the presentation layer for a transient notification.
	EventNotify EventType = "notify"
	// EventNavigate asks the navigation shell for a page transition.
	EventNavigate EventType = "navigate"
)

// Event is a fire-and-forget notification of a machine transition.
type Event struct {
	Type     EventType       `json:"type"`
	RunID    string          `json:"run_id"`
	Message  *domain.Message `json:"message,omitempty"`
	Progress float64         `json:"progress"`
	Path     string          `json:"path,omitempty"`
	Notice   string          `json:"notice,omitempty"`
	At       time.Time       `json:"at"`
}

// Sink receives machine events. Emit must not call back into the machine
// synchronously with a lock held by the caller; machines always emit after
// releasing their own lock.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(ev Event) { f(ev) }

type discardSink struct{}

func (discardSink) Emit(Event) {}
