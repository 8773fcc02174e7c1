package timer

import "time"

// EventType defines the type of scheduler event.
type EventType string

const (
	EventTick             EventType = "tick"
	EventPomodoroComplete EventType = "pomodoro_complete"
	EventBreakComplete    EventType = "break_complete"
)

// Event represents a scheduler update for observers.
type Event struct {
	Type          EventType
	Phase         Phase
	Mode          Mode
	Elapsed       time.Duration
	Target        time.Duration
	Remaining     time.Duration
	HasRemaining  bool
	Overtime      time.Duration
	PomodoroCount int
	Display       string
	// Progress is a percentage in [0, 100]; meaningless when Indeterminate.
	Progress      float64
	Indeterminate bool
	At            time.Time
}
