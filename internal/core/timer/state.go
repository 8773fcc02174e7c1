package timer

import "time"

// Phase represents the timer lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRunning    Phase = "running"
	PhasePaused     Phase = "paused"
	PhaseShortBreak Phase = "shortBreak"
	PhaseLongBreak  Phase = "longBreak"
)

// IsBreak reports whether the phase is a short or long break.
func (phase Phase) IsBreak() bool {
	return phase == PhaseShortBreak || phase == PhaseLongBreak
}

// IsActive reports whether a work session is in progress.
func (phase Phase) IsActive() bool {
	return phase == PhaseRunning || phase == PhasePaused
}

// Mode selects between a fixed-length pomodoro and an open-ended stopwatch.
type Mode string

const (
	ModePomodoro  Mode = "pomodoro"
	ModeStopwatch Mode = "stopwatch"
)

// Labels are the optional task and project a session is attributed to.
type Labels struct {
	Task        string
	Project     string
	ProjectPath string
}

// Status is a read-only view of the engine.
type Status struct {
	Phase         Phase
	Mode          Mode
	Elapsed       time.Duration
	Remaining     time.Duration
	HasRemaining  bool
	Overtime      time.Duration
	PomodoroCount int
	Labels        Labels
}

// Snapshot captures what the orchestrator needs to record a finished session.
// It is taken under the engine lock and never changes afterwards.
type Snapshot struct {
	Phase     Phase
	Mode      Mode
	Elapsed   time.Duration
	Target    time.Duration
	StartedAt time.Time
	Labels    Labels
	// PomodoroIndex is the ordinal of this pomodoro within the app session.
	PomodoroIndex int
}

// Minutes returns the elapsed time in whole minutes.
func (snapshot Snapshot) Minutes() int {
	return int(snapshot.Elapsed / time.Minute)
}
