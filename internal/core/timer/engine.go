package timer

import (
	"fmt"
	"sync"
	"time"

	"tomatobar/internal/core/model"
)

// Clock supplies the current time. Readings from time.Now carry a monotonic
// component, so durations between them are immune to wall-clock jumps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Options contains runtime options for the Engine.
type Options struct {
	Clock Clock
}

// Engine is the pomodoro/stopwatch state machine. All methods are safe for
// concurrent use and hold the lock only for the in-memory mutation.
type Engine struct {
	mu     sync.Mutex
	clock  Clock
	config model.TimerConfig

	phase Phase
	mode  Mode

	anchor   time.Time
	anchored bool
	// startedAt is wall-clock attribution only, never used for durations.
	startedAt   time.Time
	accumulated time.Duration
	target      time.Duration

	pomodoroCount      int
	labels             Labels
	completionNotified bool
}

// New creates an idle Engine with the provided configuration.
func New(config model.TimerConfig, options Options) *Engine {
	if options.Clock == nil {
		options.Clock = systemClock{}
	}
	config = config.Normalized()
	return &Engine{
		clock:  options.Clock,
		config: config,
		phase:  PhaseIdle,
		mode:   ModePomodoro,
		target: config.Pomodoro(),
	}
}

// UpdateConfig replaces the durations used by future phases.
func (engine *Engine) UpdateConfig(config model.TimerConfig) {
	engine.mu.Lock()
	engine.config = config.Normalized()
	engine.mu.Unlock()
}

// Config returns the active configuration.
func (engine *Engine) Config() model.TimerConfig {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.config
}

// StartPomodoro begins a work interval from any state.
func (engine *Engine) StartPomodoro(labels Labels) {
	engine.mu.Lock()
	engine.startLocked(ModePomodoro, engine.config.Pomodoro(), labels)
	engine.mu.Unlock()
}

// StartStopwatch begins an open-ended session from any state.
func (engine *Engine) StartStopwatch(labels Labels) {
	engine.mu.Lock()
	engine.startLocked(ModeStopwatch, 0, labels)
	engine.mu.Unlock()
}

// Pause freezes a running session. No-op unless running.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.phase != PhaseRunning {
		return
	}
	engine.accumulated = engine.elapsedLocked()
	engine.anchored = false
	engine.anchor = time.Time{}
	engine.phase = PhasePaused
}

// Resume continues a paused session. No-op unless paused.
func (engine *Engine) Resume() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.phase != PhasePaused {
		return
	}
	engine.anchor = engine.clock.Now()
	engine.anchored = true
	engine.phase = PhaseRunning
}

// Stop returns to idle and reports the state just before stopping.
// The pomodoro count survives.
func (engine *Engine) Stop() Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	snapshot := engine.snapshotLocked(engine.pomodoroCount + 1)
	engine.resetLocked(PhaseIdle)
	engine.startedAt = time.Time{}
	return snapshot
}

// CompletePomodoro counts the current pomodoro, snapshots it and starts the
// following break in one critical section. ok is false when no pomodoro is
// running or paused.
func (engine *Engine) CompletePomodoro() (snapshot Snapshot, ok bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.mode != ModePomodoro || !engine.phase.IsActive() {
		return Snapshot{}, false
	}
	engine.pomodoroCount++
	snapshot = engine.snapshotLocked(engine.pomodoroCount)
	engine.startBreakLocked()
	return snapshot, true
}

// StartBreak enters a short or long break depending on the pomodoro count.
// The caller is responsible for having counted the finished pomodoro.
func (engine *Engine) StartBreak() {
	engine.mu.Lock()
	engine.startBreakLocked()
	engine.mu.Unlock()
}

// SkipBreak ends the current break. No-op outside breaks.
func (engine *Engine) SkipBreak() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.phase.IsBreak() {
		return
	}
	engine.resetLocked(PhaseIdle)
}

// CompleteBreak ends the current break and reports whether one was active.
func (engine *Engine) CompleteBreak() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.phase.IsBreak() {
		return false
	}
	engine.resetLocked(PhaseIdle)
	return true
}

// Elapsed returns the time spent running in the current phase.
func (engine *Engine) Elapsed() time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.elapsedLocked()
}

// Remaining returns the time left until the target. ok is false for a
// running stopwatch or an unbounded target.
func (engine *Engine) Remaining() (remaining time.Duration, ok bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.remainingLocked(engine.elapsedLocked())
}

// Overtime returns how far a running pomodoro is past its target.
func (engine *Engine) Overtime() time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.overtimeLocked(engine.elapsedLocked())
}

// IsCompleted reports whether the current phase has reached its target.
// Stopwatches, paused and idle sessions never complete on their own.
func (engine *Engine) IsCompleted() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.completedLocked(engine.elapsedLocked())
}

// Phase returns the current phase.
func (engine *Engine) Phase() Phase {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.phase
}

// PomodoroCount returns the pomodoros completed since the app started.
func (engine *Engine) PomodoroCount() int {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.pomodoroCount
}

// Status returns a consistent view of the engine.
func (engine *Engine) Status() Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.statusLocked(engine.elapsedLocked())
}

// DisplayString renders the countdown or count-up shown in the tray.
func (engine *Engine) DisplayString() string {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.displayLocked(engine.elapsedLocked())
}

// poll runs the scheduler's per-tick work under the lock: it latches
// completion at most once per phase and snapshots display state.
func (engine *Engine) poll() (completion EventType, tick Event) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	now := engine.clock.Now()
	elapsed := engine.elapsedAtLocked(now)

	if engine.completedLocked(elapsed) && !engine.completionNotified {
		engine.completionNotified = true
		switch {
		case engine.phase == PhaseRunning && engine.mode == ModePomodoro:
			completion = EventPomodoroComplete
		case engine.phase.IsBreak():
			completion = EventBreakComplete
		}
	}

	return completion, engine.tickLocked(now, elapsed)
}

// Tick returns the current display state as a tick Event, taken in one
// critical section.
func (engine *Engine) Tick() Event {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	now := engine.clock.Now()
	return engine.tickLocked(now, engine.elapsedAtLocked(now))
}

func (engine *Engine) tickLocked(now time.Time, elapsed time.Duration) Event {
	remaining, hasRemaining := engine.remainingLocked(elapsed)
	tick := Event{
		Type:          EventTick,
		Phase:         engine.phase,
		Mode:          engine.mode,
		Elapsed:       elapsed,
		Target:        engine.target,
		Remaining:     remaining,
		HasRemaining:  hasRemaining,
		Overtime:      engine.overtimeLocked(elapsed),
		PomodoroCount: engine.pomodoroCount,
		Display:       engine.displayLocked(elapsed),
		At:            now,
	}
	tick.Progress, tick.Indeterminate = progress(elapsed, engine.target)
	return tick
}

func (engine *Engine) startLocked(mode Mode, target time.Duration, labels Labels) {
	now := engine.clock.Now()
	engine.mode = mode
	engine.phase = PhaseRunning
	engine.labels = labels
	engine.anchor = now
	engine.anchored = true
	engine.startedAt = now
	engine.accumulated = 0
	engine.target = target
	engine.completionNotified = false
}

func (engine *Engine) startBreakLocked() {
	engine.anchor = engine.clock.Now()
	engine.anchored = true
	engine.accumulated = 0
	engine.completionNotified = false

	interval := engine.config.LongBreakInterval
	if engine.pomodoroCount > 0 && engine.pomodoroCount%interval == 0 {
		engine.phase = PhaseLongBreak
		engine.target = engine.config.LongBreak()
	} else {
		engine.phase = PhaseShortBreak
		engine.target = engine.config.ShortBreak()
	}
}

func (engine *Engine) resetLocked(phase Phase) {
	engine.phase = phase
	engine.anchored = false
	engine.anchor = time.Time{}
	engine.accumulated = 0
}

func (engine *Engine) elapsedLocked() time.Duration {
	return engine.elapsedAtLocked(engine.clock.Now())
}

func (engine *Engine) elapsedAtLocked(now time.Time) time.Duration {
	if !engine.anchored {
		return engine.accumulated
	}
	running := now.Sub(engine.anchor)
	if running < 0 {
		running = 0
	}
	return engine.accumulated + running
}

func (engine *Engine) remainingLocked(elapsed time.Duration) (time.Duration, bool) {
	if engine.mode == ModeStopwatch && engine.phase == PhaseRunning {
		return 0, false
	}
	if engine.target == 0 {
		return 0, false
	}
	remaining := engine.target - truncateSeconds(elapsed)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (engine *Engine) overtimeLocked(elapsed time.Duration) time.Duration {
	if engine.mode != ModePomodoro || engine.phase != PhaseRunning {
		return 0
	}
	elapsed = truncateSeconds(elapsed)
	if elapsed > engine.target {
		return elapsed - engine.target
	}
	return 0
}

func (engine *Engine) completedLocked(elapsed time.Duration) bool {
	switch {
	case engine.phase == PhaseRunning && engine.mode == ModePomodoro:
		return elapsed >= engine.target
	case engine.phase.IsBreak():
		return elapsed >= engine.target
	default:
		return false
	}
}

func (engine *Engine) statusLocked(elapsed time.Duration) Status {
	remaining, hasRemaining := engine.remainingLocked(elapsed)
	return Status{
		Phase:         engine.phase,
		Mode:          engine.mode,
		Elapsed:       truncateSeconds(elapsed),
		Remaining:     remaining,
		HasRemaining:  hasRemaining,
		Overtime:      engine.overtimeLocked(elapsed),
		PomodoroCount: engine.pomodoroCount,
		Labels:        engine.labels,
	}
}

func (engine *Engine) snapshotLocked(pomodoroIndex int) Snapshot {
	return Snapshot{
		Phase:         engine.phase,
		Mode:          engine.mode,
		Elapsed:       engine.elapsedLocked(),
		Target:        engine.target,
		StartedAt:     engine.startedAt,
		Labels:        engine.labels,
		PomodoroIndex: pomodoroIndex,
	}
}

func (engine *Engine) displayLocked(elapsed time.Duration) string {
	elapsed = truncateSeconds(elapsed)
	switch engine.phase {
	case PhaseIdle:
		return ""
	case PhaseRunning:
		return engine.countLocked(elapsed)
	case PhasePaused:
		return "⏸ " + engine.countLocked(elapsed)
	case PhaseShortBreak, PhaseLongBreak:
		remaining, ok := engine.remainingLocked(elapsed)
		if !ok {
			return "☕"
		}
		return "☕ " + clock(remaining)
	}
	return ""
}

// countLocked renders the time part for a running or paused session. The
// overtime here is computed from elapsed so a paused pomodoro past its
// target still shows "+MM:SS".
func (engine *Engine) countLocked(elapsed time.Duration) string {
	if engine.mode == ModeStopwatch || engine.target == 0 {
		return clock(elapsed)
	}
	if elapsed > engine.target {
		return "+" + clock(elapsed-engine.target)
	}
	return clock(engine.target - elapsed)
}

func progress(elapsed, target time.Duration) (percent float64, indeterminate bool) {
	if target <= 0 {
		return 0, true
	}
	percent = float64(elapsed) / float64(target) * 100
	if percent > 100 {
		percent = 100
	}
	return percent, false
}

func truncateSeconds(duration time.Duration) time.Duration {
	return duration.Truncate(time.Second)
}

func clock(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	seconds := int(duration / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
