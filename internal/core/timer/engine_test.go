package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tomatobar/internal/core/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(duration time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(duration)
	clock.mu.Unlock()
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return New(model.DefaultTimerConfig(), Options{Clock: clock}), clock
}

func TestEngine_StartsIdle(t *testing.T) {
	engine, _ := newTestEngine(t)

	status := engine.Status()
	require.Equal(t, PhaseIdle, status.Phase)
	require.Zero(t, status.Elapsed)
	require.False(t, engine.IsCompleted())
	require.Equal(t, "", engine.DisplayString())
}

func TestEngine_PauseResumeAccumulates(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartPomodoro(Labels{Task: "write report"})

	clock.Advance(3 * time.Minute)
	engine.Pause()
	require.Equal(t, PhasePaused, engine.Phase())
	require.Equal(t, 3*time.Minute, engine.Elapsed())

	clock.Advance(10 * time.Minute)
	require.Equal(t, 3*time.Minute, engine.Elapsed(), "paused time must not count")

	engine.Resume()
	clock.Advance(2 * time.Minute)
	require.Equal(t, 5*time.Minute, engine.Elapsed())

	engine.Pause()
	engine.Pause()
	engine.Resume()
	engine.Resume()
	clock.Advance(time.Minute)
	require.Equal(t, 6*time.Minute, engine.Elapsed())
}

func TestEngine_ElapsedMonotonicAcrossSequence(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartStopwatch(Labels{})

	var running time.Duration
	previous := engine.Elapsed()
	steps := []time.Duration{7 * time.Second, 0, 90 * time.Second, time.Second, 13 * time.Minute}
	for i, step := range steps {
		clock.Advance(step)
		if i%2 == 0 {
			running += step
			engine.Pause()
		} else {
			engine.Resume()
		}
		current := engine.Elapsed()
		require.GreaterOrEqual(t, current, previous)
		previous = current
	}
	require.Equal(t, running, engine.Elapsed())
}

func TestEngine_ClockGoingBackwardsDoesNotShrinkElapsed(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartPomodoro(Labels{})
	clock.Advance(time.Minute)
	engine.Pause()
	engine.Resume()

	clock.Advance(-5 * time.Minute)
	require.Equal(t, time.Minute, engine.Elapsed())
}

func TestEngine_PomodoroCompletion(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartPomodoro(Labels{})
	require.False(t, engine.IsCompleted())

	remaining, ok := engine.Remaining()
	require.True(t, ok)
	require.Equal(t, 25*time.Minute, remaining)

	clock.Advance(25 * time.Minute)
	require.True(t, engine.IsCompleted())
	require.Zero(t, engine.Overtime())

	clock.Advance(90 * time.Second)
	require.Equal(t, 90*time.Second, engine.Overtime())
	remaining, ok = engine.Remaining()
	require.True(t, ok)
	require.Zero(t, remaining)

	engine.Pause()
	require.False(t, engine.IsCompleted(), "paused sessions never complete")
	require.Zero(t, engine.Overtime(), "overtime only while running")
}

func TestEngine_StopwatchNeverCompletes(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartStopwatch(Labels{Project: "Thesis"})
	clock.Advance(10 * time.Hour)

	require.False(t, engine.IsCompleted())
	_, ok := engine.Remaining()
	require.False(t, ok)
	require.Zero(t, engine.Overtime())
}

func TestEngine_StopKeepsPomodoroCount(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartPomodoro(Labels{Project: "Thesis", ProjectPath: "1. 项目/Thesis"})
	clock.Advance(25 * time.Minute)
	_, ok := engine.CompletePomodoro()
	require.True(t, ok)

	engine.StartPomodoro(Labels{})
	clock.Advance(4 * time.Minute)
	snapshot := engine.Stop()

	require.Equal(t, PhaseRunning, snapshot.Phase)
	require.Equal(t, 4, snapshot.Minutes())
	require.Equal(t, 2, snapshot.PomodoroIndex)
	require.Equal(t, PhaseIdle, engine.Phase())
	require.Zero(t, engine.Elapsed())
	require.Equal(t, 1, engine.PomodoroCount())
}

func TestEngine_CompletePomodoroSnapshotsBeforeBreak(t *testing.T) {
	engine, clock := newTestEngine(t)
	labels := Labels{Task: "review", Project: "Thesis", ProjectPath: "1. 项目/Thesis"}
	engine.StartPomodoro(labels)
	start := clock.Now()
	clock.Advance(27 * time.Minute)

	snapshot, ok := engine.CompletePomodoro()
	require.True(t, ok)
	require.Equal(t, ModePomodoro, snapshot.Mode)
	require.Equal(t, 27*time.Minute, snapshot.Elapsed)
	require.Equal(t, start, snapshot.StartedAt)
	require.Equal(t, labels, snapshot.Labels)
	require.Equal(t, 1, snapshot.PomodoroIndex)

	require.Equal(t, PhaseShortBreak, engine.Phase())
	require.Zero(t, engine.Elapsed())

	_, ok = engine.CompletePomodoro()
	require.False(t, ok, "no pomodoro during a break")
}

func TestEngine_LongBreakEveryInterval(t *testing.T) {
	engine, clock := newTestEngine(t)

	want := map[int]Phase{
		1: PhaseShortBreak,
		2: PhaseShortBreak,
		3: PhaseShortBreak,
		4: PhaseLongBreak,
		5: PhaseShortBreak,
		6: PhaseShortBreak,
		7: PhaseShortBreak,
		8: PhaseLongBreak,
	}
	for count := 1; count <= 8; count++ {
		engine.StartPomodoro(Labels{})
		clock.Advance(25 * time.Minute)
		_, ok := engine.CompletePomodoro()
		require.True(t, ok)
		require.Equal(t, want[count], engine.Phase(), "after pomodoro %d", count)

		remaining, ok := engine.Remaining()
		require.True(t, ok)
		if want[count] == PhaseLongBreak {
			require.Equal(t, 15*time.Minute, remaining)
		} else {
			require.Equal(t, 5*time.Minute, remaining)
		}
		engine.SkipBreak()
	}
}

func TestEngine_StartBreakWithoutPomodorosIsShort(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.StartBreak()
	require.Equal(t, PhaseShortBreak, engine.Phase())
}

func TestEngine_BreakCompletesAndSkips(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartBreak()
	clock.Advance(5 * time.Minute)
	require.True(t, engine.IsCompleted())

	require.True(t, engine.CompleteBreak())
	require.Equal(t, PhaseIdle, engine.Phase())
	require.False(t, engine.CompleteBreak())

	engine.StartPomodoro(Labels{})
	engine.SkipBreak()
	require.Equal(t, PhaseRunning, engine.Phase(), "skip outside a break is a no-op")
}

func TestEngine_UpdateConfigAppliesToNextPhase(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.UpdateConfig(model.TimerConfig{PomodoroMinutes: 50, LongBreakInterval: 0})

	engine.StartPomodoro(Labels{})
	remaining, ok := engine.Remaining()
	require.True(t, ok)
	require.Equal(t, 50*time.Minute, remaining)
	require.Equal(t, model.DefaultLongBreakInterval, engine.Config().LongBreakInterval)
}

func TestEngine_DisplayString(t *testing.T) {
	engine, clock := newTestEngine(t)

	engine.StartPomodoro(Labels{})
	clock.Advance(90 * time.Second)
	require.Equal(t, "23:30", engine.DisplayString())

	engine.Pause()
	require.Equal(t, "⏸ 23:30", engine.DisplayString())
	engine.Resume()

	clock.Advance(25 * time.Minute)
	require.Equal(t, "+01:30", engine.DisplayString())
	engine.Pause()
	require.Equal(t, "⏸ +01:30", engine.DisplayString())

	engine.StartStopwatch(Labels{})
	clock.Advance(61*time.Minute + 5*time.Second)
	require.Equal(t, "61:05", engine.DisplayString())

	engine.Stop()
	engine.StartBreak()
	clock.Advance(time.Minute)
	require.Equal(t, "☕ 04:00", engine.DisplayString())
}

func TestEngine_StatusCarriesLabels(t *testing.T) {
	engine, clock := newTestEngine(t)
	labels := Labels{Task: "draft", Project: "Thesis", ProjectPath: "1. 项目/Thesis/Thesis.README.md"}
	engine.StartPomodoro(labels)
	clock.Advance(1500 * time.Millisecond)

	status := engine.Status()
	require.Equal(t, PhaseRunning, status.Phase)
	require.Equal(t, ModePomodoro, status.Mode)
	require.Equal(t, time.Second, status.Elapsed)
	require.True(t, status.HasRemaining)
	require.Equal(t, labels, status.Labels)
}

func TestEngine_TickMatchesDisplayAndProgress(t *testing.T) {
	engine, clock := newTestEngine(t)
	engine.StartPomodoro(Labels{})
	clock.Advance(5 * time.Minute)

	tick := engine.Tick()
	require.Equal(t, EventTick, tick.Type)
	require.Equal(t, PhaseRunning, tick.Phase)
	require.Equal(t, "20:00", tick.Display)
	require.Equal(t, 20*time.Minute, tick.Remaining)
	require.InDelta(t, 20.0, tick.Progress, 0.001)
	require.False(t, tick.Indeterminate)

	clock.Advance(20 * time.Minute)
	engine.Tick()
	completion, _ := engine.poll()
	require.Equal(t, EventPomodoroComplete, completion, "Tick must not consume the completion")

	engine.Stop()
	engine.StartStopwatch(Labels{})
	require.True(t, engine.Tick().Indeterminate)
}
