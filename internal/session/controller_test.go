package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tomatobar/internal/core/model"
	"tomatobar/internal/core/timer"
	"tomatobar/internal/journal"
	"tomatobar/internal/platform"
	"tomatobar/internal/vault"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *stepClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *stepClock) Advance(duration time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(duration)
	clock.mu.Unlock()
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []platform.Notification
}

func (notifier *recordingNotifier) Notify(notification platform.Notification) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.sent = append(notifier.sent, notification)
	return nil
}

func (notifier *recordingNotifier) kinds() []platform.NotificationKind {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	kinds := make([]platform.NotificationKind, 0, len(notifier.sent))
	for _, notification := range notifier.sent {
		kinds = append(kinds, notification.Kind)
	}
	return kinds
}

type memoryJournal struct {
	entries []journal.Entry
}

func (memory *memoryJournal) Append(_ context.Context, entry journal.Entry) error {
	memory.entries = append(memory.entries, entry)
	return nil
}

type memorySettings struct {
	settings model.AppSettings
	saves    int
}

func (memory *memorySettings) LoadSettings() (model.AppSettings, error) {
	return memory.settings, nil
}

func (memory *memorySettings) SaveSettings(settings model.AppSettings) error {
	memory.settings = settings
	memory.saves++
	return nil
}

type fakeAutostart struct {
	enabled bool
}

func (autostart *fakeAutostart) EnableAutostart() error {
	autostart.enabled = true
	return nil
}

func (autostart *fakeAutostart) DisableAutostart() error {
	autostart.enabled = false
	return nil
}

func (autostart *fakeAutostart) AutostartEnabled() (bool, error) {
	return autostart.enabled, nil
}

type conflictingNotes struct{}

func (conflictingNotes) UpdateProjectTime(string, time.Time, string, string, int) (bool, error) {
	return false, vault.ErrConflict
}

const dailyNote = `## 项目列表

1. [[1. 项目/Blog/Blog.README.md|Blog]] 0hr30

0hr30

## 习惯

- [ ] 使用番茄钟
`

var blog = timer.Labels{Task: "draft post", Project: "Blog", ProjectPath: "1. 项目/Blog/Blog.README.md"}

type harness struct {
	controller *Controller
	engine     *timer.Engine
	clock      *stepClock
	notifier   *recordingNotifier
	journal    *memoryJournal
	settings   *memorySettings
	root       string
}

func newHarness(t *testing.T, configure func(*Options)) *harness {
	t.Helper()
	clock := &stepClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)}
	h := &harness{
		engine:   timer.New(model.DefaultTimerConfig(), timer.Options{Clock: clock}),
		clock:    clock,
		notifier: &recordingNotifier{},
		journal:  &memoryJournal{},
		settings: &memorySettings{},
		root:     filepath.Join(t.TempDir(), "Notes"),
	}
	require.NoError(t, os.MkdirAll(vault.PluginDir(h.root), 0o755))

	options := Options{
		DeviceID: "device-a",
		Settings: h.settings,
		Journal:  h.journal,
		Notifier: h.notifier,
		Now:      clock.Now,
	}
	if configure != nil {
		configure(&options)
	}
	h.controller = NewController(h.engine, options)
	return h
}

func (h *harness) writeFile(t *testing.T, relative, content string) {
	t.Helper()
	path := filepath.Join(h.root, filepath.FromSlash(relative))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (h *harness) writeDailyNote(t *testing.T) string {
	t.Helper()
	path := vault.DailyNotePath(h.root, h.clock.Now())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(dailyNote), 0o644))
	return path
}

func (h *harness) records(t *testing.T) []vault.Record {
	t.Helper()
	file, err := vault.ReadRecords(vault.RecordsFilePath(h.root, "device-a"))
	require.NoError(t, err)
	return file.Records
}

func TestController_CompletePomodoroWritesVault(t *testing.T) {
	h := newHarness(t, nil)
	notePath := h.writeDailyNote(t)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	started := h.clock.Now()
	h.controller.StartPomodoro(blog)
	h.clock.Advance(26*time.Minute + 40*time.Second)

	outcome, err := h.controller.CompletePomodoro(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.Recorded)
	require.True(t, outcome.NoteUpdated)
	require.True(t, outcome.HabitChecked)
	require.Equal(t, timer.PhaseShortBreak, h.engine.Phase())
	require.Equal(t, 1, h.engine.PomodoroCount())

	records := h.records(t)
	require.Len(t, records, 1)
	require.Equal(t, vault.Record{
		ID:            outcome.Record.ID,
		Date:          "2026-03-14",
		StartTime:     started.UnixMilli(),
		EndTime:       h.clock.Now().UnixMilli(),
		Duration:      26,
		Mode:          vault.ModePomodoro,
		Status:        vault.StatusCompleted,
		ProjectPath:   blog.ProjectPath,
		TaskText:      blog.Task,
		PomodoroIndex: 1,
	}, records[0])

	raw, err := os.ReadFile(notePath)
	require.NoError(t, err)
	require.Contains(t, string(raw), "1. [[1. 项目/Blog/Blog.README.md|Blog]] 0hr56\n\n0hr56\n")
	require.Contains(t, string(raw), "- [x] 使用番茄钟 ✅ 2026-03-14")

	require.Equal(t, []platform.NotificationKind{platform.NotifyPomodoroComplete}, h.notifier.kinds())
	require.True(t, h.notifier.sent[0].Sound)

	require.Len(t, h.journal.entries, 1)
	require.Equal(t, outcome.Record.ID, h.journal.entries[0].ID)
	require.True(t, h.journal.entries[0].Recorded)
	require.Empty(t, h.journal.entries[0].SyncError)
}

func TestController_CompletePomodoroCountsAtLeastOneMinute(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.StartPomodoro(timer.Labels{})
	h.clock.Advance(20 * time.Second)
	h.controller.Pause()

	outcome, err := h.controller.CompletePomodoro(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Record.Duration)
	require.False(t, outcome.NoteUpdated)
}

func TestController_CompletePomodoroRequiresPomodoro(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.controller.CompletePomodoro(context.Background())
	require.ErrorIs(t, err, ErrNoPomodoro)

	h.controller.StartStopwatch(timer.Labels{})
	_, err = h.controller.CompletePomodoro(context.Background())
	require.ErrorIs(t, err, ErrNoPomodoro)
	require.Empty(t, h.notifier.kinds())
}

func TestController_StopBeforeTargetIsInterrupted(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.StartPomodoro(blog)
	h.clock.Advance(10 * time.Minute)

	outcome, err := h.controller.Stop(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.Recorded)
	require.Equal(t, timer.PhaseIdle, h.engine.Phase())
	require.Zero(t, h.engine.PomodoroCount())

	records := h.records(t)
	require.Len(t, records, 1)
	require.Equal(t, vault.StatusInterrupted, records[0].Status)
	require.Equal(t, 10, records[0].Duration)
	require.Equal(t, 1, records[0].PomodoroIndex)

	stats, err := h.controller.TodayStats()
	require.NoError(t, err)
	require.Equal(t, TodayStats{TotalMinutes: 10, PomodoroCount: 0}, stats)
	require.Empty(t, h.notifier.kinds())
}

func TestController_StopPomodoroInOvertimeIsCompleted(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.StartPomodoro(timer.Labels{})
	h.clock.Advance(31 * time.Minute)

	outcome, err := h.controller.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, vault.StatusCompleted, outcome.Record.Status)
	require.Equal(t, 31, outcome.Record.Duration)
}

func TestController_StopShortStopwatchIsDiscarded(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.StartStopwatch(blog)
	h.clock.Advance(45 * time.Second)

	outcome, err := h.controller.Stop(context.Background())
	require.NoError(t, err)
	require.Nil(t, outcome.Record)
	require.Empty(t, h.records(t))
	require.Empty(t, h.journal.entries)
	require.Empty(t, h.notifier.kinds())
}

func TestController_StopStopwatchRecordsAndNotifies(t *testing.T) {
	h := newHarness(t, nil)
	notePath := h.writeDailyNote(t)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.StartStopwatch(blog)
	h.clock.Advance(12 * time.Minute)

	outcome, err := h.controller.Stop(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.NoteUpdated)
	require.Equal(t, vault.ModeStopwatch, outcome.Record.Mode)
	require.Zero(t, outcome.Record.PomodoroIndex)

	raw, err := os.ReadFile(notePath)
	require.NoError(t, err)
	require.Contains(t, string(raw), "Blog]] 0hr42")

	require.Len(t, h.notifier.sent, 1)
	require.Equal(t, platform.StopwatchStopped(12).Body, h.notifier.sent[0].Body)
}

func TestController_StopIdleDoesNothing(t *testing.T) {
	h := newHarness(t, nil)
	outcome, err := h.controller.Stop(context.Background())
	require.NoError(t, err)
	require.Nil(t, outcome.Record)
	require.Empty(t, h.journal.entries)
}

func TestController_WithoutVaultStillJournals(t *testing.T) {
	h := newHarness(t, nil)

	h.controller.StartPomodoro(blog)
	h.clock.Advance(25 * time.Minute)
	outcome, err := h.controller.CompletePomodoro(context.Background())
	require.NoError(t, err)
	require.False(t, outcome.Recorded)
	require.Len(t, h.journal.entries, 1)
	require.Empty(t, h.journal.entries[0].VaultPath)

	_, err = h.controller.ScanProjects()
	require.ErrorIs(t, err, ErrVaultNotConfigured)
	_, err = h.controller.ScanTasks()
	require.ErrorIs(t, err, ErrVaultNotConfigured)
	_, err = h.controller.TodayStats()
	require.ErrorIs(t, err, ErrVaultNotConfigured)
}

func TestController_NoteConflictDoesNotUndoTimer(t *testing.T) {
	h := newHarness(t, func(options *Options) {
		options.Notes = conflictingNotes{}
	})
	h.writeDailyNote(t)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.StartPomodoro(blog)
	h.clock.Advance(25 * time.Minute)

	outcome, err := h.controller.CompletePomodoro(context.Background())
	require.ErrorIs(t, err, vault.ErrConflict)
	require.True(t, outcome.Recorded)
	require.True(t, outcome.HabitChecked)
	require.False(t, outcome.NoteUpdated)
	require.Equal(t, timer.PhaseShortBreak, h.engine.Phase())
	require.Len(t, h.records(t), 1)
	require.Contains(t, h.journal.entries[0].SyncError, "daily note")
}

func TestController_RecordFailureStillUpdatesNote(t *testing.T) {
	h := newHarness(t, nil)
	notePath := h.writeDailyNote(t)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)
	h.writeFile(t, ".obsidian/plugins/lifeos-pro/storage/pomodoro-records-Notes.device-a.json", "{broken")

	h.controller.StartPomodoro(blog)
	h.clock.Advance(25 * time.Minute)

	outcome, err := h.controller.CompletePomodoro(context.Background())
	require.Error(t, err)
	require.False(t, outcome.Recorded)
	require.True(t, outcome.NoteUpdated)

	raw, err := os.ReadFile(notePath)
	require.NoError(t, err)
	require.Contains(t, string(raw), "Blog]] 0hr55")
}

func TestController_SetVaultPath(t *testing.T) {
	h := newHarness(t, nil)
	h.writeFile(t, ".obsidian/plugins/lifeos-pro/data.json",
		`{"pomodoroDuration": 50, "longBreakInterval": 2, "autoStartBreak": true, "pomodoroSound": false}`)

	config, err := h.controller.SetVaultPath(h.root + string(filepath.Separator))
	require.NoError(t, err)
	require.Equal(t, 50, config.PomodoroDuration)
	require.Equal(t, h.root, h.controller.VaultPath())
	require.Equal(t, config, h.controller.Config())
	require.Equal(t, 50, h.engine.Config().PomodoroMinutes)
	require.Equal(t, 2, h.engine.Config().LongBreakInterval)
	require.Equal(t, h.root, h.settings.settings.VaultPath)

	restarted := NewController(timer.New(model.DefaultTimerConfig(), timer.Options{Clock: h.clock}), Options{Settings: h.settings})
	settings, err := restarted.LoadSettings()
	require.NoError(t, err)
	require.Equal(t, h.root, settings.VaultPath)
	require.Equal(t, h.root, restarted.VaultPath())
	require.True(t, restarted.Config().AutoStartBreak)
}

func TestController_SetVaultPathRejectsInvalidVault(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.controller.SetVaultPath(t.TempDir())
	require.ErrorIs(t, err, vault.ErrInvalidVault)
	require.Empty(t, h.controller.VaultPath())
	require.Zero(t, h.settings.saves)
	require.Equal(t, model.DefaultPomodoroConfig(), h.controller.Config())
}

func TestController_LoadSettingsWithStaleVault(t *testing.T) {
	h := newHarness(t, nil)
	h.settings.settings.VaultPath = filepath.Join(t.TempDir(), "gone")

	_, err := h.controller.LoadSettings()
	require.ErrorIs(t, err, vault.ErrInvalidVault)
	require.Empty(t, h.controller.VaultPath())
}

func TestController_HandleEvent(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.StartPomodoro(timer.Labels{})
	h.clock.Advance(25 * time.Minute)
	h.controller.HandleEvent(context.Background(), timer.Event{Type: timer.EventPomodoroComplete})
	require.Equal(t, timer.PhaseRunning, h.engine.Phase(), "without autoStartBreak the pomodoro runs into overtime")
	require.Equal(t, []platform.NotificationKind{platform.NotifyPomodoroDue}, h.notifier.kinds())

	h.writeFile(t, ".obsidian/plugins/lifeos-pro/data.json", `{"autoStartBreak": true}`)
	_, err = h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	h.controller.HandleEvent(context.Background(), timer.Event{Type: timer.EventPomodoroComplete})
	require.Equal(t, timer.PhaseShortBreak, h.engine.Phase())
	require.Len(t, h.records(t), 1)

	h.clock.Advance(5 * time.Minute)
	h.controller.HandleEvent(context.Background(), timer.Event{Type: timer.EventBreakComplete})
	require.Equal(t, timer.PhaseIdle, h.engine.Phase())
	require.Equal(t, []platform.NotificationKind{
		platform.NotifyPomodoroDue,
		platform.NotifyPomodoroComplete,
		platform.NotifyBreakComplete,
	}, h.notifier.kinds())

	require.False(t, h.controller.CompleteBreak())
}

func TestController_TodayStatsAcrossDevices(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	other := vault.RecordsFilePath(h.root, "device-b")
	require.NoError(t, vault.AppendRecord(other, vault.Record{ID: "1", Date: "2026-03-14", Duration: 25, Mode: vault.ModePomodoro, Status: vault.StatusCompleted}))
	require.NoError(t, vault.AppendRecord(other, vault.Record{ID: "2", Date: "2026-03-14", Duration: 40, Mode: vault.ModeStopwatch, Status: vault.StatusCompleted}))
	require.NoError(t, vault.AppendRecord(other, vault.Record{ID: "3", Date: "2026-03-13", Duration: 25, Mode: vault.ModePomodoro, Status: vault.StatusCompleted}))

	h.controller.StartPomodoro(timer.Labels{})
	h.clock.Advance(30 * time.Minute)
	_, err = h.controller.CompletePomodoro(context.Background())
	require.NoError(t, err)

	stats, err := h.controller.TodayStats()
	require.NoError(t, err)
	require.Equal(t, TodayStats{TotalMinutes: 95, PomodoroCount: 2}, stats)
}

func TestController_ScanProjects(t *testing.T) {
	h := newHarness(t, nil)
	h.writeFile(t, "1. 项目/Blog/Blog.README.md", "# Blog")
	_, err := h.controller.SetVaultPath(h.root)
	require.NoError(t, err)

	projects, err := h.controller.ScanProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "1. 项目/Blog/Blog.README.md", projects[0].ReadmePath)
}

func TestController_Autostart(t *testing.T) {
	autostart := &fakeAutostart{}
	h := newHarness(t, func(options *Options) {
		options.Autostart = autostart
	})

	require.NoError(t, h.controller.SetAutostart(true))
	enabled, err := h.controller.AutostartEnabled()
	require.NoError(t, err)
	require.True(t, enabled)
	require.True(t, h.settings.settings.Autostart)

	require.NoError(t, h.controller.SetAutostart(false))
	require.False(t, autostart.enabled)
	require.False(t, h.settings.settings.Autostart)

	bare := newHarness(t, nil)
	require.True(t, errors.Is(bare.controller.SetAutostart(true), ErrAutostartUnavailable))
}
