// Package session turns user commands into timer transitions and writes
// finished sessions to the vault.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tomatobar/internal/core/model"
	"tomatobar/internal/core/timer"
	"tomatobar/internal/journal"
	"tomatobar/internal/platform"
	"tomatobar/internal/vault"
)

// SettingsStore persists app settings.
type SettingsStore interface {
	LoadSettings() (model.AppSettings, error)
	SaveSettings(settings model.AppSettings) error
}

// Journal stores finished sessions locally.
type Journal interface {
	Append(ctx context.Context, entry journal.Entry) error
}

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(notification platform.Notification) error
}

// Autostart registers the app to start at login.
type Autostart interface {
	EnableAutostart() error
	DisableAutostart() error
	AutostartEnabled() (bool, error)
}

// NoteSync merges session time into daily notes.
type NoteSync interface {
	UpdateProjectTime(root string, date time.Time, projectPath, displayName string, minutes int) (bool, error)
}

// Options wires the Controller's collaborators. Nil collaborators are skipped.
type Options struct {
	DeviceID  string
	Settings  SettingsStore
	Journal   Journal
	Notifier  Notifier
	Autostart Autostart
	Notes     NoteSync
	Logger    *slog.Logger
	Now       func() time.Time
}

// Outcome reports what a finished session wrote.
type Outcome struct {
	// Record is nil when the session was too short to keep.
	Record       *vault.Record
	Recorded     bool
	NoteUpdated  bool
	HabitChecked bool
}

// TodayStats summarizes today's records across every device.
type TodayStats struct {
	TotalMinutes  int
	PomodoroCount int
}

// Controller orchestrates the timer engine and the vault.
//
// Engine calls return copies taken under the engine lock, and every file
// write happens afterwards, so a slow vault never stalls the tick loop. A
// failed write never undoes the timer transition that preceded it.
type Controller struct {
	engine  *timer.Engine
	options Options
	logger  *slog.Logger
	notes   NoteSync

	mu        sync.RWMutex
	vaultPath string
	config    model.PomodoroConfig
}

// NewController creates a Controller without a vault.
func NewController(engine *timer.Engine, options Options) *Controller {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	notes := options.Notes
	if notes == nil {
		notes = vault.NewDailyNotes(logger)
	}
	return &Controller{
		engine:  engine,
		options: options,
		logger:  logger,
		notes:   notes,
		config:  model.DefaultPomodoroConfig(),
	}
}

// StartPomodoro begins a pomodoro attributed to labels.
func (controller *Controller) StartPomodoro(labels timer.Labels) {
	controller.engine.StartPomodoro(labels)
	controller.logger.Info("pomodoro started", "project", labels.Project, "task", labels.Task)
}

// StartStopwatch begins an open-ended session attributed to labels.
func (controller *Controller) StartStopwatch(labels timer.Labels) {
	controller.engine.StartStopwatch(labels)
	controller.logger.Info("stopwatch started", "project", labels.Project, "task", labels.Task)
}

// Pause freezes the running session.
func (controller *Controller) Pause() {
	controller.engine.Pause()
}

// Resume continues a paused session.
func (controller *Controller) Resume() {
	controller.engine.Resume()
}

// SkipBreak ends a break without a notification.
func (controller *Controller) SkipBreak() {
	controller.engine.SkipBreak()
}

// Status returns the current timer state.
func (controller *Controller) Status() timer.Status {
	return controller.engine.Status()
}

// Stop ends the current session and records it when it ran for at least a
// minute or was a pomodoro. A pomodoro stopped before its target is recorded
// as interrupted.
func (controller *Controller) Stop(ctx context.Context) (Outcome, error) {
	snapshot := controller.engine.Stop()
	if !snapshot.Phase.IsActive() {
		return Outcome{}, nil
	}

	minutes := snapshot.Minutes()
	if minutes == 0 && snapshot.Mode != timer.ModePomodoro {
		return Outcome{}, nil
	}

	status := vault.StatusCompleted
	if snapshot.Mode == timer.ModePomodoro && snapshot.Elapsed < snapshot.Target {
		status = vault.StatusInterrupted
	}
	outcome, err := controller.finish(ctx, snapshot, minutes, status)

	if snapshot.Mode == timer.ModeStopwatch {
		controller.notify(platform.StopwatchStopped(minutes))
	}
	return outcome, err
}

// CompletePomodoro counts the current pomodoro, starts the following break
// and records the pomodoro with at least one minute.
func (controller *Controller) CompletePomodoro(ctx context.Context) (Outcome, error) {
	snapshot, ok := controller.engine.CompletePomodoro()
	if !ok {
		return Outcome{}, ErrNoPomodoro
	}

	outcome, err := controller.finish(ctx, snapshot, max(1, snapshot.Minutes()), vault.StatusCompleted)
	controller.notify(platform.PomodoroComplete())
	return outcome, err
}

// CompleteBreak ends the current break and reports whether one was active.
func (controller *Controller) CompleteBreak() bool {
	if !controller.engine.CompleteBreak() {
		return false
	}
	controller.notify(platform.BreakComplete())
	return true
}

// HandleEvent reacts to scheduler completion events. A finished pomodoro is
// completed automatically only when the vault enables autoStartBreak;
// otherwise it keeps running into overtime.
func (controller *Controller) HandleEvent(ctx context.Context, event timer.Event) {
	switch event.Type {
	case timer.EventPomodoroComplete:
		if !controller.Config().AutoStartBreak {
			controller.notify(platform.PomodoroDue())
			return
		}
		if _, err := controller.CompletePomodoro(ctx); err != nil && !errors.Is(err, ErrNoPomodoro) {
			controller.logger.Warn("auto-complete pomodoro", "error", err)
		}
	case timer.EventBreakComplete:
		controller.CompleteBreak()
	}
}

// finish writes a session snapshot to the vault and the journal. The
// record append, note update and habit check are independent: each runs
// even if an earlier one failed.
func (controller *Controller) finish(ctx context.Context, snapshot timer.Snapshot, minutes int, status string) (Outcome, error) {
	now := controller.options.Now()
	record := vault.Record{
		ID:          uuid.NewString(),
		Date:        vault.FormatDate(now),
		EndTime:     now.UnixMilli(),
		Duration:    minutes,
		Mode:        string(snapshot.Mode),
		Status:      status,
		ProjectPath: snapshot.Labels.ProjectPath,
		TaskText:    snapshot.Labels.Task,
	}
	if !snapshot.StartedAt.IsZero() {
		record.StartTime = snapshot.StartedAt.UnixMilli()
	}
	if snapshot.Mode == timer.ModePomodoro {
		record.PomodoroIndex = snapshot.PomodoroIndex
	}

	outcome := Outcome{Record: &record}
	var errs []error

	root := controller.VaultPath()
	if root != "" {
		recordsPath := vault.RecordsFilePath(root, controller.options.DeviceID)
		if err := vault.AppendRecord(recordsPath, record); err != nil {
			errs = append(errs, fmt.Errorf("append record: %w", err))
		} else {
			outcome.Recorded = true
		}

		labels := snapshot.Labels
		if labels.ProjectPath != "" && labels.Project != "" && minutes > 0 {
			updated, err := controller.notes.UpdateProjectTime(root, now, labels.ProjectPath, labels.Project, minutes)
			if err != nil {
				errs = append(errs, fmt.Errorf("update daily note: %w", err))
			}
			outcome.NoteUpdated = updated
		}

		checked, err := vault.CheckHabit(root, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("check habit: %w", err))
		}
		outcome.HabitChecked = checked
	}

	syncErr := errors.Join(errs...)
	if controller.options.Journal != nil {
		entry := journal.Entry{
			ID:            record.ID,
			VaultPath:     root,
			Date:          record.Date,
			StartedAt:     snapshot.StartedAt,
			EndedAt:       now,
			Minutes:       minutes,
			Mode:          record.Mode,
			Status:        status,
			ProjectPath:   record.ProjectPath,
			TaskText:      record.TaskText,
			PomodoroIndex: record.PomodoroIndex,
			Recorded:      outcome.Recorded,
			NoteUpdated:   outcome.NoteUpdated,
			HabitChecked:  outcome.HabitChecked,
		}
		if syncErr != nil {
			entry.SyncError = syncErr.Error()
		}
		if err := controller.options.Journal.Append(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("journal session: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		controller.logger.Warn("session saved with errors", "id", record.ID, "mode", record.Mode, "minutes", minutes, "error", err)
	} else {
		controller.logger.Info("session saved", "id", record.ID, "mode", record.Mode, "status", status, "minutes", minutes,
			"recorded", outcome.Recorded, "note_updated", outcome.NoteUpdated, "habit_checked", outcome.HabitChecked)
	}
	return outcome, err
}

func (controller *Controller) notify(notification platform.Notification) {
	if controller.options.Notifier == nil {
		return
	}
	notification.Sound = controller.Config().PomodoroSound
	if err := controller.options.Notifier.Notify(notification); err != nil {
		controller.logger.Warn("send notification", "kind", notification.Kind, "error", err)
	}
}

// LoadSettings restores the persisted vault at startup. An unusable saved
// vault is logged and left unconfigured.
func (controller *Controller) LoadSettings() (model.AppSettings, error) {
	if controller.options.Settings == nil {
		return model.DefaultAppSettings(), nil
	}
	settings, err := controller.options.Settings.LoadSettings()
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	if settings.VaultPath == "" {
		return settings, nil
	}
	if _, err := controller.useVault(settings.VaultPath); err != nil {
		controller.logger.Warn("saved vault unusable", "path", settings.VaultPath, "error", err)
		return settings, err
	}
	return settings, nil
}

// UseVault points the controller at root for this process only, without
// persisting it.
func (controller *Controller) UseVault(root string) (model.PomodoroConfig, error) {
	return controller.useVault(root)
}

// SetVaultPath validates root, loads its configuration and persists it.
func (controller *Controller) SetVaultPath(root string) (model.PomodoroConfig, error) {
	root, config, err := loadVault(root)
	if err != nil {
		return model.PomodoroConfig{}, err
	}

	if controller.options.Settings != nil {
		settings, err := controller.options.Settings.LoadSettings()
		if err != nil {
			return config, fmt.Errorf("load settings: %w", err)
		}
		settings.VaultPath = root
		if err := controller.options.Settings.SaveSettings(settings); err != nil {
			return config, fmt.Errorf("save settings: %w", err)
		}
	}

	controller.apply(root, config)
	return config, nil
}

func (controller *Controller) useVault(root string) (model.PomodoroConfig, error) {
	root, config, err := loadVault(root)
	if err != nil {
		return model.PomodoroConfig{}, err
	}
	controller.apply(root, config)
	return config, nil
}

func loadVault(root string) (string, model.PomodoroConfig, error) {
	root = strings.TrimSpace(root)
	if root != "" {
		root = filepath.Clean(root)
	}
	if err := vault.ValidateVault(root); err != nil {
		return "", model.PomodoroConfig{}, err
	}
	config, err := vault.ReadConfig(root)
	if err != nil {
		return "", model.PomodoroConfig{}, err
	}
	return root, config, nil
}

func (controller *Controller) apply(root string, config model.PomodoroConfig) {
	controller.engine.UpdateConfig(config.TimerConfig())

	controller.mu.Lock()
	controller.vaultPath = root
	controller.config = config
	controller.mu.Unlock()

	controller.logger.Info("vault configured", "path", root, "pomodoro_minutes", config.PomodoroDuration,
		"long_break_interval", config.LongBreakInterval)
}

// VaultPath returns the configured vault, or "" when none is set.
func (controller *Controller) VaultPath() string {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.vaultPath
}

// Config returns the active vault configuration.
func (controller *Controller) Config() model.PomodoroConfig {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.config
}

func (controller *Controller) requireVault() (string, error) {
	root := controller.VaultPath()
	if root == "" {
		return "", ErrVaultNotConfigured
	}
	return root, nil
}

// ScanProjects lists the vault's project folders.
func (controller *Controller) ScanProjects() ([]vault.Project, error) {
	root, err := controller.requireVault()
	if err != nil {
		return nil, err
	}
	return vault.ScanProjects(root)
}

// ScanTasks lists open checklist items in the vault.
func (controller *Controller) ScanTasks() ([]vault.Task, error) {
	root, err := controller.requireVault()
	if err != nil {
		return nil, err
	}
	return vault.ScanTasks(root)
}

// TodayStats totals today's minutes and completed pomodoros.
func (controller *Controller) TodayStats() (TodayStats, error) {
	root, err := controller.requireVault()
	if err != nil {
		return TodayStats{}, err
	}
	records, err := vault.ReadAllRecords(root)
	if err != nil {
		return TodayStats{}, err
	}

	today := vault.FormatDate(controller.options.Now())
	var stats TodayStats
	for _, record := range records {
		if record.Date != today {
			continue
		}
		stats.TotalMinutes += record.Duration
		if record.Mode == vault.ModePomodoro && record.Status != vault.StatusInterrupted {
			stats.PomodoroCount++
		}
	}
	return stats, nil
}

// SetAutostart registers or removes the login item and saves the choice.
func (controller *Controller) SetAutostart(enabled bool) error {
	if controller.options.Autostart == nil {
		return ErrAutostartUnavailable
	}
	if enabled {
		if err := controller.options.Autostart.EnableAutostart(); err != nil {
			return err
		}
	} else if err := controller.options.Autostart.DisableAutostart(); err != nil {
		return err
	}

	if controller.options.Settings == nil {
		return nil
	}
	settings, err := controller.options.Settings.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings.Autostart = enabled
	if err := controller.options.Settings.SaveSettings(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// AutostartEnabled reports whether the login item is registered.
func (controller *Controller) AutostartEnabled() (bool, error) {
	if controller.options.Autostart == nil {
		return false, ErrAutostartUnavailable
	}
	return controller.options.Autostart.AutostartEnabled()
}
