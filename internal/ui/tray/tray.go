package tray

import (
	"fmt"

	"tomatobar/internal/core/timefmt"
	"tomatobar/internal/core/timer"
	"tomatobar/internal/vault"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/systray"
)

const menuTitle = "tomatobar"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStartPomodoro  func(timer.Labels)
	OnStartStopwatch func(timer.Labels)
	OnTogglePause    func()
	OnComplete       func()
	OnStop           func()
	OnSkipBreak      func()
	OnRefresh        func()
	OnPreferences    func()
	OnQuit           func()
}

// Icons are the tray icons shown per phase.
type Icons struct {
	Idle   fyne.Resource
	Active fyne.Resource
	Paused fyne.Resource
	Break  fyne.Resource
}

// Manager handles system tray state. All methods must run on the Fyne
// main goroutine.
type Manager struct {
	app       desktop.App
	callbacks Callbacks
	icons     Icons

	statusItem    *fyne.MenuItem
	todayItem     *fyne.MenuItem
	pomodoroItem  *fyne.MenuItem
	stopwatchItem *fyne.MenuItem
	pauseItem     *fyne.MenuItem
	completeItem  *fyne.MenuItem
	stopItem      *fyne.MenuItem
	skipItem      *fyne.MenuItem

	projects []vault.Project
	phase    timer.Phase
	icon     fyne.Resource
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		icons:     icons,
		phase:     timer.PhaseIdle,
	}

	manager.statusItem = fyne.NewMenuItem("Idle", nil)
	manager.statusItem.Disabled = true
	manager.todayItem = fyne.NewMenuItem(todayLine(0, 0), nil)
	manager.todayItem.Disabled = true

	manager.pomodoroItem = fyne.NewMenuItem("Start pomodoro", func() {
		call(manager.callbacks.OnStartPomodoro, timer.Labels{})
	})
	manager.stopwatchItem = fyne.NewMenuItem("Start stopwatch", func() {
		call(manager.callbacks.OnStartStopwatch, timer.Labels{})
	})
	manager.pauseItem = fyne.NewMenuItem("Pause", func() {
		run(manager.callbacks.OnTogglePause)
	})
	manager.completeItem = fyne.NewMenuItem("Complete pomodoro", func() {
		run(manager.callbacks.OnComplete)
	})
	manager.stopItem = fyne.NewMenuItem("Stop", func() {
		run(manager.callbacks.OnStop)
	})
	manager.skipItem = fyne.NewMenuItem("Skip break", func() {
		run(manager.callbacks.OnSkipBreak)
	})

	manager.applyPhase(timer.PhaseIdle, timer.ModePomodoro)
	manager.refreshMenu()
	return manager
}

// SetProjects replaces the project submenus of the start items.
func (manager *Manager) SetProjects(projects []vault.Project) {
	manager.projects = projects
	manager.pomodoroItem.ChildMenu = manager.projectMenu(manager.callbacks.OnStartPomodoro)
	manager.stopwatchItem.ChildMenu = manager.projectMenu(manager.callbacks.OnStartStopwatch)
	manager.refreshMenu()
}

// SetToday updates the line with today's totals.
func (manager *Manager) SetToday(minutes, pomodoros int) {
	manager.todayItem.Label = todayLine(minutes, pomodoros)
	manager.refreshMenu()
}

// Update reflects a scheduler event in the menu and tray title.
func (manager *Manager) Update(event timer.Event) {
	title := ""
	if event.Phase != timer.PhaseIdle {
		title = event.Display
	}
	systray.SetTitle(title)
	systray.SetTooltip(statusLine(event))

	manager.statusItem.Label = statusLine(event)
	if event.Phase == manager.phase {
		manager.refreshMenu()
		return
	}
	manager.applyPhase(event.Phase, event.Mode)
	manager.refreshMenu()
}

func (manager *Manager) applyPhase(phase timer.Phase, mode timer.Mode) {
	manager.phase = phase

	manager.pomodoroItem.Disabled = phase.IsActive()
	manager.stopwatchItem.Disabled = phase.IsActive()
	manager.pauseItem.Disabled = !phase.IsActive()
	manager.stopItem.Disabled = !phase.IsActive()
	manager.completeItem.Disabled = !phase.IsActive() || mode != timer.ModePomodoro
	manager.skipItem.Disabled = !phase.IsBreak()

	if phase == timer.PhasePaused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}

	icon := manager.iconFor(phase)
	if icon != nil && icon != manager.icon && manager.app != nil {
		manager.icon = icon
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) iconFor(phase timer.Phase) fyne.Resource {
	switch {
	case phase == timer.PhaseRunning:
		return manager.icons.Active
	case phase == timer.PhasePaused:
		return manager.icons.Paused
	case phase.IsBreak():
		return manager.icons.Break
	default:
		return manager.icons.Idle
	}
}

func (manager *Manager) projectMenu(start func(timer.Labels)) *fyne.Menu {
	if len(manager.projects) == 0 {
		return nil
	}
	items := []*fyne.MenuItem{
		fyne.NewMenuItem("No project", func() { call(start, timer.Labels{}) }),
		fyne.NewMenuItemSeparator(),
	}
	for _, project := range manager.projects {
		labels := projectLabels(project)
		items = append(items, fyne.NewMenuItem(project.DisplayName, func() {
			call(start, labels)
		}))
	}
	return fyne.NewMenu("", items...)
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu(menuTitle,
		manager.statusItem,
		manager.todayItem,
		fyne.NewMenuItemSeparator(),
		manager.pomodoroItem,
		manager.stopwatchItem,
		manager.pauseItem,
		manager.completeItem,
		manager.stopItem,
		manager.skipItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Refresh projects", func() {
			run(manager.callbacks.OnRefresh)
		}),
		fyne.NewMenuItem("Preferences", func() {
			run(manager.callbacks.OnPreferences)
		}),
		fyne.NewMenuItem("Quit", func() {
			run(manager.callbacks.OnQuit)
		}),
	))
}

func projectLabels(project vault.Project) timer.Labels {
	return timer.Labels{
		Project:     project.DisplayName,
		ProjectPath: project.ReadmePath,
	}
}

func statusLine(event timer.Event) string {
	switch {
	case event.Phase == timer.PhaseIdle:
		return "Idle"
	case event.Phase.IsBreak():
		return fmt.Sprintf("Break %s", event.Display)
	case event.Mode == timer.ModeStopwatch:
		return fmt.Sprintf("Stopwatch %s", event.Display)
	case event.Overtime > 0:
		return fmt.Sprintf("Pomodoro %s overtime", event.Display)
	default:
		return fmt.Sprintf("Pomodoro %s", event.Display)
	}
}

func todayLine(minutes, pomodoros int) string {
	return fmt.Sprintf("Today: %s · 🍅 %d", timefmt.Format(minutes), pomodoros)
}

func run(callback func()) {
	if callback != nil {
		callback()
	}
}

func call(callback func(timer.Labels), labels timer.Labels) {
	if callback != nil {
		callback(labels)
	}
}
