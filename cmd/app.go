package main

import (
	"context"
	"errors"
	"time"

	"tomatobar/internal/core/model"
	"tomatobar/internal/core/timer"
	"tomatobar/internal/platform"
	"tomatobar/internal/session"
	"tomatobar/internal/ui/notify"
	"tomatobar/internal/ui/preferences"
	"tomatobar/internal/ui/tray"
	"tomatobar/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const quitTimeout = 10 * time.Second

var errTrayUnsupported = errors.New("system tray unsupported on this platform")

func runTray(cmd *cobra.Command, v *viper.Viper) error {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			_ = platform.ActivateRunning(appName)
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.tomatobar.app")
	fyneApp.SetIcon(resources.MustIcon(resources.IconActive))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errTrayUnsupported
	}

	env, err := loadEnvironment(v, cmd.ErrOrStderr(), environmentOptions{
		openJournal: true,
		notifier:    notify.New(fyneApp, nil),
	})
	if err != nil {
		return err
	}
	defer env.Close()

	controller := env.controller
	logger := env.logger
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	trayWindow := fyneApp.NewWindow(appName)
	trayWindow.SetContent(widget.NewLabel("tomatobar is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	var trayManager *tray.Manager

	refreshToday := func() {
		stats, err := controller.TodayStats()
		if err != nil {
			if !errors.Is(err, session.ErrVaultNotConfigured) {
				logger.Warn("read today stats", "error", err)
			}
			return
		}
		fyne.Do(func() {
			trayManager.SetToday(stats.TotalMinutes, stats.PomodoroCount)
		})
	}
	refreshProjects := func() {
		projects, err := controller.ScanProjects()
		if err != nil && !errors.Is(err, session.ErrVaultNotConfigured) {
			logger.Warn("scan projects", "error", err)
		}
		fyne.Do(func() {
			trayManager.SetProjects(projects)
		})
	}
	refreshStatus := func() {
		trayManager.Update(env.engine.Tick())
	}
	var writes pendingWrites
	// finish runs a recording action off the UI goroutine.
	finish := func(name string, action func(context.Context) (session.Outcome, error)) {
		writes.Go(func() {
			if _, err := action(ctx); err != nil && !errors.Is(err, session.ErrNoPomodoro) {
				logger.Warn(name, "error", err)
			}
			fyne.Do(refreshStatus)
			refreshToday()
		})
	}

	settings, err := env.settings.LoadSettings()
	if err != nil {
		logger.Warn("load settings", "error", err)
	}
	current := preferences.FromAppSettings(settings)
	current.VaultPath = controller.VaultPath()
	prefsWindow := preferences.New(fyneApp, current, controller.Config(), func(updated preferences.Settings) (model.PomodoroConfig, error) {
		vaultChanged, autostartChanged := updated.Changed(current)
		if vaultChanged {
			if _, err := controller.SetVaultPath(updated.VaultPath); err != nil {
				return controller.Config(), err
			}
		}
		if autostartChanged {
			if err := controller.SetAutostart(updated.Autostart); err != nil {
				return controller.Config(), err
			}
		}
		current = updated
		current.VaultPath = controller.VaultPath()
		go func() {
			refreshProjects()
			refreshToday()
		}()
		return controller.Config(), nil
	})

	scheduler := timer.NewScheduler(env.engine, timer.SchedulerConfig{
		TickInterval: time.Second,
		Logger:       logger,
	})

	trayManager = tray.New(desktopApp, tray.Icons{
		Idle:   resources.MustIcon(resources.IconIdle),
		Active: resources.MustIcon(resources.IconActive),
		Paused: resources.MustIcon(resources.IconPaused),
		Break:  resources.MustIcon(resources.IconBreak),
	}, tray.Callbacks{
		OnStartPomodoro: func(labels timer.Labels) {
			controller.StartPomodoro(labels)
			refreshStatus()
		},
		OnStartStopwatch: func(labels timer.Labels) {
			controller.StartStopwatch(labels)
			refreshStatus()
		},
		OnTogglePause: func() {
			if controller.Status().Phase == timer.PhasePaused {
				controller.Resume()
			} else {
				controller.Pause()
			}
			refreshStatus()
		},
		OnComplete: func() {
			finish("complete pomodoro", controller.CompletePomodoro)
		},
		OnStop: func() {
			finish("stop session", controller.Stop)
		},
		OnSkipBreak: func() {
			controller.SkipBreak()
			refreshStatus()
		},
		OnRefresh: func() {
			go func() {
				refreshProjects()
				refreshToday()
			}()
		},
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnQuit: func() {
			go func() {
				scheduler.Stop()
				if controller.Status().Phase.IsActive() {
					if _, err := controller.Stop(ctx); err != nil {
						logger.Warn("stop session on quit", "error", err)
					}
				}
				if !writes.Wait(quitTimeout) {
					logger.Warn("quit before vault writes finished", "timeout", quitTimeout)
				}
				fyne.Do(fyneApp.Quit)
			}()
		},
	})

	scheduler.Observe(func(event timer.Event) {
		if event.Type == timer.EventTick {
			return
		}
		writes.Go(func() {
			controller.HandleEvent(ctx, event)
			fyne.Do(refreshStatus)
			refreshToday()
		})
	})
	events := scheduler.Subscribe(8)
	go func() {
		for event := range events {
			if event.Type != timer.EventTick {
				continue
			}
			fyne.Do(func() {
				trayManager.Update(event)
			})
		}
	}()

	go func() {
		refreshProjects()
		refreshToday()
	}()
	scheduler.Start()
	defer scheduler.Stop()

	guard.OnActivate(func() {
		fyne.Do(prefsWindow.Show)
	})
	if controller.VaultPath() == "" {
		prefsWindow.Show()
	}
	logger.Info("tray started", "vault", controller.VaultPath())
	fyneApp.Run()
	return nil
}
