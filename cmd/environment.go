package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tomatobar/internal/core/model"
	"tomatobar/internal/core/timer"
	"tomatobar/internal/journal"
	"tomatobar/internal/platform"
	"tomatobar/internal/session"
	"tomatobar/internal/storage"

	"github.com/spf13/viper"
)

const (
	keyVault     = "vault"
	keyLogLevel  = "log-level"
	keyConfigDir = "config-dir"
)

// environment holds the services one command invocation works with.
type environment struct {
	logger     *slog.Logger
	configDir  string
	settings   *storage.SettingsStore
	engine     *timer.Engine
	controller *session.Controller
	journal    *journal.Journal
}

type environmentOptions struct {
	openJournal bool
	notifier    session.Notifier
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parsed})), nil
}

func configDir(v *viper.Viper) (string, error) {
	if dir := strings.TrimSpace(v.GetString(keyConfigDir)); dir != "" {
		return dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return dir, nil
}

// loadEnvironment wires the controller, restores the saved vault and applies a
// --vault / TOMATOBAR_VAULT override for this process.
func loadEnvironment(v *viper.Viper, logOutput io.Writer, options environmentOptions) (*environment, error) {
	logger, err := newLogger(logOutput, v.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}
	dir, err := configDir(v)
	if err != nil {
		return nil, err
	}

	env := &environment{
		logger:    logger,
		configDir: dir,
		settings:  storage.NewSettingsStore(dir, appName),
		engine:    timer.New(model.DefaultTimerConfig(), timer.Options{}),
	}

	sessionOptions := session.Options{
		DeviceID:  platform.DeviceID(),
		Settings:  env.settings,
		Notifier:  options.notifier,
		Autostart: platform.NewAutostart(platform.NewService(), appName),
		Logger:    logger,
	}
	if options.openJournal {
		env.journal, err = journal.Open(filepath.Join(dir, appName, "journal.db"))
		if err != nil {
			return nil, err
		}
		sessionOptions.Journal = env.journal
	}
	env.controller = session.NewController(env.engine, sessionOptions)

	override := strings.TrimSpace(v.GetString(keyVault))
	if _, err := env.controller.LoadSettings(); err != nil && override == "" {
		logger.Warn("restore settings", "path", env.settings.Path(), "error", err)
	}
	if override != "" {
		if _, err := env.controller.UseVault(override); err != nil {
			env.Close()
			return nil, fmt.Errorf("use vault: %w", err)
		}
	}
	return env, nil
}

func (env *environment) Close() {
	if env.journal == nil {
		return
	}
	if err := env.journal.Close(); err != nil {
		env.logger.Warn("close journal", "error", err)
	}
}

func (env *environment) requireJournal() (*journal.Journal, error) {
	if env.journal == nil {
		return nil, errors.New("journal not opened")
	}
	return env.journal, nil
}
