package session

import "errors"

var (
	// ErrVaultNotConfigured is returned by vault operations before a vault is set.
	ErrVaultNotConfigured = errors.New("vault not configured")
	// ErrNoPomodoro is returned when completing without a running or paused pomodoro.
	ErrNoPomodoro = errors.New("no pomodoro running")
	// ErrAutostartUnavailable is returned when no autostart service is wired.
	ErrAutostartUnavailable = errors.New("autostart unavailable")
)
