// Package notify delivers timer notifications through the desktop.
package notify

import (
	"log/slog"

	"tomatobar/internal/platform"

	"fyne.io/fyne/v2"
)

// Notifier sends Fyne desktop notifications and plays the alert sound.
type Notifier struct {
	app       fyne.App
	logger    *slog.Logger
	playSound func() error
}

// New creates a Notifier for app.
func New(app fyne.App, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Notifier{
		app:       app,
		logger:    logger,
		playSound: platform.PlaySound,
	}
}

// Notify shows notification and, when requested, plays the alert sound.
func (notifier *Notifier) Notify(notification platform.Notification) error {
	message := fyne.NewNotification(notification.Title, notification.Body)
	fyne.Do(func() {
		notifier.app.SendNotification(message)
	})
	notifier.logger.Debug("notification sent", "kind", notification.Kind)

	if !notification.Sound {
		return nil
	}
	return notifier.playSound()
}
