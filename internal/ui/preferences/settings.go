package preferences

import (
	"fmt"
	"strings"

	"tomatobar/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	VaultPath string
	Autostart bool
}

// FromAppSettings copies the persisted preferences into the form model.
func FromAppSettings(settings model.AppSettings) Settings {
	return Settings{
		VaultPath: settings.VaultPath,
		Autostart: settings.Autostart,
	}
}

// AppSettings converts the form model back to persisted preferences.
func (settings Settings) AppSettings() model.AppSettings {
	return model.AppSettings{
		VaultPath: strings.TrimSpace(settings.VaultPath),
		Autostart: settings.Autostart,
	}
}

// Changed reports which fields differ from previous.
func (settings Settings) Changed(previous Settings) (vault, autostart bool) {
	return strings.TrimSpace(settings.VaultPath) != strings.TrimSpace(previous.VaultPath),
		settings.Autostart != previous.Autostart
}

// describeConfig summarizes the vault's timer configuration for display.
func describeConfig(config model.PomodoroConfig) string {
	lines := []string{
		fmt.Sprintf("Pomodoro: %d min", config.PomodoroDuration),
		fmt.Sprintf("Short break: %d min", config.ShortBreakDuration),
		fmt.Sprintf("Long break: %d min every %d pomodoros", config.LongBreakDuration, config.LongBreakInterval),
		fmt.Sprintf("Auto-start break: %s", onOff(config.AutoStartBreak)),
		fmt.Sprintf("Sound: %s", onOff(config.PomodoroSound)),
	}
	return strings.Join(lines, "\n")
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
