//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func newService() Service {
	return loginItemFile{path: desktopEntryPath, content: buildDesktopEntry}
}

// desktopEntryPath returns $XDG_CONFIG_HOME/autostart/<name>.desktop.
func desktopEntryPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		homeDir, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("resolve config dir: %w", homeErr)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "autostart", loginItemName(appName)+".desktop"), nil
}

func buildDesktopEntry(appName, execPath string) string {
	if strings.ContainsAny(execPath, " \t") && !strings.HasPrefix(execPath, `"`) {
		execPath = `"` + execPath + `"`
	}

	lines := []string{
		"[Desktop Entry]",
		"Type=Application",
		"Name=" + appName,
		"Comment=Pomodoro timer for lifeos-pro vaults",
		"Exec=" + execPath,
		"Icon=" + loginItemName(appName),
		"Terminal=false",
		"X-GNOME-Autostart-enabled=true",
	}
	return strings.Join(lines, "\n") + "\n"
}
