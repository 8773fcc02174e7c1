// Package vault reads and writes the files a lifeos-pro vault shares with
// its Obsidian plugin: plugin settings, session records and daily notes.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DateLayout is the calendar-day format used in record dates and note names.
	DateLayout = "2006-01-02"

	ProjectsDir = "1. 项目"
	PeriodicDir = "0. 周期笔记"
	AreasDir    = "2. 领域"

	pluginName     = "lifeos-pro"
	configFileName = "data.json"
	storageDirName = "storage"
	recordsPrefix  = "pomodoro-records-"
)

// PluginDir returns the plugin directory whose presence marks a valid vault.
func PluginDir(root string) string {
	return filepath.Join(root, ".obsidian", "plugins", pluginName)
}

// ValidateVault checks that root exists and contains the plugin directory.
func ValidateVault(root string) error {
	if root == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidVault)
	}
	info, err := os.Stat(PluginDir(root))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInvalidVault, root)
		}
		return fmt.Errorf("stat plugin directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidVault, root)
	}
	return nil
}

// FormatDate renders the local calendar day of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DailyNotePath returns <root>/0. 周期笔记/<YYYY>/Daily/<MM>/<YYYY-MM-DD>.md.
func DailyNotePath(root string, date time.Time) string {
	return filepath.Join(
		root,
		PeriodicDir,
		date.Format("2006"),
		"Daily",
		date.Format("01"),
		FormatDate(date)+".md",
	)
}

// RecordsFilePath returns the per-device records file for the vault. The
// vault folder name and device id keep devices sharing a vault apart.
func RecordsFilePath(root, deviceID string) string {
	return filepath.Join(storageDir(root), fmt.Sprintf("%s%s.%s.json", recordsPrefix, vaultName(root), deviceID))
}

func storageDir(root string) string {
	return filepath.Join(PluginDir(root), storageDirName)
}

func vaultName(root string) string {
	name := filepath.Base(filepath.Clean(root))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "vault"
	}
	return name
}
