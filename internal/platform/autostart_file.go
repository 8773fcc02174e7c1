//go:build linux || darwin

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// loginItemFile is a login item stored as one file, an XDG desktop entry
// or a LaunchAgent plist.
type loginItemFile struct {
	path    func(appName string) (string, error)
	content func(appName, execPath string) string
}

func (item loginItemFile) EnableAutostart(appName, execPath string) error {
	path, err := item.path(appName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create login item dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(item.content(appName, execPath)), 0o644); err != nil {
		return fmt.Errorf("write login item: %w", err)
	}
	return nil
}

func (item loginItemFile) DisableAutostart(appName string) error {
	path, err := item.path(appName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove login item: %w", err)
	}
	return nil
}

func (item loginItemFile) AutostartEnabled(appName string) (bool, error) {
	path, err := item.path(appName)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat login item: %w", err)
	}
	return true, nil
}
