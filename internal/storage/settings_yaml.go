package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tomatobar/internal/core/model"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	VaultPath string `yaml:"vault_path"`
	Autostart bool   `yaml:"autostart"`
}

// SettingsStore persists app settings as YAML under a config directory.
type SettingsStore struct {
	path string
}

// NewSettingsStore stores settings in <configDir>/<appName>/settings.yaml.
func NewSettingsStore(configDir, appName string) *SettingsStore {
	return &SettingsStore{path: filepath.Join(configDir, appName, settingsFileName)}
}

// DefaultSettingsStore resolves the user config directory.
func DefaultSettingsStore(appName string) (*SettingsStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	return NewSettingsStore(configDir, appName), nil
}

// Path returns the settings file location.
func (store *SettingsStore) Path() string {
	return store.path
}

// LoadSettings reads app settings from YAML.
// If the settings file does not exist, default settings are returned.
func (store *SettingsStore) LoadSettings() (model.AppSettings, error) {
	settings := model.DefaultAppSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	settings.VaultPath = strings.TrimSpace(fileData.VaultPath)
	settings.Autostart = fileData.Autostart
	return settings, nil
}

// SaveSettings writes app settings to YAML.
func (store *SettingsStore) SaveSettings(settings model.AppSettings) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(yamlSettings{
		VaultPath: settings.VaultPath,
		Autostart: settings.Autostart,
	})
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}
