package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var errEmptyExecPath = errors.New("executable path is empty")

// Service registers an executable to start at login.
type Service interface {
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) (bool, error)
}

// NewService returns the login item mechanism of the current OS.
func NewService() Service {
	return newService()
}

// Autostart registers the running executable to start at login.
type Autostart struct {
	service    Service
	appName    string
	executable func() (string, error)
}

// NewAutostart binds service to appName.
func NewAutostart(service Service, appName string) *Autostart {
	return &Autostart{service: service, appName: appName, executable: os.Executable}
}

// EnableAutostart registers the current executable.
func (autostart *Autostart) EnableAutostart() error {
	execPath, err := autostart.executable()
	if err != nil {
		return fmt.Errorf("enable autostart: resolve executable: %w", err)
	}
	if strings.TrimSpace(execPath) == "" {
		return fmt.Errorf("enable autostart: %w", errEmptyExecPath)
	}
	if err := autostart.service.EnableAutostart(autostart.appName, execPath); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	return nil
}

// DisableAutostart removes the registration. Missing registrations are fine.
func (autostart *Autostart) DisableAutostart() error {
	if err := autostart.service.DisableAutostart(autostart.appName); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

// AutostartEnabled reports whether a registration exists.
func (autostart *Autostart) AutostartEnabled() (bool, error) {
	enabled, err := autostart.service.AutostartEnabled(autostart.appName)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return enabled, nil
}

// loginItemName turns appName into a lower-case, dash-separated identifier.
func loginItemName(appName string) string {
	name := strings.ToLower(strings.TrimSpace(appName))
	if name == "" {
		return "tomatobar"
	}
	return strings.Join(strings.Fields(name), "-")
}
