//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

// registryRun stores the login item as a value under the HKCU Run key.
type registryRun struct{}

func newService() Service {
	return registryRun{}
}

func (registryRun) EnableAutostart(appName, execPath string) error {
	command := `"` + strings.Trim(execPath, `"`) + `"`
	return runReg("add", registryRunKey, "/v", appName, "/t", "REG_SZ", "/d", command, "/f")
}

func (run registryRun) DisableAutostart(appName string) error {
	enabled, err := run.AutostartEnabled(appName)
	if err != nil || !enabled {
		return err
	}
	return runReg("delete", registryRunKey, "/v", appName, "/f")
}

func (registryRun) AutostartEnabled(appName string) (bool, error) {
	if err := exec.Command("reg", "query", registryRunKey, "/v", appName).Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("reg query: %w", err)
	}
	return true, nil
}

func runReg(args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("reg %s: %w: %s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}
