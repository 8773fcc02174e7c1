//go:build windows

package platform

import "os/exec"

func soundCommand() (*exec.Cmd, error) {
	return exec.Command(
		"powershell",
		"-NoProfile",
		"-NonInteractive",
		"-Command",
		"[System.Media.SystemSounds]::Asterisk.Play(); Start-Sleep -Milliseconds 800",
	), nil
}
