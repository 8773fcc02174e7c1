//go:build darwin

package platform

import "os/exec"

func soundCommand() (*exec.Cmd, error) {
	return exec.Command("afplay", "/System/Library/Sounds/Glass.aiff"), nil
}
