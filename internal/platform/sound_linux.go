//go:build linux

package platform

import (
	"errors"
	"os/exec"
)

const freedesktopChime = "/usr/share/sounds/freedesktop/stereo/complete.oga"

func soundCommand() (*exec.Cmd, error) {
	if path, err := exec.LookPath("paplay"); err == nil {
		return exec.Command(path, freedesktopChime), nil
	}
	if path, err := exec.LookPath("canberra-gtk-play"); err == nil {
		return exec.Command(path, "-i", "complete"), nil
	}
	return nil, errors.New("play sound: no sound player found")
}
