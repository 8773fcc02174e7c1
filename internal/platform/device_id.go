package platform

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/user"
	"strings"

	"github.com/denisbrodbeck/machineid"
)

// DeviceID returns a stable, anonymous identifier for this machine. It names
// the per-device records file so devices sharing a vault never collide.
func DeviceID() string {
	id, err := machineid.ID()
	if err == nil && strings.TrimSpace(id) != "" {
		return hashDeviceID("bar-tomato-", strings.TrimSpace(id))
	}

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	username := "unknown"
	if current, err := user.Current(); err == nil && current.Username != "" {
		username = current.Username
	}
	return hashDeviceID("bar-tomato-fallback-", hostname+username)
}

func hashDeviceID(prefix, value string) string {
	sum := sha256.Sum256([]byte(prefix + value))
	return hex.EncodeToString(sum[:])
}
