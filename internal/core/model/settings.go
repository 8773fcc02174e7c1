package model

// AppSettings are the preferences tomatobar persists on its own, outside the vault.
type AppSettings struct {
	VaultPath string
	Autostart bool
}

// DefaultAppSettings returns settings for a fresh install: no vault, no autostart.
func DefaultAppSettings() AppSettings {
	return AppSettings{}
}
