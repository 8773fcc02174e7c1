package vault

import "errors"

var (
	// ErrInvalidVault is returned when a folder lacks the lifeos-pro plugin directory.
	ErrInvalidVault = errors.New("not a lifeos-pro vault")
	// ErrConflict is returned when the daily note kept changing during an update.
	ErrConflict = errors.New("daily note changed during update")
	// ErrSectionNotFound is returned when the daily note has no project list section.
	ErrSectionNotFound = errors.New("project list section not found")
)
