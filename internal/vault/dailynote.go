package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

const updateAttempts = 3

// DailyNotes merges session time into daily notes.
//
// Obsidian does not honor advisory locks, so a concurrent edit is detected
// by comparing modification time and size before and after the rebuild
// rather than prevented.
type DailyNotes struct {
	logger *slog.Logger
	stat   func(name string) (fs.FileInfo, error)
}

// NewDailyNotes creates a DailyNotes. A nil logger discards output.
func NewDailyNotes(logger *slog.Logger) *DailyNotes {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DailyNotes{logger: logger, stat: os.Stat}
}

// UpdateProjectTime adds minutes to the project's entry in the daily note of
// date. It returns false without error when the note does not exist.
func (notes *DailyNotes) UpdateProjectTime(root string, date time.Time, projectPath, displayName string, minutes int) (bool, error) {
	path := DailyNotePath(root, date)
	entry := projectEntry{Path: projectPath, Display: displayName, Minutes: minutes}

	for attempt := 1; attempt <= updateAttempts; attempt++ {
		before, err := notes.stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("stat daily note: %w", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return false, fmt.Errorf("read daily note: %w", err)
		}
		updated, err := updateProjectSection(string(raw), entry)
		if err != nil {
			return false, fmt.Errorf("update %s: %w", path, err)
		}

		after, err := notes.stat(path)
		if err != nil {
			return false, fmt.Errorf("stat daily note: %w", err)
		}
		if !sameVersion(before, after) {
			notes.logger.Debug("daily note changed while updating", "path", path, "attempt", attempt)
			continue
		}

		if err := os.WriteFile(path, []byte(updated), before.Mode().Perm()); err != nil {
			return false, fmt.Errorf("write daily note: %w", err)
		}
		notes.logger.Debug("daily note updated", "path", path, "project", displayName, "minutes", minutes)
		return true, nil
	}
	return false, fmt.Errorf("%w after %d attempts: %s", ErrConflict, updateAttempts, path)
}

func sameVersion(before, after fs.FileInfo) bool {
	return before.ModTime().Equal(after.ModTime()) && before.Size() == after.Size()
}
