// Package journal keeps a local SQLite history of finished sessions and the
// outcome of their vault writes.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const fileName = "journal.db"

// Entry is one finished session.
type Entry struct {
	ID            string
	VaultPath     string
	Date          string
	StartedAt     time.Time
	EndedAt       time.Time
	Minutes       int
	Mode          string
	Status        string
	ProjectPath   string
	TaskText      string
	PomodoroIndex int

	Recorded     bool
	NoteUpdated  bool
	HabitChecked bool
	// SyncError holds the joined vault errors, if any.
	SyncError string
}

// Journal provides SQLite-backed session history.
type Journal struct {
	db *sql.DB
}

// DefaultPath returns <user config>/<appName>/journal.db.
func DefaultPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, fileName), nil
}

// Open opens or creates the journal at path and migrates it.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open journal: create directory: %w", err)
	}
	// The tray app and CLI may open the file at the same time. The pragma
	// rides on the DSN so every pooled connection gets it.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close releases the database handle.
func (journal *Journal) Close() error {
	if journal == nil || journal.db == nil {
		return nil
	}
	return journal.db.Close()
}

// Append stores entry.
func (journal *Journal) Append(ctx context.Context, entry Entry) error {
	if journal == nil || journal.db == nil {
		return errors.New("append session: journal is closed")
	}
	if entry.ID == "" {
		return errors.New("append session: id is empty")
	}
	_, err := journal.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, vault_path, date, started_at, ended_at, minutes, mode, status,
			project_path, task_text, pomodoro_index, recorded, note_updated, habit_checked, sync_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.VaultPath,
		entry.Date,
		formatTime(entry.StartedAt),
		formatTime(entry.EndedAt),
		entry.Minutes,
		entry.Mode,
		entry.Status,
		entry.ProjectPath,
		entry.TaskText,
		entry.PomodoroIndex,
		entry.Recorded,
		entry.NoteUpdated,
		entry.HabitChecked,
		entry.SyncError,
	)
	if err != nil {
		return fmt.Errorf("append session: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (journal *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if journal == nil || journal.db == nil {
		return nil, errors.New("list sessions: journal is closed")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := journal.db.QueryContext(ctx, `
		SELECT id, vault_path, date, started_at, ended_at, minutes, mode, status,
			project_path, task_text, pomodoro_index, recorded, note_updated, habit_checked, sync_error
		FROM sessions
		ORDER BY ended_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry          Entry
			started, ended string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.VaultPath,
			&entry.Date,
			&started,
			&ended,
			&entry.Minutes,
			&entry.Mode,
			&entry.Status,
			&entry.ProjectPath,
			&entry.TaskText,
			&entry.PomodoroIndex,
			&entry.Recorded,
			&entry.NoteUpdated,
			&entry.HabitChecked,
			&entry.SyncError,
		)
		if err != nil {
			return nil, fmt.Errorf("list sessions: scan: %w", err)
		}
		entry.StartedAt = parseTime(started)
		entry.EndedAt = parseTime(ended)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: rows: %w", err)
	}
	return entries, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
