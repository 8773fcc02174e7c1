package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

const (
	recordsVersion = 1
	lockSuffix     = ".lock"
)

// Record mode and status tags as stored in the records file.
const (
	ModePomodoro  = "pomodoro"
	ModeStopwatch = "stopwatch"

	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
)

// Record is one finished focus session.
type Record struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	StartTime     int64  `json:"startTime"`
	EndTime       int64  `json:"endTime"`
	Duration      int    `json:"duration"`
	Mode          string `json:"mode"`
	Status        string `json:"status"`
	ProjectPath   string `json:"projectPath,omitempty"`
	TaskText      string `json:"taskText,omitempty"`
	PomodoroIndex int    `json:"pomodoroIndex,omitempty"`
}

// RecordsFile is the on-disk layout of a records file.
type RecordsFile struct {
	Version int      `json:"version"`
	Records []Record `json:"records"`
}

// rawRecordsFile keeps existing records undecoded so fields written by
// other tools survive an append.
type rawRecordsFile struct {
	Version int               `json:"version"`
	Records []json.RawMessage `json:"records"`
}

// renameFile is replaced in tests to simulate a crash before the swap.
var renameFile = os.Rename

// ReadRecords loads the records file at path. A missing file is an empty
// version 1 file.
func ReadRecords(path string) (RecordsFile, error) {
	file := RecordsFile{Version: recordsVersion, Records: []Record{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return file, nil
		}
		return file, fmt.Errorf("read records file: %w", err)
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return file, fmt.Errorf("parse records file %s: %w", path, err)
	}
	if file.Records == nil {
		file.Records = []Record{}
	}
	return file, nil
}

// ReadAllRecords returns the records of every device sharing the vault,
// ordered by file name and then by append order.
func ReadAllRecords(root string) ([]Record, error) {
	entries, err := os.ReadDir(storageDir(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage directory: %w", err)
	}

	prefix := recordsPrefix + vaultName(root) + "."
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var records []Record
	for _, name := range names {
		file, err := ReadRecords(filepath.Join(storageDir(root), name))
		if err != nil {
			return records, err
		}
		records = append(records, file.Records...)
	}
	return records, nil
}

// recordsMu serializes read-modify-write cycles within the process; the
// lock file next to each records file serializes them across processes.
var recordsMu sync.Mutex

// AppendRecord adds record to the end of the file at path. Readers see the
// old or the new file, never a partial one.
func AppendRecord(path string, record Record) error {
	unlock, err := lockRecords(path)
	if err != nil {
		return err
	}
	defer unlock()

	file := rawRecordsFile{Version: recordsVersion}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read records file: %w", err)
	default:
		if err := json.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("parse records file %s: %w", path, err)
		}
		if file.Version == 0 {
			file.Version = recordsVersion
		}
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	file.Records = append(file.Records, encoded)

	content, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records file: %w", err)
	}
	return writeAtomic(path, content)
}

// WriteRecords replaces the file at path with file.
func WriteRecords(path string, file RecordsFile) error {
	if file.Version == 0 {
		file.Version = recordsVersion
	}
	if file.Records == nil {
		file.Records = []Record{}
	}
	content, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records file: %w", err)
	}

	unlock, err := lockRecords(path)
	if err != nil {
		return err
	}
	defer unlock()
	return writeAtomic(path, content)
}

// lockRecords takes the in-process mutex and an exclusive flock on
// <path>.lock. The lock file is never renamed, so every writer contends on
// the same inode.
func lockRecords(path string) (func(), error) {
	recordsMu.Lock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		recordsMu.Unlock()
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	lock := flock.New(path + lockSuffix)
	if err := lock.Lock(); err != nil {
		recordsMu.Unlock()
		return nil, fmt.Errorf("lock records file: %w", err)
	}
	return func() {
		_ = lock.Unlock()
		recordsMu.Unlock()
	}, nil
}

// writeAtomic writes content to <path>.tmp, syncs it and renames it over
// path. The caller holds the records lock. On failure the temp file is
// removed and path is left as it was.
func writeAtomic(path string, content []byte) (err error) {
	tmpPath := path + ".tmp"
	handle, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp records file: %w", err)
	}
	defer func() {
		if handle != nil {
			_ = handle.Close()
		}
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = handle.Write(content); err != nil {
		return fmt.Errorf("write temp records file: %w", err)
	}
	if err = handle.Sync(); err != nil {
		return fmt.Errorf("sync temp records file: %w", err)
	}
	err = handle.Close()
	handle = nil
	if err != nil {
		return fmt.Errorf("close temp records file: %w", err)
	}
	if err = renameFile(tmpPath, path); err != nil {
		return fmt.Errorf("replace records file: %w", err)
	}
	return nil
}
