package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	taskPattern = regexp.MustCompile(`^\s*[-*]\s+\[([ /])\]\s+(.+)$`)
	tagPattern  = regexp.MustCompile(`#([^/\s]+/[^\s]+)`)
)

// Task is an open or in-progress checklist item found in the vault.
type Task struct {
	Text string
	// FilePath is vault-relative with forward slashes.
	FilePath   string
	LineNumber int
	// ProjectTag is the "area/project" tag without '#', if any.
	ProjectTag  string
	ProjectName string
}

// ScanTasks collects "[ ]" and "[/]" checklist items from markdown notes in
// the project, periodic and area folders. Template folders are skipped and
// unreadable files are ignored.
func ScanTasks(root string) ([]Task, error) {
	tasks := []Task{}
	for _, dir := range []string{ProjectsDir, PeriodicDir, AreasDir} {
		scanRoot := filepath.Join(root, dir)
		if _, err := os.Stat(scanRoot); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return tasks, fmt.Errorf("stat %s: %w", dir, err)
		}

		err := filepath.WalkDir(scanRoot, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			relative, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			relative = filepath.ToSlash(relative)
			if strings.Contains(relative, "Templates") {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if entry.IsDir() || filepath.Ext(path) != ".md" {
				return nil
			}
			tasks = append(tasks, scanFile(path, relative)...)
			return nil
		})
		if err != nil {
			return tasks, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	return tasks, nil
}

func scanFile(path, relative string) []Task {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var tasks []Task
	for index, line := range strings.Split(string(raw), "\n") {
		match := taskPattern.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
		if match == nil {
			continue
		}
		task := Task{Text: match[2], FilePath: relative, LineNumber: index + 1}
		if tag := tagPattern.FindStringSubmatch(task.Text); tag != nil {
			task.ProjectTag = tag[1]
			task.ProjectName = tag[1][strings.LastIndex(tag[1], "/")+1:]
		}
		tasks = append(tasks, task)
	}
	return tasks
}
