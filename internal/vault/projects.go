package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const readmeSuffix = ".README.md"

// Project is a folder under the projects directory.
type Project struct {
	Name        string
	DisplayName string
	// Path is vault-relative, e.g. "1. 项目/Lab-Thesis".
	Path string
	// ReadmePath is the vault-relative descriptor note, or the folder path
	// with a trailing slash when the project has none.
	ReadmePath string
}

// ScanProjects lists project folders sorted by name. Hidden folders are skipped.
func ScanProjects(root string) ([]Project, error) {
	projectsRoot := filepath.Join(root, ProjectsDir)
	entries, err := os.ReadDir(projectsRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Project{}, nil
		}
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	projects := make([]Project, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		folder := filepath.Join(projectsRoot, name)
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			continue
		}
		projects = append(projects, Project{
			Name:        name,
			DisplayName: name,
			Path:        ProjectsDir + "/" + name,
			ReadmePath:  findReadme(folder, name),
		})
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

// findReadme prefers "<suffix>.README.md" where suffix is the folder name
// after its last dash, then any README note in the folder.
func findReadme(folder, name string) string {
	short := name
	if index := strings.LastIndex(name, "-"); index >= 0 {
		short = name[index+1:]
	}
	preferred := short + readmeSuffix
	if _, err := os.Stat(filepath.Join(folder, preferred)); err == nil {
		return ProjectsDir + "/" + name + "/" + preferred
	}

	files, err := os.ReadDir(folder)
	if err == nil {
		for _, file := range files {
			if !file.IsDir() && strings.HasSuffix(file.Name(), readmeSuffix) {
				return ProjectsDir + "/" + name + "/" + file.Name()
			}
		}
	}
	return ProjectsDir + "/" + name + "/"
}
