package vault

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tomatobar/internal/core/timefmt"
)

const sectionHeading = "## 项目列表"

var entryTimePattern = regexp.MustCompile(`\]\]\s+(\d+hr\d+)`)

// projectEntry is the time delta merged into the project list.
type projectEntry struct {
	Path    string
	Display string
	Minutes int
}

// shortName turns "1. 项目/Lab-Thesis/Thesis.README.md" into "Thesis", the
// name used by entries the plugin writes without a duration.
func shortName(projectPath string) string {
	segment := projectPath
	if index := strings.LastIndex(segment, "/"); index >= 0 {
		segment = segment[index+1:]
	}
	segment, ok := strings.CutSuffix(segment, ".md")
	if !ok {
		return ""
	}
	segment, ok = strings.CutSuffix(segment, ".README")
	if !ok {
		return ""
	}
	return segment
}

// locateSection returns the project list heading index and the index of the
// first line after the section.
func locateSection(lines []string) (heading, end int, ok bool) {
	heading = -1
	for index, line := range lines {
		if strings.TrimSpace(line) == sectionHeading {
			heading = index
			break
		}
	}
	if heading < 0 {
		return 0, 0, false
	}
	for index := heading + 1; index < len(lines); index++ {
		if isTopHeading(lines[index]) {
			return heading, index, true
		}
	}
	return heading, len(lines), true
}

func isTopHeading(line string) bool {
	return strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ")
}

// mergeProjectTime adds entry.Minutes to the project's line in section and
// recomputes the total line. section excludes the heading.
func mergeProjectTime(section []string, entry projectEntry) []string {
	timed := regexp.MustCompile(`^(\d+)\.\s+\[\[` + regexp.QuoteMeta(entry.Path) + `\|` +
		regexp.QuoteMeta(entry.Display) + `\]\]\s+(\d+hr\d+)`)
	var unqualified *regexp.Regexp
	if short := shortName(entry.Path); short != "" {
		unqualified = regexp.MustCompile(`^(\d+)\.\s+\[\[` + regexp.QuoteMeta(short) + `\.README\|` +
			regexp.QuoteMeta(entry.Display) + `\]\]$`)
	}

	merged := make([]string, 0, len(section)+3)
	found := false
	totalIndex := -1
	maxOrdinal := 0

	for _, line := range section {
		if ordinal, ok := lineOrdinal(line); ok && ordinal > maxOrdinal {
			maxOrdinal = ordinal
		}

		if loc := timed.FindStringSubmatchIndex(line); loc != nil {
			updated := timefmt.Add(line[loc[4]:loc[5]], entry.Minutes)
			merged = append(merged, line[:loc[4]]+updated+line[loc[5]:])
			found = true
			continue
		}
		if unqualified != nil {
			if match := unqualified.FindStringSubmatch(line); match != nil {
				merged = append(merged, formatEntry(match[1], entry.Path, entry.Display, entry.Minutes))
				found = true
				continue
			}
		}
		if isTotalLine(line) {
			totalIndex = len(merged)
		}
		merged = append(merged, line)
	}

	if !found {
		line := formatEntry(strconv.Itoa(maxOrdinal+1), entry.Path, entry.Display, entry.Minutes)
		at := len(merged)
		if totalIndex >= 0 {
			at = totalIndex
		}
		for at > 0 && strings.TrimSpace(merged[at-1]) == "" {
			at--
		}
		merged = insertLines(merged, at, line)
		if totalIndex >= 0 {
			totalIndex++
		}
	}

	total := timefmt.Format(sumEntries(merged))
	if totalIndex >= 0 {
		merged[totalIndex] = total
		return merged
	}

	at := len(merged)
	for at > 0 && strings.TrimSpace(merged[at-1]) == "" {
		at--
	}
	return insertLines(merged, at, "", total)
}

func formatEntry(ordinal, path, display string, minutes int) string {
	return fmt.Sprintf("%s. [[%s|%s]] %s", ordinal, path, display, timefmt.Format(minutes))
}

// lineOrdinal reads the list number of lines like "3. [[...]]".
func lineOrdinal(line string) (int, bool) {
	head, _, found := strings.Cut(strings.TrimSpace(line), ".")
	if !found {
		return 0, false
	}
	ordinal, err := strconv.Atoi(head)
	if err != nil || ordinal < 0 {
		return 0, false
	}
	return ordinal, true
}

// isTotalLine reports whether line is a standalone duration such as "1hr58".
func isTotalLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && timefmt.IsToken(trimmed)
}

func sumEntries(lines []string) int {
	total := 0
	for _, line := range lines {
		if match := entryTimePattern.FindStringSubmatch(line); match != nil {
			total += timefmt.Minutes(match[1])
		}
	}
	return total
}

func insertLines(lines []string, at int, inserted ...string) []string {
	result := make([]string, 0, len(lines)+len(inserted))
	result = append(result, lines[:at]...)
	result = append(result, inserted...)
	return append(result, lines[at:]...)
}

// updateProjectSection applies entry to a whole note, keeping everything
// outside the section byte for byte, including line endings.
func updateProjectSection(content string, entry projectEntry) (string, error) {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	body, trailing := strings.CutSuffix(content, newline)

	lines := strings.Split(body, newline)
	heading, end, ok := locateSection(lines)
	if !ok {
		return "", ErrSectionNotFound
	}

	section := mergeProjectTime(lines[heading+1:end], entry)
	rebuilt := make([]string, 0, len(lines)+len(section))
	rebuilt = append(rebuilt, lines[:heading+1]...)
	rebuilt = append(rebuilt, section...)
	rebuilt = append(rebuilt, lines[end:]...)

	result := strings.Join(rebuilt, newline)
	if trailing {
		result += newline
	}
	return result, nil
}
