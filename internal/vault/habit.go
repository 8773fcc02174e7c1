package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"time"
)

const habitLabel = "使用番茄钟"

var habitPattern = regexp.MustCompile(`([-*])\s+\[ \]\s+` + habitLabel)

// CheckHabit ticks the first unchecked pomodoro habit box in the daily note
// of date and stamps it with the date. It reports whether the note changed.
func CheckHabit(root string, date time.Time) (bool, error) {
	path := DailyNotePath(root, date)
	info, err := os.Stat(path)
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

	content := string(raw)
	loc := habitPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return false, nil
	}
	bullet := content[loc[2]:loc[3]]
	checked := fmt.Sprintf("%s [x] %s ✅ %s", bullet, habitLabel, FormatDate(date))
	updated := content[:loc[0]] + checked + content[loc[1]:]

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write daily note: %w", err)
	}
	return true, nil
}
