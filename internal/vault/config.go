package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"tomatobar/internal/core/model"
)

// ReadConfig loads the pomodoro settings from the plugin's data.json. A
// missing or malformed file, and every missing or mistyped field, falls back
// to the default value. Only unexpected read failures are returned.
func ReadConfig(root string) (model.PomodoroConfig, error) {
	config := model.DefaultPomodoroConfig()

	raw, err := os.ReadFile(filepath.Join(PluginDir(root), configFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("read plugin config: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return config, nil
	}

	readCount(fields, "pomodoroDuration", &config.PomodoroDuration)
	readCount(fields, "shortBreakDuration", &config.ShortBreakDuration)
	readCount(fields, "longBreakDuration", &config.LongBreakDuration)
	readCount(fields, "longBreakInterval", &config.LongBreakInterval)
	readFlag(fields, "autoStartBreak", &config.AutoStartBreak)
	readFlag(fields, "pomodoroSound", &config.PomodoroSound)
	return config, nil
}

// readCount accepts non-negative integers only.
func readCount(fields map[string]json.RawMessage, key string, target *int) {
	value, ok := fields[key]
	if !ok {
		return
	}
	var count *uint64
	if err := json.Unmarshal(value, &count); err != nil || count == nil || *count > math.MaxInt32 {
		return
	}
	*target = int(*count)
}

func readFlag(fields map[string]json.RawMessage, key string, target *bool) {
	value, ok := fields[key]
	if !ok {
		return
	}
	var flag *bool
	if err := json.Unmarshal(value, &flag); err != nil || flag == nil {
		return
	}
	*target = *flag
}
