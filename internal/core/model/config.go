package model

import "time"

// Defaults used when the vault does not provide a value.
const (
	DefaultPomodoroMinutes   = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
	DefaultLongBreakInterval = 4
)

// TimerConfig contains the durations the timer state machine runs with.
type TimerConfig struct {
	PomodoroMinutes   int
	ShortBreakMinutes int
	LongBreakMinutes  int
	// LongBreakInterval is the number of pomodoros between long breaks.
	LongBreakInterval int
}

// DefaultTimerConfig returns the classic 25/5/15 every-4 schedule.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		PomodoroMinutes:   DefaultPomodoroMinutes,
		ShortBreakMinutes: DefaultShortBreakMinutes,
		LongBreakMinutes:  DefaultLongBreakMinutes,
		LongBreakInterval: DefaultLongBreakInterval,
	}
}

// Normalized replaces non-positive fields with defaults.
func (config TimerConfig) Normalized() TimerConfig {
	if config.PomodoroMinutes <= 0 {
		config.PomodoroMinutes = DefaultPomodoroMinutes
	}
	if config.ShortBreakMinutes <= 0 {
		config.ShortBreakMinutes = DefaultShortBreakMinutes
	}
	if config.LongBreakMinutes <= 0 {
		config.LongBreakMinutes = DefaultLongBreakMinutes
	}
	if config.LongBreakInterval <= 0 {
		config.LongBreakInterval = DefaultLongBreakInterval
	}
	return config
}

// Pomodoro returns the work interval length.
func (config TimerConfig) Pomodoro() time.Duration {
	return time.Duration(config.PomodoroMinutes) * time.Minute
}

// ShortBreak returns the short break length.
func (config TimerConfig) ShortBreak() time.Duration {
	return time.Duration(config.ShortBreakMinutes) * time.Minute
}

// LongBreak returns the long break length.
func (config TimerConfig) LongBreak() time.Duration {
	return time.Duration(config.LongBreakMinutes) * time.Minute
}

// PomodoroConfig mirrors the pomodoro fields of the vault plugin's data.json.
type PomodoroConfig struct {
	PomodoroDuration   int  `json:"pomodoroDuration"`
	ShortBreakDuration int  `json:"shortBreakDuration"`
	LongBreakDuration  int  `json:"longBreakDuration"`
	LongBreakInterval  int  `json:"longBreakInterval"`
	AutoStartBreak     bool `json:"autoStartBreak"`
	PomodoroSound      bool `json:"pomodoroSound"`
}

// DefaultPomodoroConfig returns the values used for absent fields.
func DefaultPomodoroConfig() PomodoroConfig {
	return PomodoroConfig{
		PomodoroDuration:   DefaultPomodoroMinutes,
		ShortBreakDuration: DefaultShortBreakMinutes,
		LongBreakDuration:  DefaultLongBreakMinutes,
		LongBreakInterval:  DefaultLongBreakInterval,
		AutoStartBreak:     false,
		PomodoroSound:      true,
	}
}

// TimerConfig converts the plugin configuration to a TimerConfig.
func (config PomodoroConfig) TimerConfig() TimerConfig {
	return TimerConfig{
		PomodoroMinutes:   config.PomodoroDuration,
		ShortBreakMinutes: config.ShortBreakDuration,
		LongBreakMinutes:  config.LongBreakDuration,
		LongBreakInterval: config.LongBreakInterval,
	}.Normalized()
}
