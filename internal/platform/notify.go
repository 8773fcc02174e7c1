package platform

import "fmt"

// NotificationKind identifies why a notification is sent.
type NotificationKind string

const (
	NotifyPomodoroDue      NotificationKind = "pomodoro_due"
	NotifyPomodoroComplete NotificationKind = "pomodoro_complete"
	NotifyBreakComplete    NotificationKind = "break_complete"
	NotifyStopwatchStopped NotificationKind = "stopwatch_stopped"
)

// Notification is a desktop notification payload.
type Notification struct {
	Kind  NotificationKind
	Title string
	Body  string
	// Sound asks the notifier to play the completion chime as well.
	Sound bool
}

// Notifier delivers notifications to the desktop.
type Notifier interface {
	Notify(notification Notification) error
}

// PomodoroDue is sent when a pomodoro reaches its target but is left
// running into overtime.
func PomodoroDue() Notification {
	return Notification{Kind: NotifyPomodoroDue, Title: "🍅 时间到", Body: "完成本次番茄钟，或继续专注。"}
}

// PomodoroComplete is sent when a pomodoro has been recorded.
func PomodoroComplete() Notification {
	return Notification{Kind: NotifyPomodoroComplete, Title: "🍅 番茄钟完成", Body: "休息一下吧！"}
}

// BreakComplete is sent when a break ends.
func BreakComplete() Notification {
	return Notification{Kind: NotifyBreakComplete, Title: "☕ 休息结束", Body: "准备开始下一个番茄钟！"}
}

// StopwatchStopped reports the length of a stopped stopwatch session.
func StopwatchStopped(minutes int) Notification {
	return Notification{
		Kind:  NotifyStopwatchStopped,
		Title: "⏱ 计时完成",
		Body:  fmt.Sprintf("本次计时 %d 分钟", minutes),
	}
}
