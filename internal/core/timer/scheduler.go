package timer

import (
	"log/slog"
	"sync"
	"time"
)

// Observer is called synchronously on the scheduler goroutine, never while
// the engine lock is held, so it may call back into the engine.
type Observer func(Event)

// SchedulerConfig contains runtime options for the Scheduler.
type SchedulerConfig struct {
	TickInterval time.Duration
	Logger       *slog.Logger
}

// Scheduler polls an Engine at a fixed cadence, reports phase completion
// exactly once and forwards display state to observers.
type Scheduler struct {
	engine  *Engine
	options SchedulerConfig
	logger  *slog.Logger

	mu        sync.Mutex
	events    []chan Event
	observers []Observer
	stopCh    chan struct{}
	running   bool
}

// NewScheduler creates a Scheduler for engine.
func NewScheduler(engine *Engine, options SchedulerConfig) *Scheduler {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		engine:  engine,
		options: options,
		logger:  logger,
	}
}

// Subscribe registers a new observer channel. Slow readers miss events
// rather than stall the loop.
func (scheduler *Scheduler) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	scheduler.mu.Lock()
	scheduler.events = append(scheduler.events, ch)
	scheduler.mu.Unlock()
	return ch
}

// Observe registers a synchronous callback.
func (scheduler *Scheduler) Observe(observer Observer) {
	if observer == nil {
		return
	}
	scheduler.mu.Lock()
	scheduler.observers = append(scheduler.observers, observer)
	scheduler.mu.Unlock()
}

// Start launches the ticking loop.
func (scheduler *Scheduler) Start() {
	scheduler.mu.Lock()
	if scheduler.running {
		scheduler.mu.Unlock()
		return
	}
	scheduler.running = true
	scheduler.stopCh = make(chan struct{})
	stopCh := scheduler.stopCh
	scheduler.mu.Unlock()

	scheduler.logger.Debug("scheduler started", "interval", scheduler.options.TickInterval)
	go scheduler.run(stopCh)
}

// Stop terminates the ticking loop and closes subscriber channels.
func (scheduler *Scheduler) Stop() {
	scheduler.mu.Lock()
	if !scheduler.running {
		scheduler.mu.Unlock()
		return
	}
	close(scheduler.stopCh)
	scheduler.running = false
	events := scheduler.events
	scheduler.events = nil
	scheduler.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (scheduler *Scheduler) run(stopCh <-chan struct{}) {
	ticker := time.NewTicker(scheduler.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			scheduler.tick()
		}
	}
}

func (scheduler *Scheduler) tick() {
	completion, tick := scheduler.engine.poll()

	if completion != "" {
		event := tick
		event.Type = completion
		scheduler.logger.Info("phase complete", "event", completion, "phase", tick.Phase, "pomodoros", tick.PomodoroCount)
		scheduler.emit(event)
	}
	scheduler.emit(tick)
}

func (scheduler *Scheduler) emit(event Event) {
	// Channel sends stay under the scheduler lock so Stop cannot close a
	// channel mid-send; they never block.
	scheduler.mu.Lock()
	for _, ch := range scheduler.events {
		select {
		case ch <- event:
		default:
		}
	}
	observers := append([]Observer(nil), scheduler.observers...)
	scheduler.mu.Unlock()

	for _, observer := range observers {
		observer(event)
	}
}
