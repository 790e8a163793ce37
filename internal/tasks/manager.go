// Package tasks runs named background jobs, optionally on a fixed interval.
// The ticket store sweep is registered here at startup.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TaskFunc is the unit of work.
type TaskFunc func(ctx context.Context) error

type TaskStatus struct {
	Name       string    `json:"name,omitempty"`
	Running    bool      `json:"running,omitempty"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type Manager struct {
	tasks sync.Map
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a task. A positive interval schedules it; zero means the
// task only runs when triggered.
func (m *Manager) Register(name string, interval time.Duration, fn TaskFunc) {
	task := &runnableTask{
		name:         name,
		interval:     interval,
		handler:      fn,
		registeredAt: time.Now(),
	}
	m.tasks.Store(name, task)

	if interval > 0 {
		// TODO: more robust scheduling
		go m.scheduler(task)
	}
}

func (m *Manager) Trigger(name string) error {
	t, ok := m.tasks.Load(name)
	if !ok {
		return TaskNotFoundError{Name: name}
	}
	task := t.(*runnableTask)
	go task.run()
	return nil
}

func (m *Manager) ListStatus() []TaskStatus {
	var list []TaskStatus
	m.tasks.Range(func(_, value any) bool {
		task := value.(*runnableTask)
		list = append(list, task.status())
		return true
	})
	return list
}

func (m *Manager) scheduler(task *runnableTask) {
	ticker := time.NewTicker(task.interval)
	for range ticker.C {
		task.run()
	}
}

type runnableTask struct {
	name     string
	interval time.Duration
	handler  TaskFunc

	registeredAt time.Time

	mu         sync.RWMutex
	running    bool
	lastRun    time.Time
	lastResult string
}

func (t *runnableTask) run() {
	t.mu.Lock()

	l := log.With().Str("task", t.name).Logger()

	if t.running {
		t.mu.Unlock()
		l.Warn().Msg("task is already running, skipping execution")
		return
	}
	t.running = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.running = false
		t.lastRun = time.Now()
		t.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	err := t.handler(ctx)
	duration := time.Since(start)

	t.mu.Lock()
	if err != nil {
		t.lastResult = fmt.Sprintf("failed: %v", err)
	} else {
		t.lastResult = "success"
	}
	t.mu.Unlock()

	if err != nil {
		l.Error().Err(err).Dur("duration", duration).Msg("task failed")
	} else {
		l.Info().Dur("duration", duration).Msg("task completed")
	}
}

func (t *runnableTask) status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var nextTime time.Time
	if t.interval > 0 {
		if !t.lastRun.IsZero() {
			nextTime = t.lastRun.Add(t.interval)
		} else {
			nextTime = t.registeredAt.Add(t.interval)
		}
	}

	return TaskStatus{
		Name:       t.name,
		Running:    t.running,
		LastRun:    t.lastRun,
		LastResult: t.lastResult,
		NextRun:    nextTime,
	}
}
