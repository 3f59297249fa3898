package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Manager schedules registered tasks. Scheduling starts with Start and ends
// when its context is cancelled.
type Manager struct {
	mu    sync.RWMutex
	tasks map[string]*RunnableTask
	wg    sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{tasks: make(map[string]*RunnableTask)}
}

func (m *Manager) Register(def TaskDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[def.Name]; exists {
		return DuplicateTaskError{Name: def.Name}
	}
	m.tasks[def.Name] = newRunnableTask(def)
	return nil
}

// Start runs every interval task once and then on its interval, until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, task := range m.tasks {
		if task.Interval <= 0 {
			continue
		}
		m.wg.Add(1)
		go m.scheduler(ctx, task)
	}
}

// Wait blocks until all schedulers have stopped.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Trigger runs a task immediately and returns its error.
func (m *Manager) Trigger(ctx context.Context, name string) error {
	task, err := m.get(name)
	if err != nil {
		return err
	}
	return task.Run(ctx)
}

func (m *Manager) ListStatus() []TaskStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]TaskStatus, 0, len(m.tasks))
	for _, task := range m.tasks {
		list = append(list, task.Status())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func (m *Manager) GetLogs(name string) ([]LogEntry, error) {
	task, err := m.get(name)
	if err != nil {
		return nil, err
	}
	return task.GetLogs(), nil
}

func (m *Manager) get(name string) (*RunnableTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[name]
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	return task, nil
}

func (m *Manager) scheduler(ctx context.Context, task *RunnableTask) {
	defer m.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	_ = task.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = task.Run(ctx)
		}
	}
}
