// Package tasks runs named units of work on an interval and keeps their recent logs.
package tasks

import (
	"context"
	"time"

	"github.com/darmiel/verdict/internal/logging"
)

// TaskFunc is the unit of work.
// The logger stores the output of the current run on the task.
type TaskFunc func(ctx context.Context, logger logging.InternalLogger) error

type TaskDefinition struct {
	Name string

	// Interval between runs. Zero means the task only runs when triggered.
	Interval time.Duration

	// Timeout bounds a single run. Zero means DefaultTimeout.
	Timeout time.Duration

	Handler TaskFunc
}

type TaskStatus struct {
	Name       string    `json:"name,omitempty"`
	Running    bool      `json:"running,omitempty"`
	Runs       int       `json:"runs"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}
