// Package loggingtest provides an in-memory logging.InternalLogger for tests.
package loggingtest

import (
	"fmt"
	"sync"

	"github.com/darmiel/verdict/internal/logging"
)

var _ logging.InternalLogger = (*Recorder)(nil)

// Recorder keeps formatted messages in memory, prefixed with a level tag
// ("INF", "WRN", "ERR"). It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Lines returns a copy of the recorded messages.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *Recorder) Info(format string, args ...any) {
	r.add("INF", format, args)
}

func (r *Recorder) Warn(format string, args ...any) {
	r.add("WRN", format, args)
}

func (r *Recorder) Error(format string, args ...any) {
	r.add("ERR", format, args)
}

func (r *Recorder) add(level, format string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}
