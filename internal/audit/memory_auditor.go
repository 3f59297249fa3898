package audit

import (
	"sync"

	"github.com/darmiel/verdict/internal/core"
)

// DefaultMemoryCapacity is the number of entries an InMemoryAuditor keeps unless configured otherwise.
const DefaultMemoryCapacity = 1000

var _ core.Auditor = (*InMemoryAuditor)(nil)

// InMemoryAuditor keeps the most recent entries of one process, e.g. the
// reloads and evaluations of a watch session. Once full, the oldest entry is dropped.
type InMemoryAuditor struct {
	mu       sync.Mutex
	capacity int
	entries  []core.AuditEntry
	dropped  int
}

func NewInMemoryAuditor() *InMemoryAuditor {
	return NewBoundedAuditor(DefaultMemoryCapacity)
}

// NewBoundedAuditor keeps at most capacity entries. A capacity below one means DefaultMemoryCapacity.
func NewBoundedAuditor(capacity int) *InMemoryAuditor {
	if capacity < 1 {
		capacity = DefaultMemoryCapacity
	}
	return &InMemoryAuditor{
		capacity: capacity,
		entries:  make([]core.AuditEntry, 0, min(capacity, 64)),
	}
}

func (i *InMemoryAuditor) Log(entry core.AuditEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.entries) == i.capacity {
		copy(i.entries, i.entries[1:])
		i.entries = i.entries[:len(i.entries)-1]
		i.dropped++
	}
	i.entries = append(i.entries, entry)
	return nil
}

// GetRecent returns up to limit of the newest entries, oldest first.
func (i *InMemoryAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if limit > len(i.entries) {
		limit = len(i.entries)
	}
	entries := make([]core.AuditEntry, limit)
	copy(entries, i.entries[len(i.entries)-limit:])
	return entries, nil
}

// Find returns up to limit of the newest entries matching filter, oldest first.
func (i *InMemoryAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var matches []core.AuditEntry
	for _, entry := range i.entries {
		if filter(entry) {
			matches = append(matches, entry)
		}
	}
	if len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}
	return matches, nil
}

// Dropped is the number of entries discarded because the auditor was full.
func (i *InMemoryAuditor) Dropped() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dropped
}

func (i *InMemoryAuditor) Close() error {
	return nil
}
