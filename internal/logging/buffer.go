package logging

import (
	"fmt"
	"sync"
)

// BufferAdapter captures log entries in memory, in write order. A run-scoped
// logger carries one so the engine can hand the caller the ordered progress
// lines it emitted.
type BufferAdapter struct {
	name  string
	mu    sync.Mutex
	lines []string
}

// NewBufferAdapter creates a new buffer adapter
func NewBufferAdapter(name string) *BufferAdapter {
	return &BufferAdapter{name: name}
}

// Write appends the entry's message to the buffer. Only the message is kept;
// structured fields stay on the other adapters.
func (a *BufferAdapter) Write(entry *LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	line := entry.Message
	if entry.Level >= WarnLevel {
		line = fmt.Sprintf("[%s] %s", entry.Level.String(), entry.Message)
	}
	a.lines = append(a.lines, line)
	return nil
}

// Lines returns a copy of the captured lines in write order
func (a *BufferAdapter) Lines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, len(a.lines))
	copy(out, a.lines)
	return out
}

// Close is a no-op for the buffer adapter
func (a *BufferAdapter) Close() error {
	return nil
}

// Name returns the name of the adapter
func (a *BufferAdapter) Name() string {
	return a.name
}
