package buffer

import (
	"context"
	"sync"
)

// Memory is an in-memory Source and Sink, mostly useful for tests and for
// dry runs where the final text is only inspected.
type Memory struct {
	mu      sync.Mutex
	content []byte
	writes  int
}

// NewMemory creates a Memory holding content
func NewMemory(content string) *Memory {
	return &Memory{content: []byte(content)}
}

func (m *Memory) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.content))
	copy(out, m.content)
	return out, nil
}

func (m *Memory) Write(ctx context.Context, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = append([]byte(nil), content...)
	m.writes++
	return nil
}

// String returns the current content
func (m *Memory) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.content)
}

// Writes returns how many times Write was called
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
