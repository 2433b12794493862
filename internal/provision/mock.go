package provision

import (
	"context"
	"sync"
)

// Mock records restriction calls for tests.
type Mock struct {
	mu       sync.Mutex
	Applied  []string
	Removed  []string
	ApplyErr error
}

func (m *Mock) ApplyRestriction(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	m.Applied = append(m.Applied, username)
	return nil
}

func (m *Mock) RemoveRestriction(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, username)
	return nil
}
