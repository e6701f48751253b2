package memory

import (
	"context"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"maps"
	"sync"
)

// Ensure StatusStore implements the interface
var _ repo.StatusStore = (*StatusStore)(nil)

// StatusStore keeps the latest cycle report in process memory.
type StatusStore struct {
	mu     sync.RWMutex
	latest *model.CycleReport
}

// NewStatusStore creates an empty StatusStore.
func NewStatusStore() *StatusStore {
	return &StatusStore{}
}

// Save replaces the latest report with a copy of report.
func (s *StatusStore) Save(_ context.Context, report *model.CycleReport) error {
	cp := clone(report)
	s.mu.Lock()
	s.latest = cp
	s.mu.Unlock()
	return nil
}

// Latest returns a copy of the latest report.
func (s *StatusStore) Latest(_ context.Context) (*model.CycleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, repo.ErrNotFound
	}
	return clone(s.latest), nil
}

// clone copies the report including its maps.
func clone(r *model.CycleReport) *model.CycleReport {
	cp := *r
	cp.Stores = maps.Clone(r.Stores)
	cp.Failed = maps.Clone(r.Failed)
	return &cp
}
