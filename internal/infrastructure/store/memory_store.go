package store

import (
	"context"
	"sync"

	"github.com/openfooty/schedsync/internal/domain/schedule"
)

// MemoryStore is an in-process ScheduleStore for tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	exists bool
	state  schedule.RunOutput
	writes int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Exists(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists, nil
}

func (s *MemoryStore) ReadSequence(context.Context) ([]schedule.SequenceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.SequenceEntry(nil), s.state.Sequence...), nil
}

func (s *MemoryStore) ReadSchedule(context.Context) ([]schedule.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.Record(nil), s.state.Schedule...), nil
}

func (s *MemoryStore) WriteRun(_ context.Context, out schedule.RunOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = schedule.RunOutput{
		Sequence:   append([]schedule.SequenceEntry(nil), out.Sequence...),
		Schedule:   append([]schedule.Record(nil), out.Schedule...),
		UpdateInfo: append([]schedule.CountRow(nil), out.UpdateInfo...),
		Summary:    append([]schedule.CountRow(nil), out.Summary...),
	}
	s.exists = true
	s.writes++
	return nil
}

// Snapshot returns the last written run for assertions.
func (s *MemoryStore) Snapshot() schedule.RunOutput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Writes reports how many runs have been persisted.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
