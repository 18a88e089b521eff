package in_mem

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/google/uuid"
)

type Store struct {
	storageLock sync.RWMutex
	storage     map[uuid.UUID]*report.Report
}

func NewStore() *Store {
	return &Store{
		storage: make(map[uuid.UUID]*report.Report),
	}
}

func (s *Store) Save(_ context.Context, r *report.Report) error {
	if r.Meta.RunID == uuid.Nil {
		return fmt.Errorf("report has no run id")
	}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()
	s.storage[r.Meta.RunID] = r

	slog.Info("run saved to in-memory storage", "run", r.Meta.RunID, "rows", len(r.Rows))
	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*report.Report, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	r, ok := s.storage[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, storage.ErrRunNotFound)
	}
	return r, nil
}

func (s *Store) List(_ context.Context) ([]report.Meta, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	out := make([]report.Meta, 0, len(s.storage))
	for _, r := range s.storage {
		out = append(out, r.Meta)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (s *Store) Healthy(context.Context) bool {
	return true
}
