package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-process Store for testing and single-node development.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string]*Entry),
	}
}

func (s *MemStore) Enqueue(ctx context.Context, e *Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.Status == "" {
		cp.Status = StatusPending
	}
	if cp.Priority == "" {
		cp.Priority = PriorityMedium
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.entries[cp.ID] = &cp
	return cp.ID, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *MemStore) List(ctx context.Context, status, workflow string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if status != "" && e.Status != status {
			continue
		}
		if workflow != "" && e.Workflow != workflow {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) Resolve(ctx context.Context, id, status, reviewerID, notes string) (*Entry, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, fmt.Errorf("invalid resolution status: %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("review queue entry not found: %s", id)
	}
	now := time.Now().UTC()
	e.Status = status
	e.ReviewerID = reviewerID
	e.ReviewerNotes = notes
	e.ResolvedAt = &now
	cp := *e
	return &cp, nil
}

func (s *MemStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out Stats
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	for _, e := range s.entries {
		switch e.Status {
		case StatusPending:
			out.Pending++
		case StatusApproved:
			out.Approved++
		case StatusRejected:
			out.Rejected++
		}
		if !e.CreatedAt.Before(dayStart) {
			out.TodayTotal++
		}
	}
	return &out, nil
}
