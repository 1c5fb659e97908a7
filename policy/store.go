package policy

import (
	"context"
	"sync"
)

// Store is the persistence interface for workflow policies. GetPolicy returns
// (nil, nil) for an unknown workflow; callers fall back to DefaultPolicy.
type Store interface {
	GetPolicy(ctx context.Context, workflow string) (*Policy, error)
	SavePolicy(ctx context.Context, p *Policy) error
	ListPolicies(ctx context.Context) ([]*Policy, error)
}

// MemStore is an in-process Store for testing and single-node development.
type MemStore struct {
	mu       sync.RWMutex
	policies map[string]*Policy
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		policies: make(map[string]*Policy),
	}
}

func (s *MemStore) GetPolicy(ctx context.Context, workflow string) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[workflow]
	if !ok {
		return nil, nil
	}
	out := *p
	out.Tiers = append([]TierConfig{}, p.Tiers...)
	return &out, nil
}

func (s *MemStore) SavePolicy(ctx context.Context, p *Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Tiers = append([]TierConfig{}, p.Tiers...)
	s.policies[p.Workflow] = &cp
	return nil
}

func (s *MemStore) ListPolicies(ctx context.Context) ([]*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Policy, 0, len(s.policies))
	for _, p := range s.policies {
		cp := *p
		cp.Tiers = append([]TierConfig{}, p.Tiers...)
		out = append(out, &cp)
	}
	return out, nil
}
