package usage

import (
	"context"
	"sync"
)

type MemTracker struct {
	lk     sync.Mutex
	counts map[string]int
}

var _ Tracker = (*MemTracker)(nil)

func NewMemTracker() *MemTracker {
	return &MemTracker{
		counts: make(map[string]int),
	}
}

func (t *MemTracker) RecordCall(ctx context.Context, provider, operation string, ok bool) error {
	t.lk.Lock()
	defer t.lk.Unlock()
	outcome := outcomeOf(ok)
	for _, p := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		t.counts[periodBucket(provider, operation, outcome, p)]++
	}
	return nil
}

func (t *MemTracker) GetCount(ctx context.Context, provider, operation, outcome, period string) (int, error) {
	t.lk.Lock()
	defer t.lk.Unlock()
	return t.counts[periodBucket(provider, operation, outcome, period)], nil
}
