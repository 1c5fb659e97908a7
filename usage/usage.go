// Package usage tracks per-provider external call outcomes for quota
// monitoring. Counters are bucketed by time period so operators can watch
// daily spend against provider quotas.
package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	PeriodTotal = "total"
	PeriodDay   = "day"
	PeriodHour  = "hour"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

type Tracker interface {
	// RecordCall counts one external call, keyed by provider and operation.
	RecordCall(ctx context.Context, provider, operation string, ok bool) error
	GetCount(ctx context.Context, provider, operation, outcome, period string) (int, error)
}

func periodBucket(provider, operation, outcome, period string) string {
	switch period {
	case PeriodTotal:
		return fmt.Sprintf("%s/%s/%s", provider, operation, outcome)
	case PeriodDay:
		t := time.Now().UTC().Format(time.DateOnly)
		return fmt.Sprintf("%s/%s/%s/%s", provider, operation, outcome, t)
	case PeriodHour:
		t := time.Now().UTC().Format(time.RFC3339)[0:13]
		return fmt.Sprintf("%s/%s/%s/%s", provider, operation, outcome, t)
	default:
		slog.Warn("unhandled usage period", "period", period)
		return fmt.Sprintf("%s/%s/%s", provider, operation, outcome)
	}
}

func outcomeOf(ok bool) string {
	if ok {
		return OutcomeOK
	}
	return OutcomeFailed
}
