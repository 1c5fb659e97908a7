package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var moderationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "guardian_moderation_duration_sec",
	Help: "Total duration of one moderation request",
}, []string{"workflow"})

var moderationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_moderation_decisions",
	Help: "Final moderation verdicts, by action",
}, []string{"workflow", "action"})

var tierBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_tier_blocks",
	Help: "Blocking decisions, by the tier that triggered them",
}, []string{"workflow", "tier"})

var queueEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_queue_entries_created",
	Help: "Review queue entries created by the pipeline",
}, []string{"workflow", "priority"})
