package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/haven-social/guardian/linksafety"
	"github.com/haven-social/guardian/queue"
	"github.com/haven-social/guardian/util"
)

func (eng *Engine) enqueue(ctx context.Context, logger *slog.Logger, c Content, v *Verdict) {
	if eng.Queue == nil {
		return
	}

	verdictJSON, err := json.Marshal(v)
	if err != nil {
		logger.Error("marshaling verdict for queue", "err", err)
		return
	}

	overall := "pending_review"
	if v.Action == ActionBlock {
		overall = "blocked"
	}

	entry := &queue.Entry{
		Workflow:        c.Workflow,
		ContentType:     c.Type,
		Content:         c.Text,
		DefangedContent: linksafety.DefangText(c.Text),
		ContentHash:     util.HashOfString(c.Text),
		AuthorID:        c.AuthorID,
		AuthorContact:   c.AuthorContact,
		ContentID:       c.ContentID,
		ChannelID:       c.ChannelID,
		GroupID:         c.GroupID,
		VerdictJSON:     string(verdictJSON),
		OverallAction:   overall,
		Priority:        entryPriority(v),
	}
	id, err := eng.Queue.Enqueue(ctx, entry)
	if err != nil {
		logger.Error("review queue enqueue failed", "err", err)
		return
	}
	queueEnqueued.WithLabelValues(c.Workflow, entry.Priority).Inc()
	logger.Info("review queue entry created", "entryId", id, "priority", entry.Priority)
}

// entryPriority ranks a queue entry from the verdict trace: a critical-risk
// URL always wins; AI severity at or above the high mark, any lexicon match,
// or any confirmed-unsafe URL ranks high; everything else is medium.
func entryPriority(v *Verdict) string {
	high := false
	for _, tier := range v.Tiers {
		for _, f := range tier.URLs {
			if f.Risk == linksafety.RiskCritical {
				return queue.PriorityCritical
			}
			if !f.Safe {
				high = true
			}
		}
		if len(tier.Matches) > 0 {
			high = true
		}
		for _, cf := range tier.Categories {
			if cf.Severity >= aiHighSeverity {
				high = true
			}
		}
	}
	if high {
		return queue.PriorityHigh
	}
	return queue.PriorityMedium
}
