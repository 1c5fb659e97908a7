// Package queue is the human review queue: content that was blocked or
// flagged lands here as an immutable record, and reviewers resolve entries by
// approving or rejecting them. Entries are never deleted, only
// status-transitioned, so the queue doubles as the moderation audit trail.
package queue

import (
	"context"
	"time"
)

// entry status
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// entry priority, ordered low to critical
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Entry is one review-queue record. Content is stored twice: the raw original
// for the audit trail, and a defanged copy that the review UI displays so
// operators cannot accidentally follow a flagged link. The full verdict that
// put the entry here is embedded as JSON.
type Entry struct {
	ID              string `gorm:"primaryKey"`
	Workflow        string `gorm:"index"`
	ContentType     string
	Content         string
	DefangedContent string
	ContentHash     string
	AuthorID        string
	AuthorContact   string
	ContentID       string
	ChannelID       string
	GroupID         string
	VerdictJSON     string
	OverallAction   string
	Status          string `gorm:"index"`
	Priority        string
	CreatedAt       time.Time `gorm:"index"`
	ResolvedAt      *time.Time
	ReviewerID      string
	ReviewerNotes   string
}

func (Entry) TableName() string {
	return "review_queue_entries"
}

// Store is the review-queue persistence interface consumed by the pipeline
// and the admin surface.
type Store interface {
	Enqueue(ctx context.Context, e *Entry) (string, error)
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, status, workflow string, limit int) ([]Entry, error)
	Resolve(ctx context.Context, id, status, reviewerID, notes string) (*Entry, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Stats is the aggregate view the admin dashboard shows.
type Stats struct {
	Pending    int64 `json:"pending"`
	Approved   int64 `json:"approved"`
	Rejected   int64 `json:"rejected"`
	TodayTotal int64 `json:"todayTotal"`
}
