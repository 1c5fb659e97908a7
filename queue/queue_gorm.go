package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore persists queue entries in any gorm-supported database. Entry IDs
// are UUIDs so concurrent moderation requests never contend on a shared
// sequence.
type GormStore struct {
	DB *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("review queue schema migration failed: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (s *GormStore) Enqueue(ctx context.Context, e *Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if e.Priority == "" {
		e.Priority = PriorityMedium
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		return "", err
	}
	return e.ID, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := s.DB.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *GormStore) List(ctx context.Context, status, workflow string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if workflow != "" {
		q = q.Where("workflow = ?", workflow)
	}
	var entries []Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Resolve sets the reviewer decision on an entry. Resolving an already
// resolved entry overwrites the reviewer fields (last-write-wins).
func (s *GormStore) Resolve(ctx context.Context, id, status, reviewerID, notes string) (*Entry, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, fmt.Errorf("invalid resolution status: %q", status)
	}
	now := time.Now().UTC()
	res := s.DB.WithContext(ctx).Model(&Entry{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":         status,
		"reviewer_id":    reviewerID,
		"reviewer_notes": notes,
		"resolved_at":    &now,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("review queue entry not found: %s", id)
	}
	return s.Get(ctx, id)
}

func (s *GormStore) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	db := s.DB.WithContext(ctx).Model(&Entry{})
	if err := db.Where("status = ?", StatusPending).Count(&out.Pending).Error; err != nil {
		return nil, err
	}
	db = s.DB.WithContext(ctx).Model(&Entry{})
	if err := db.Where("status = ?", StatusApproved).Count(&out.Approved).Error; err != nil {
		return nil, err
	}
	db = s.DB.WithContext(ctx).Model(&Entry{})
	if err := db.Where("status = ?", StatusRejected).Count(&out.Rejected).Error; err != nil {
		return nil, err
	}
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	db = s.DB.WithContext(ctx).Model(&Entry{})
	if err := db.Where("created_at >= ?", dayStart).Count(&out.TodayTotal).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
