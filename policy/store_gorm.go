package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PolicyRow is the gorm model. The tier configuration is stored as a JSON
// blob; the database only needs to key by workflow.
type PolicyRow struct {
	Workflow  string `gorm:"primaryKey"`
	Enabled   bool
	TiersJSON string `gorm:"column:tiers_json"`
	UpdatedAt time.Time
}

func (PolicyRow) TableName() string {
	return "moderation_policies"
}

// GormStore persists policies in any gorm-supported database.
type GormStore struct {
	DB *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&PolicyRow{}); err != nil {
		return nil, fmt.Errorf("policy schema migration failed: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (s *GormStore) GetPolicy(ctx context.Context, workflow string) (*Policy, error) {
	var row PolicyRow
	err := s.DB.WithContext(ctx).First(&row, "workflow = ?", workflow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rowToPolicy(&row)
}

func (s *GormStore) SavePolicy(ctx context.Context, p *Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	tiersJSON, err := json.Marshal(p.Tiers)
	if err != nil {
		return err
	}
	row := PolicyRow{
		Workflow:  p.Workflow,
		Enabled:   p.Enabled,
		TiersJSON: string(tiersJSON),
		UpdatedAt: time.Now().UTC(),
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workflow"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (s *GormStore) ListPolicies(ctx context.Context) ([]*Policy, error) {
	var rows []PolicyRow
	if err := s.DB.WithContext(ctx).Order("workflow").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*Policy, 0, len(rows))
	for i := range rows {
		p, err := rowToPolicy(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func rowToPolicy(row *PolicyRow) (*Policy, error) {
	var tiers []TierConfig
	if err := json.Unmarshal([]byte(row.TiersJSON), &tiers); err != nil {
		return nil, fmt.Errorf("parsing stored tier config for %s: %w", row.Workflow, err)
	}
	return &Policy{
		Workflow:  row.Workflow,
		Enabled:   row.Enabled,
		Tiers:     tiers,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
