package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"homeMatch/business/preference"
	"homeMatch/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileSnapshotRepository struct {
	DB *gorm.DB
}

var _ preference.SnapshotRepository = (*ProfileSnapshotRepository)(nil)

func NewProfileSnapshotRepository(db *gorm.DB) *ProfileSnapshotRepository {
	return &ProfileSnapshotRepository{DB: db}
}

type profileRow struct {
	UserID      uint   `gorm:"column:user_id;primaryKey"`
	ProfileJSON []byte `gorm:"column:profile_json"`
}

func (profileRow) TableName() string {
	return "preference_profiles"
}

// LoadAll reads every persisted profile for warm start. Rows that fail to
// unmarshal are skipped; a corrupt snapshot must not block boot.
func (r *ProfileSnapshotRepository) LoadAll(ctx context.Context) ([]domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []profileRow
	if err := r.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query preference_profiles: %w", err)
	}

	profiles := make([]domain.UserProfile, 0, len(rows))
	for _, row := range rows {
		var p domain.UserProfile
		if err := json.Unmarshal(row.ProfileJSON, &p); err != nil {
			continue
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

func (r *ProfileSnapshotRepository) Save(ctx context.Context, profile domain.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	row := profileRow{
		UserID:      profile.UserID,
		ProfileJSON: raw,
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert preference_profiles: %w", err)
	}

	return nil
}
