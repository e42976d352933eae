package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"homeMatch/business/recommend"

	"gorm.io/gorm"
)

type onboardingRow struct {
	UserID          uint   `gorm:"column:user_id;primaryKey"`
	PreferencesJSON []byte `gorm:"column:preferences_json"`
}

func (onboardingRow) TableName() string {
	return "onboarding_preferences"
}

// OnboardingRepository reads the explicit preferences collected by the
// signup questionnaire, keyed by feature dimension.
type OnboardingRepository struct {
	DB *gorm.DB
}

var _ recommend.OnboardingSource = (*OnboardingRepository)(nil)

func NewOnboardingRepository(db *gorm.DB) *OnboardingRepository {
	return &OnboardingRepository{DB: db}
}

func (r *OnboardingRepository) GetPreferences(ctx context.Context, userID uint) (map[string]float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("context error: %w", err)
	}

	var row onboardingRow
	err := r.DB.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query onboarding_preferences: %w", err)
	}

	prefs := make(map[string]float64)
	if err := json.Unmarshal(row.PreferencesJSON, &prefs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal preferences for user %d: %w", userID, err)
	}

	return prefs, len(prefs) > 0, nil
}

// SavePreferences stores the questionnaire answers, replacing earlier
// submissions.
func (r *OnboardingRepository) SavePreferences(ctx context.Context, userID uint, prefs map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	row := onboardingRow{
		UserID:          userID,
		PreferencesJSON: raw,
	}

	return r.DB.WithContext(ctx).Save(&row).Error
}
