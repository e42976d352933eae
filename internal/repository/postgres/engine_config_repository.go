package postgres

import (
	"context"
	"homeMatch/business/recommend"
	"homeMatch/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EngineConfigRepository struct {
	DB *gorm.DB
}

var _ recommend.ConfigRepository = (*EngineConfigRepository)(nil)

func NewEngineConfigRepository(db *gorm.DB) *EngineConfigRepository {
	return &EngineConfigRepository{DB: db}
}

func (r *EngineConfigRepository) GetConfig(ctx context.Context, requestType, variant string) (domain.EngineConfig, bool, error) {
	var cfg domain.EngineConfig

	err := r.DB.WithContext(ctx).
		Where("request_type = ? AND variant = ?", requestType, variant).
		First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return domain.EngineConfig{}, false, nil
	}
	if err != nil {
		return domain.EngineConfig{}, false, err
	}

	return cfg, true, nil
}

func (r *EngineConfigRepository) UpsertConfig(ctx context.Context, cfg domain.EngineConfig) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "request_type"}, {Name: "variant"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"policy",
				"w_collaborative",
				"w_content",
				"w_contextual",
				"diversity_floor",
				"max_consecutive_type",
				"scorer_timeout_ms",
				"cascade_pool_size",
				"switching_min_candidates",
				"cold_start_confidence",
				"cache_ttl_seconds",
			}),
		}).
		Create(&cfg).Error
}
