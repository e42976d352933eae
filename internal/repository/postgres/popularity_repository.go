package postgres

import (
	"context"
	"fmt"
	"homeMatch/domain"

	"gorm.io/gorm"
)

type PopularityRepository struct {
	DB *gorm.DB
}

func NewPopularityRepository(db *gorm.DB) *PopularityRepository {
	return &PopularityRepository{
		DB: db,
	}
}

// GetByRegion returns the top-N precomputed popularity entries for a
// region ordered by score DESC. An empty region falls back to the global
// ranking row set.
func (r *PopularityRepository) GetByRegion(
	ctx context.Context,
	region string,
	limit int,
) ([]domain.PopularityEntry, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}
	if region == "" {
		region = "global"
	}

	var entries []domain.PopularityEntry
	if err := r.DB.WithContext(ctx).
		Where("region = ?", region).
		Order("score DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query regional_popularity: %w", err)
	}

	return entries, nil
}
