package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"homeMatch/domain"
	"homeMatch/pkg/logger"

	"gorm.io/gorm"
)

type propertyRow struct {
	PropertyID   uint64    `gorm:"column:property_id;primaryKey"`
	PropertyType string    `gorm:"column:property_type"`
	Location     string    `gorm:"column:location"`
	PriceBand    string    `gorm:"column:price_band"`
	FeaturesRaw  []byte    `gorm:"column:features"`
	ContentHash  string    `gorm:"column:content_hash"`
	ListedAt     time.Time `gorm:"column:listed_at"`
}

func (propertyRow) TableName() string {
	return "properties"
}

// PropertyRepository reads the catalog's published feature vectors. The
// catalog is an external collaborator, so single-row lookups keep a
// last-known copy in memory and serve it when the database is down.
type PropertyRepository struct {
	DB *gorm.DB

	mu        sync.RWMutex
	lastKnown map[uint64]domain.PropertyFeatureVector
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{
		DB:        db,
		lastKnown: make(map[uint64]domain.PropertyFeatureVector),
	}
}

func (r *PropertyRepository) GetByID(ctx context.Context, propertyID uint64) (domain.PropertyFeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return domain.PropertyFeatureVector{}, fmt.Errorf("context error: %w", err)
	}

	var row propertyRow
	err := r.DB.WithContext(ctx).First(&row, "property_id = ?", propertyID).Error
	if err == gorm.ErrRecordNotFound {
		return domain.PropertyFeatureVector{}, fmt.Errorf("property %d not found", propertyID)
	}
	if err != nil {
		r.mu.RLock()
		stale, ok := r.lastKnown[propertyID]
		r.mu.RUnlock()
		if ok {
			logger.Warn("catalog query failed, serving last known vector",
				"property_id", propertyID, "error", err)
			return stale, nil
		}
		return domain.PropertyFeatureVector{}, fmt.Errorf("%w: properties: %v", domain.ErrUpstreamUnavailable, err)
	}

	pv, err := rowToVector(row)
	if err != nil {
		return domain.PropertyFeatureVector{}, err
	}

	r.mu.Lock()
	r.lastKnown[propertyID] = pv
	r.mu.Unlock()

	return pv, nil
}

func (r *PropertyRepository) ListByRegion(ctx context.Context, region string, limit int) ([]domain.PropertyFeatureVector, error) {
	return r.list(ctx, limit, "location = ?", region)
}

func (r *PropertyRepository) ListAll(ctx context.Context, limit int) ([]domain.PropertyFeatureVector, error) {
	return r.list(ctx, limit)
}

func (r *PropertyRepository) list(ctx context.Context, limit int, conds ...interface{}) ([]domain.PropertyFeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}

	q := r.DB.WithContext(ctx)
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}

	var rows []propertyRow
	if err := q.Order("listed_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: properties: %v", domain.ErrUpstreamUnavailable, err)
	}

	out := make([]domain.PropertyFeatureVector, 0, len(rows))
	for _, row := range rows {
		pv, err := rowToVector(row)
		if err != nil {
			logger.Warn("skipping property with bad feature payload",
				"property_id", row.PropertyID, "error", err)
			continue
		}
		out = append(out, pv)
	}

	return out, nil
}

func rowToVector(row propertyRow) (domain.PropertyFeatureVector, error) {
	features := make(map[string]float64)
	if len(row.FeaturesRaw) > 0 {
		if err := json.Unmarshal(row.FeaturesRaw, &features); err != nil {
			return domain.PropertyFeatureVector{}, fmt.Errorf("failed to unmarshal features for property %d: %w", row.PropertyID, err)
		}
	}

	return domain.PropertyFeatureVector{
		PropertyID:   row.PropertyID,
		PropertyType: row.PropertyType,
		Location:     row.Location,
		PriceBand:    row.PriceBand,
		Features:     features,
		ContentHash:  row.ContentHash,
		ListedAt:     row.ListedAt,
	}, nil
}
