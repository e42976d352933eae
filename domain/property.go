package domain

import "time"

// CREATE TABLE public.properties (
//     property_id    BIGINT PRIMARY KEY,
//     property_type  TEXT NOT NULL,
//     location       TEXT NOT NULL,
//     price_band     TEXT,
//     features       JSONB NOT NULL,
//     content_hash   TEXT NOT NULL,
//     listed_at      TIMESTAMPTZ,
//     created_at     TIMESTAMPTZ DEFAULT NOW()
// );

// PropertyFeatureVector is the catalog's published view of a property over
// the same feature-dimension keyspace as UserProfile. Immutable once
// published; ContentHash versions the payload.
type PropertyFeatureVector struct {
	PropertyID   uint64             `json:"property_id"`
	PropertyType string             `json:"property_type"`
	Location     string             `json:"location"`
	PriceBand    string             `json:"price_band"`
	Features     map[string]float64 `json:"features"`
	ContentHash  string             `json:"content_hash"`
	ListedAt     time.Time          `json:"listed_at"`
}

// PopularityEntry is one row of the precomputed regional popularity ranking
// used by the cold-start path.
type PopularityEntry struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Region     string  `gorm:"column:region;not null" json:"region"`
	PropertyID uint64  `gorm:"column:property_id;not null" json:"property_id"`
	Score      float64 `gorm:"column:score;not null" json:"score"`
}

func (PopularityEntry) TableName() string {
	return "regional_popularity"
}
