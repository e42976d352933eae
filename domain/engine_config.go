package domain

// Combination policies for the hybrid combiner.
const (
	PolicyWeighted  = "weighted"
	PolicySwitching = "switching"
	PolicyCascade   = "cascade"
)

// EngineConfig is the per-(request type, variant) tuning row. Missing
// fields fall back to the engine defaults when loaded.
type EngineConfig struct {
	RequestType string `json:"request_type" gorm:"column:request_type"`
	Variant     string `json:"variant" gorm:"column:variant"`

	Policy string `json:"policy" gorm:"column:policy"`

	WCollaborative float64 `json:"w_collaborative" gorm:"column:w_collaborative"`
	WContent       float64 `json:"w_content" gorm:"column:w_content"`
	WContextual    float64 `json:"w_contextual" gorm:"column:w_contextual"`

	DiversityFloor     float64 `json:"diversity_floor" gorm:"column:diversity_floor"`
	MaxConsecutiveType int     `json:"max_consecutive_type" gorm:"column:max_consecutive_type"`

	ScorerTimeoutMS        int `json:"scorer_timeout_ms" gorm:"column:scorer_timeout_ms"`
	CascadePoolSize        int `json:"cascade_pool_size" gorm:"column:cascade_pool_size"`
	SwitchingMinCandidates int `json:"switching_min_candidates" gorm:"column:switching_min_candidates"`

	ColdStartConfidence float64 `json:"cold_start_confidence" gorm:"column:cold_start_confidence"`
	CacheTTLSeconds     int     `json:"cache_ttl_seconds" gorm:"column:cache_ttl_seconds"`
}

func (EngineConfig) TableName() string {
	return "engine_configs"
}
