package recommend

import (
	"context"
	"time"

	"homeMatch/domain"
)

// Scorer names double as weight keys and metric labels.
const (
	ScorerCollaborative = "collaborative"
	ScorerContent       = "content"
	ScorerContextual    = "contextual"
	ScorerColdStart     = "cold-start"
)

type Config struct {
	Policy  string
	Weights map[string]float64

	CollabK            int
	CollabMinSim       float64
	CollabMinNeighbors int

	SessionMaxBoost float64

	ColdStartConfidence     float64
	ColdStartExplicitWeight float64

	DiversityFloor     float64
	MaxConsecutiveType int

	ScorerTimeout          time.Duration
	CascadePoolSize        int
	SwitchingMinCandidates int

	ResultTTL     time.Duration
	ContextualTTL time.Duration
	ColdStartTTL  time.Duration

	MaxResults int
}

const (
	defaultPolicy              = domain.PolicyWeighted
	defaultCollabK             = 50
	defaultCollabMinSim        = 0.1
	defaultCollabMinNeighbors  = 5
	defaultSessionMaxBoost     = 1.3
	defaultColdStartConfidence = 0.2
	defaultExplicitWeight      = 0.7
	defaultDiversityFloor      = 0.3
	defaultMaxConsecutiveType  = 2
	defaultScorerTimeout       = 200 * time.Millisecond
	defaultCascadePoolSize     = 50
	defaultSwitchingMinCands   = 10
	defaultMaxResults          = 10
)

func DefaultConfig() Config {
	return Config{
		Policy: defaultPolicy,
		Weights: map[string]float64{
			ScorerCollaborative: 0.4,
			ScorerContent:       0.4,
			ScorerContextual:    0.2,
		},
		CollabK:            defaultCollabK,
		CollabMinSim:       defaultCollabMinSim,
		CollabMinNeighbors: defaultCollabMinNeighbors,

		SessionMaxBoost: defaultSessionMaxBoost,

		ColdStartConfidence:     defaultColdStartConfidence,
		ColdStartExplicitWeight: defaultExplicitWeight,

		DiversityFloor:     defaultDiversityFloor,
		MaxConsecutiveType: defaultMaxConsecutiveType,

		ScorerTimeout:          defaultScorerTimeout,
		CascadePoolSize:        defaultCascadePoolSize,
		SwitchingMinCandidates: defaultSwitchingMinCands,

		ResultTTL:     15 * time.Minute,
		ContextualTTL: 5 * time.Minute,
		ColdStartTTL:  45 * time.Minute,

		MaxResults: defaultMaxResults,
	}
}

// ConfigRepository reads per-(request type, variant) overrides from the DB.
type ConfigRepository interface {
	GetConfig(ctx context.Context, requestType, variant string) (domain.EngineConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg domain.EngineConfig) error
}

// resolveConfig overlays the stored row (if any) onto the defaults so any
// missing field keeps a sane fallback.
func (s *Service) resolveConfig(ctx context.Context, requestType, variant string) Config {
	cfg := s.defaultCfg

	if s.cfgRepo == nil {
		return cfg
	}

	row, ok, err := s.cfgRepo.GetConfig(ctx, requestType, variant)
	if err != nil || !ok {
		return cfg
	}

	if row.Policy != "" {
		cfg.Policy = row.Policy
	}
	if row.WCollaborative > 0 || row.WContent > 0 || row.WContextual > 0 {
		cfg.Weights = map[string]float64{
			ScorerCollaborative: row.WCollaborative,
			ScorerContent:       row.WContent,
			ScorerContextual:    row.WContextual,
		}
	}
	if row.DiversityFloor > 0 {
		cfg.DiversityFloor = row.DiversityFloor
	}
	if row.MaxConsecutiveType > 0 {
		cfg.MaxConsecutiveType = row.MaxConsecutiveType
	}
	if row.ScorerTimeoutMS > 0 {
		cfg.ScorerTimeout = time.Duration(row.ScorerTimeoutMS) * time.Millisecond
	}
	if row.CascadePoolSize > 0 {
		cfg.CascadePoolSize = row.CascadePoolSize
	}
	if row.SwitchingMinCandidates > 0 {
		cfg.SwitchingMinCandidates = row.SwitchingMinCandidates
	}
	if row.ColdStartConfidence > 0 {
		cfg.ColdStartConfidence = row.ColdStartConfidence
	}
	if row.CacheTTLSeconds > 0 {
		cfg.ResultTTL = time.Duration(row.CacheTTLSeconds) * time.Second
	}

	return cfg
}
