package recommend

import (
	"context"
	"fmt"

	"homeMatch/domain"
)

const (
	typeBoostStep     = 0.15
	locationBoostStep = 0.15
	eveningBoostStep  = 0.05
)

// ContextualScorer re-weights another scorer's raw output with in-session
// signals: candidates matching recently viewed property types or locations
// get boosted by a bounded multiplier, and the evening browse window gets
// a small static bump.
type ContextualScorer struct {
	base     Scorer
	maxBoost float64
}

func NewContextualScorer(base Scorer, cfg Config) *ContextualScorer {
	maxBoost := cfg.SessionMaxBoost
	if maxBoost < 1 {
		maxBoost = defaultSessionMaxBoost
	}
	return &ContextualScorer{base: base, maxBoost: maxBoost}
}

func (*ContextualScorer) Name() string { return ScorerContextual }

func (c *ContextualScorer) Score(
	ctx context.Context,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	session SessionContext,
) (map[uint64]float64, error) {

	base, err := c.base.Score(ctx, profile, pool, session)
	if err != nil {
		return nil, fmt.Errorf("contextual base scorer: %w", err)
	}

	recentTypes := toSet(session.RecentTypes)
	recentLocations := toSet(session.RecentLocations)

	byID := make(map[uint64]domain.PropertyFeatureVector, len(pool))
	for _, pv := range pool {
		byID[pv.PropertyID] = pv
	}

	out := make(map[uint64]float64, len(base))
	for id, score := range base {
		pv, ok := byID[id]
		if !ok {
			out[id] = score
			continue
		}

		boost := 1.0
		if _, ok := recentTypes[pv.PropertyType]; ok {
			boost += typeBoostStep
		}
		if _, ok := recentLocations[pv.Location]; ok {
			boost += locationBoostStep
		}
		if session.TimeOfDay == "evening" {
			boost += eveningBoostStep
		}
		if boost > c.maxBoost {
			boost = c.maxBoost
		}

		out[id] = score * boost
	}

	return out, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
