package recommend

import (
	"context"

	"homeMatch/domain"
)

// ContentScorer ranks candidates by weighted dot product between the
// user's preference vector and each property's feature vector over shared
// dimensions. A dimension missing on either side contributes zero, never
// a penalty.
type ContentScorer struct{}

func NewContentScorer() *ContentScorer { return &ContentScorer{} }

func (*ContentScorer) Name() string { return ScorerContent }

func (*ContentScorer) Score(
	ctx context.Context,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	_ SessionContext,
) (map[uint64]float64, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(profile.Weights) == 0 {
		return nil, domain.ErrInsufficientData
	}

	scores := make(map[uint64]float64, len(pool))
	for _, pv := range pool {
		scores[pv.PropertyID] = dotShared(profile.Weights, pv.Features)
	}

	return scores, nil
}

func dotShared(weights, features map[string]float64) float64 {
	sum := 0.0
	for dim, w := range weights {
		if fv, ok := features[dim]; ok {
			sum += w * fv
		}
	}
	return sum
}
