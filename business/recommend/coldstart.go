package recommend

import (
	"context"
	"fmt"
	"strings"

	"homeMatch/domain"
	"homeMatch/pkg/logger"
)

// PopularitySource reads the precomputed regional popularity ranking.
type PopularitySource interface {
	GetByRegion(ctx context.Context, region string, limit int) ([]domain.PopularityEntry, error)
}

// OnboardingSource reads explicitly supplied initial preferences from the
// onboarding questionnaire, keyed by feature dimension.
type OnboardingSource interface {
	GetPreferences(ctx context.Context, userID uint) (map[string]float64, bool, error)
}

// ColdStartResolver produces candidates for users whose profile is too
// thin to rank via collaborative or content signals. Explicit onboarding
// preferences dominate regional popularity 70/30 when present.
type ColdStartResolver struct {
	popularity PopularitySource
	onboarding OnboardingSource

	explicitWeight float64
}

func NewColdStartResolver(popularity PopularitySource, onboarding OnboardingSource, cfg Config) *ColdStartResolver {
	w := cfg.ColdStartExplicitWeight
	if w <= 0 || w >= 1 {
		w = defaultExplicitWeight
	}
	return &ColdStartResolver{
		popularity:     popularity,
		onboarding:     onboarding,
		explicitWeight: w,
	}
}

// Resolve scores the pool and returns advisory clarifying questions the
// client may show to speed up profile growth.
func (r *ColdStartResolver) Resolve(
	ctx context.Context,
	userID uint,
	region string,
	pool []domain.PropertyFeatureVector,
) (map[uint64]float64, []string, error) {

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("context error: %w", err)
	}

	inPool := make(map[uint64]domain.PropertyFeatureVector, len(pool))
	for _, pv := range pool {
		inPool[pv.PropertyID] = pv
	}

	popScores := r.popularityScores(ctx, region, inPool)

	var explicit map[string]float64
	if r.onboarding != nil {
		prefs, ok, err := r.onboarding.GetPreferences(ctx, userID)
		if err != nil {
			logger.Warn("onboarding preferences unavailable", "user_id", userID, "error", err)
		} else if ok {
			explicit = prefs
		}
	}

	questions := clarifyingQuestions(explicit)

	if len(explicit) == 0 {
		if len(popScores) == 0 {
			return nil, questions, fmt.Errorf("%w: no popularity data for region %q", domain.ErrInsufficientData, region)
		}
		return popScores, questions, nil
	}

	explicitScores := make(map[uint64]float64, len(inPool))
	for id, pv := range inPool {
		explicitScores[id] = dotShared(explicit, pv.Features)
	}
	explicitNorm := normalizeScores(explicitScores)

	blended := make(map[uint64]float64, len(inPool))
	for id := range inPool {
		blended[id] = r.explicitWeight*explicitNorm[id] + (1-r.explicitWeight)*popScores[id]
	}

	return blended, questions, nil
}

func (r *ColdStartResolver) popularityScores(
	ctx context.Context,
	region string,
	inPool map[uint64]domain.PropertyFeatureVector,
) map[uint64]float64 {

	if r.popularity == nil {
		return map[uint64]float64{}
	}

	rows, err := r.popularity.GetByRegion(ctx, region, len(inPool)*3)
	if err != nil {
		logger.Warn("regional popularity unavailable", "region", region, "error", err)
		return map[uint64]float64{}
	}

	raw := make(map[uint64]float64)
	for _, row := range rows {
		if _, ok := inPool[row.PropertyID]; ok {
			raw[row.PropertyID] = row.Score
		}
	}

	return normalizeScores(raw)
}

// clarifyingQuestions covers the dimension groups the questionnaire has
// not answered yet. Advisory output only, never scored.
func clarifyingQuestions(explicit map[string]float64) []string {
	covered := map[string]bool{}
	for dim := range explicit {
		if i := strings.IndexByte(dim, ':'); i > 0 {
			covered[dim[:i]] = true
		}
	}

	questions := make([]string, 0, 4)
	if !covered["location"] {
		questions = append(questions, "Which neighborhoods would you like to live in?")
	}
	if !covered["type"] {
		questions = append(questions, "Are you looking for an apartment, a house, or something else?")
	}
	if !covered["price"] {
		questions = append(questions, "What price range fits your budget?")
	}
	if !covered["amenity"] {
		questions = append(questions, "Which amenities matter most to you?")
	}

	return questions
}
