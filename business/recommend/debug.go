package recommend

import (
	"context"
	"fmt"

	"homeMatch/domain"
	"homeMatch/pkg/logger"
)

// DebugRecommend runs the scoring path without the cache and returns the
// per-scorer component breakdown for inspection. Intended for operators,
// not for serving traffic.
func (s *Service) DebugRecommend(ctx context.Context, req Request) ([]domain.DebugCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	variant := "control"
	if s.variants != nil && s.experimentName != "" {
		if asn, err := s.variants.Assign(ctx, s.experimentName, req.UserID); err == nil {
			variant = asn.Variant
		}
	}
	cfg := s.resolveConfig(ctx, req.RequestType, variant)

	profile := s.prefs.GetProfile(ctx, req.UserID)

	pool, err := s.loadPool(ctx, req)
	if err != nil {
		return nil, err
	}
	pool = applyExclusions(pool, req.Exclude)
	if len(pool) == 0 {
		return []domain.DebugCandidate{}, nil
	}
	byID := indexPool(pool)

	logger.Debug("debug_recommend",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", req.UserID,
		"request_type", req.RequestType,
		"variant", variant,
	)

	outputs, _ := s.fanOut(ctx, s.scorersFor(req.RequestType), profile, pool, req.Session, cfg.ScorerTimeout)

	ranked := combine(outputs, cfg, byID)
	if len(ranked) > req.MaxResults {
		ranked = ranked[:req.MaxResults]
	}

	rawByScorer := make(map[string]map[uint64]float64, len(outputs))
	for _, out := range outputs {
		rawByScorer[out.name] = out.raw
	}

	debug := make([]domain.DebugCandidate, 0, len(ranked))
	for _, c := range ranked {
		raw := make(map[string]float64, len(rawByScorer))
		for name, scores := range rawByScorer {
			if v, ok := scores[c.PropertyID]; ok {
				raw[name] = v
			}
		}

		debug = append(debug, domain.DebugCandidate{
			PropertyID:   c.PropertyID,
			PropertyType: c.PropertyType,
			RawScores:    raw,
			Normalized:   c.Components,
			FinalScore:   c.Score,
			Policy:       cfg.Policy,
			Variant:      variant,
		})
	}

	return debug, nil
}
