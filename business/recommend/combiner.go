package recommend

import (
	"sort"

	"homeMatch/domain"
)

// combine merges normalized scorer outputs per the configured policy and
// returns candidates sorted with the deterministic tie-break (recency,
// then property id).
func combine(
	outputs []scorerOutput,
	cfg Config,
	byID map[uint64]domain.PropertyFeatureVector,
) []domain.ScoredCandidate {

	var merged map[uint64]map[string]float64

	switch cfg.Policy {
	case domain.PolicySwitching:
		merged = switchingMerge(outputs, cfg)
	default:
		merged = weightedUnion(outputs)
	}

	candidates := make([]domain.ScoredCandidate, 0, len(merged))
	for id, components := range merged {
		var final float64
		switch cfg.Policy {
		case domain.PolicySwitching, domain.PolicyCascade:
			// exactly one contributing scorer: the picked output for
			// switching, the last surviving stage for cascade. Its
			// normalized score stands as-is; the configured weights only
			// apply to the weighted policy.
			for _, v := range components {
				final = v
			}
		default:
			for name, v := range components {
				final += cfg.Weights[name] * v
			}
		}

		pv := byID[id]
		candidates = append(candidates, domain.ScoredCandidate{
			PropertyID:   id,
			PropertyType: pv.PropertyType,
			Score:        clamp01(final),
			Components:   components,
		})
	}

	sortCandidates(candidates, byID)
	return candidates
}

// weightedUnion collects every scorer's normalized score per candidate;
// a candidate absent from a scorer's output counts as 0 for that scorer.
func weightedUnion(outputs []scorerOutput) map[uint64]map[string]float64 {
	merged := make(map[uint64]map[string]float64)
	for _, out := range outputs {
		for id, v := range out.norm {
			if merged[id] == nil {
				merged[id] = make(map[string]float64, len(outputs))
			}
			merged[id][out.name] = v
		}
	}
	return merged
}

// switchingMerge selects exactly one scorer's output: collaborative if it
// produced enough candidates, else content-based, else whatever returned.
func switchingMerge(outputs []scorerOutput, cfg Config) map[uint64]map[string]float64 {
	byName := make(map[string]scorerOutput, len(outputs))
	for _, out := range outputs {
		byName[out.name] = out
	}

	pick := func(name string, minCandidates int) (scorerOutput, bool) {
		out, ok := byName[name]
		if !ok || len(out.norm) < minCandidates {
			return scorerOutput{}, false
		}
		return out, true
	}

	chosen, ok := pick(ScorerCollaborative, cfg.SwitchingMinCandidates)
	if !ok {
		chosen, ok = pick(ScorerContent, 1)
	}
	if !ok {
		chosen, ok = pick(ScorerContextual, 1)
	}
	if !ok && len(outputs) > 0 {
		chosen = outputs[0]
	}

	merged := make(map[uint64]map[string]float64, len(chosen.norm))
	for id, v := range chosen.norm {
		merged[id] = map[string]float64{chosen.name: v}
	}
	return merged
}

// sortCandidates orders by score descending; equal scores go to the newer
// listing, then the lower property id so results are reproducible.
func sortCandidates(candidates []domain.ScoredCandidate, byID map[uint64]domain.PropertyFeatureVector) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		la, lb := byID[a.PropertyID].ListedAt, byID[b.PropertyID].ListedAt
		if !la.Equal(lb) {
			return la.After(lb)
		}
		return a.PropertyID < b.PropertyID
	})
}
