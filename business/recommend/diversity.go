package recommend

import "homeMatch/domain"

const topProtected = 3

// diversify enforces the two diversity constraints on a ranked list:
// no more than maxRun consecutive results of the same property type, and
// a minimum ratio of distinct types in the final window. Floor promotion
// pulls type-diverse candidates up from below the cut but never displaces
// the top-3 ranked results. Returns the final window and its diversity
// score.
func diversify(ranked []domain.ScoredCandidate, limit, maxRun int, floor float64) ([]domain.ScoredCandidate, float64) {
	if maxRun <= 0 {
		maxRun = defaultMaxConsecutiveType
	}
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}

	capped := capRuns(ranked, maxRun)
	head := capped[:limit]
	tail := capped[limit:]

	score := diversityScore(head)
	if score >= floor || len(tail) == 0 {
		return head, score
	}

	// Promote unseen types from the tail into the lowest non-protected
	// slots until the floor is met or the tail has nothing new.
	seen := typeSet(head)
	slot := len(head) - 1
	for _, cand := range tail {
		if slot < topProtected {
			break
		}
		if _, ok := seen[cand.PropertyType]; ok {
			continue
		}
		delete(seen, head[slot].PropertyType)
		head[slot] = cand
		seen[cand.PropertyType] = struct{}{}
		slot--

		seen = typeSet(head)
		if score = diversityScore(head); score >= floor {
			break
		}
	}

	return head, diversityScore(head)
}

// capRuns reorders so at most maxRun consecutive entries share a property
// type, pulling the next differently-typed candidate upward. When only one
// type remains the rest is appended as-is.
func capRuns(ranked []domain.ScoredCandidate, maxRun int) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(ranked))
	remaining := append([]domain.ScoredCandidate(nil), ranked...)

	for len(remaining) > 0 {
		next := remaining[0]
		if tailRun(out, next.PropertyType) >= maxRun {
			idx := -1
			for i, c := range remaining {
				if c.PropertyType != next.PropertyType {
					idx = i
					break
				}
			}
			if idx < 0 {
				out = append(out, remaining...)
				break
			}
			next = remaining[idx]
			remaining = append(remaining[:idx], remaining[idx+1:]...)
		} else {
			remaining = remaining[1:]
		}
		out = append(out, next)
	}

	return out
}

// tailRun counts how many trailing entries share the given type.
func tailRun(list []domain.ScoredCandidate, propertyType string) int {
	run := 0
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].PropertyType != propertyType {
			break
		}
		run++
	}
	return run
}

// diversityScore is distinct property types over total results.
func diversityScore(list []domain.ScoredCandidate) float64 {
	if len(list) == 0 {
		return 0
	}
	return float64(len(typeSet(list))) / float64(len(list))
}

func typeSet(list []domain.ScoredCandidate) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, c := range list {
		set[c.PropertyType] = struct{}{}
	}
	return set
}
