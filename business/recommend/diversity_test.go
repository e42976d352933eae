//go:build !integration

package recommend

import (
	"testing"

	"homeMatch/domain"
)

func cand(id uint64, typ string, score float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{PropertyID: id, PropertyType: typ, Score: score}
}

func TestDiversify_CapsConsecutiveSameType(t *testing.T) {
	ranked := []domain.ScoredCandidate{
		cand(1, "apartment", 1.0),
		cand(2, "apartment", 0.9),
		cand(3, "apartment", 0.8),
		cand(4, "apartment", 0.7),
		cand(5, "house", 0.6),
		cand(6, "house", 0.5),
	}

	head, _ := diversify(ranked, 6, 2, 0)

	run := 0
	last := ""
	for _, c := range head {
		if c.PropertyType == last {
			run++
		} else {
			run = 1
			last = c.PropertyType
		}
		if run > 2 {
			t.Fatalf("more than 2 consecutive %q in %v", c.PropertyType, ids(head))
		}
	}
}

func TestDiversify_SingleTypePoolPassesThrough(t *testing.T) {
	ranked := []domain.ScoredCandidate{
		cand(1, "apartment", 1.0),
		cand(2, "apartment", 0.9),
		cand(3, "apartment", 0.8),
	}

	head, score := diversify(ranked, 3, 2, 0.3)

	if len(head) != 3 {
		t.Fatalf("got %d results, want all 3 when only one type exists", len(head))
	}
	if !almostEqual(score, 1.0/3.0) {
		t.Errorf("diversity score = %v, want 1/3", score)
	}
}

func TestDiversify_FloorPromotionKeepsTopThree(t *testing.T) {
	// 5 apartments rank ahead, a house and a condo sit below the cut.
	ranked := []domain.ScoredCandidate{
		cand(1, "apartment", 1.0),
		cand(2, "apartment", 0.95),
		cand(3, "house", 0.9),
		cand(4, "apartment", 0.85),
		cand(5, "apartment", 0.8),
		cand(6, "condo", 0.4),
		cand(7, "townhouse", 0.3),
	}

	head, score := diversify(ranked, 5, 2, 0.6)

	if score < 0.6 {
		t.Fatalf("diversity score %v below floor 0.6, head=%v", score, ids(head))
	}

	// top-3 of the capped ranking must survive promotion
	for i, want := range []uint64{1, 2, 3} {
		if head[i].PropertyID != want {
			t.Errorf("protected slot %d = property %d, want %d", i, head[i].PropertyID, want)
		}
	}
}

func TestDiversify_LimitLargerThanPool(t *testing.T) {
	ranked := []domain.ScoredCandidate{
		cand(1, "apartment", 1.0),
		cand(2, "house", 0.5),
	}

	head, _ := diversify(ranked, 10, 2, 0.3)
	if len(head) != 2 {
		t.Fatalf("got %d results, want 2", len(head))
	}
}

func TestDiversityScore(t *testing.T) {
	list := []domain.ScoredCandidate{
		cand(1, "apartment", 1),
		cand(2, "apartment", 1),
		cand(3, "house", 1),
		cand(4, "condo", 1),
	}
	if got := diversityScore(list); !almostEqual(got, 0.75) {
		t.Errorf("diversityScore = %v, want 0.75", got)
	}
	if got := diversityScore(nil); got != 0 {
		t.Errorf("diversityScore(nil) = %v, want 0", got)
	}
}

func ids(list []domain.ScoredCandidate) []uint64 {
	out := make([]uint64, len(list))
	for i, c := range list {
		out[i] = c.PropertyID
	}
	return out
}
