//go:build !integration

package recommend

import (
	"context"
	"errors"
	"testing"

	"homeMatch/domain"
)

type fakePopularity struct {
	entries []domain.PopularityEntry
	err     error
}

func (f *fakePopularity) GetByRegion(ctx context.Context, region string, limit int) ([]domain.PopularityEntry, error) {
	return f.entries, f.err
}

type fakeOnboarding struct {
	prefs map[string]float64
	ok    bool
	err   error
}

func (f *fakeOnboarding) GetPreferences(ctx context.Context, userID uint) (map[string]float64, bool, error) {
	return f.prefs, f.ok, f.err
}

func TestColdStart_PopularityOnly(t *testing.T) {
	pool := testPool()
	pop := &fakePopularity{entries: []domain.PopularityEntry{
		{Region: "downtown", PropertyID: 1, Score: 100},
		{Region: "downtown", PropertyID: 2, Score: 50},
		{Region: "downtown", PropertyID: 999, Score: 500}, // not in pool
	}}

	r := NewColdStartResolver(pop, &fakeOnboarding{}, DefaultConfig())

	scores, questions, err := r.Resolve(context.Background(), 42, "downtown", pool)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if _, ok := scores[999]; ok {
		t.Error("score leaked for property outside the candidate pool")
	}
	if scores[1] <= scores[2] {
		t.Errorf("popularity order lost: scores[1]=%v scores[2]=%v", scores[1], scores[2])
	}

	// nothing answered yet, all four dimension groups are open
	if len(questions) != 4 {
		t.Errorf("got %d clarifying questions, want 4: %v", len(questions), questions)
	}
}

func TestColdStart_BlendsExplicitPreferences(t *testing.T) {
	pool := []domain.PropertyFeatureVector{
		{PropertyID: 1, PropertyType: "apartment", Features: map[string]float64{"location:downtown": 1}},
		{PropertyID: 2, PropertyType: "house", Features: map[string]float64{"location:suburb": 1}},
	}
	pop := &fakePopularity{entries: []domain.PopularityEntry{
		{PropertyID: 1, Score: 10},
		{PropertyID: 2, Score: 100},
	}}
	onboarding := &fakeOnboarding{
		prefs: map[string]float64{"location:downtown": 0.9},
		ok:    true,
	}

	r := NewColdStartResolver(pop, onboarding, DefaultConfig())

	scores, questions, err := r.Resolve(context.Background(), 42, "", pool)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// explicit weight 0.7: property 1 gets 0.7*1.0 + 0.3*0.0, property 2
	// gets 0.7*0.0 + 0.3*1.0
	if !almostEqual(scores[1], 0.7) {
		t.Errorf("scores[1] = %v, want 0.7", scores[1])
	}
	if !almostEqual(scores[2], 0.3) {
		t.Errorf("scores[2] = %v, want 0.3", scores[2])
	}

	for _, q := range questions {
		if q == "Which neighborhoods would you like to live in?" {
			t.Error("location question asked although location preference exists")
		}
	}
	if len(questions) != 3 {
		t.Errorf("got %d questions, want 3 uncovered groups", len(questions))
	}
}

func TestColdStart_NoDataAtAll(t *testing.T) {
	r := NewColdStartResolver(&fakePopularity{}, &fakeOnboarding{}, DefaultConfig())

	_, _, err := r.Resolve(context.Background(), 42, "nowhere", testPool())
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestColdStart_PopularityFailureFallsBackToExplicit(t *testing.T) {
	pool := []domain.PropertyFeatureVector{
		{PropertyID: 1, Features: map[string]float64{"type:apartment": 1}},
		{PropertyID: 2, Features: map[string]float64{"type:house": 1}},
	}
	pop := &fakePopularity{err: errors.New("db down")}
	onboarding := &fakeOnboarding{prefs: map[string]float64{"type:apartment": 1}, ok: true}

	r := NewColdStartResolver(pop, onboarding, DefaultConfig())

	scores, _, err := r.Resolve(context.Background(), 42, "downtown", pool)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if scores[1] <= scores[2] {
		t.Errorf("explicit preference not reflected: %v", scores)
	}
}
