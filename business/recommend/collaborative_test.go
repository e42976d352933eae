//go:build !integration

package recommend

import (
	"context"
	"errors"
	"testing"

	"homeMatch/domain"
)

type fakeProfileLister struct {
	profiles []domain.UserProfile
}

func (f *fakeProfileLister) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	return f.profiles, nil
}

type fakeInteractions struct {
	events []domain.InteractionEvent
}

func (f *fakeInteractions) PositiveEvents(ctx context.Context, userIDs []uint, limit int) ([]domain.InteractionEvent, error) {
	want := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	out := make([]domain.InteractionEvent, 0, len(f.events))
	for _, ev := range f.events {
		if _, ok := want[ev.UserID]; ok && ev.Strength > 0 {
			out = append(out, ev)
		}
	}
	return out, nil
}

func profileWith(userID uint, weights map[string]float64) domain.UserProfile {
	return domain.UserProfile{UserID: userID, Weights: weights, Confidence: 0.5, EventCount: 20}
}

func TestCollaborative_ScoresFromSimilarNeighbors(t *testing.T) {
	me := profileWith(1, map[string]float64{"location:downtown": 0.9, "type:apartment": 0.8})

	// five near-identical neighbors plus one opposite taste user
	profiles := []domain.UserProfile{me}
	for id := uint(2); id <= 6; id++ {
		profiles = append(profiles, profileWith(id, map[string]float64{"location:downtown": 0.8, "type:apartment": 0.7}))
	}
	profiles = append(profiles, profileWith(7, map[string]float64{"location:rural": 1.0}))

	events := []domain.InteractionEvent{
		{UserID: 2, PropertyID: 10, Strength: 0.9},
		{UserID: 3, PropertyID: 10, Strength: 0.6},
		{UserID: 4, PropertyID: 20, Strength: 0.2},
		{UserID: 7, PropertyID: 30, Strength: 0.9}, // dissimilar user, filtered out
	}

	pool := []domain.PropertyFeatureVector{
		{PropertyID: 10}, {PropertyID: 20}, {PropertyID: 30},
	}

	sc := NewCollaborativeScorer(&fakeProfileLister{profiles: profiles}, &fakeInteractions{events: events}, DefaultConfig())

	scores, err := sc.Score(context.Background(), me, pool, SessionContext{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if scores[10] <= scores[20] {
		t.Errorf("property 10 (two strong neighbors) should outrank 20: %v", scores)
	}
	if _, ok := scores[30]; ok {
		t.Error("dissimilar user's interaction leaked into the scores")
	}
}

func TestCollaborative_TooFewNeighbors(t *testing.T) {
	me := profileWith(1, map[string]float64{"location:downtown": 0.9})
	profiles := []domain.UserProfile{
		me,
		profileWith(2, map[string]float64{"location:downtown": 0.8}),
	}

	sc := NewCollaborativeScorer(&fakeProfileLister{profiles: profiles}, &fakeInteractions{}, DefaultConfig())

	_, err := sc.Score(context.Background(), me, testPool(), SessionContext{})
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData with one neighbor", err)
	}
}

func TestCollaborative_EmptyProfile(t *testing.T) {
	sc := NewCollaborativeScorer(&fakeProfileLister{}, &fakeInteractions{}, DefaultConfig())

	_, err := sc.Score(context.Background(), domain.NewEmptyProfile(1), testPool(), SessionContext{})
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData for empty profile", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := map[string]float64{"x": 1, "y": 0}
	b := map[string]float64{"x": 1, "y": 0}
	if got := cosineSimilarity(a, b); !almostEqual(got, 1) {
		t.Errorf("identical vectors: %v, want 1", got)
	}

	c := map[string]float64{"z": 1}
	if got := cosineSimilarity(a, c); got != 0 {
		t.Errorf("orthogonal vectors: %v, want 0", got)
	}

	if got := cosineSimilarity(a, map[string]float64{}); got != 0 {
		t.Errorf("empty vector: %v, want 0", got)
	}
}

func TestContextualScorer_BoundedBoost(t *testing.T) {
	base := &staticScorer{name: ScorerContent, scores: map[uint64]float64{1: 1.0, 2: 1.0}}
	pool := []domain.PropertyFeatureVector{
		{PropertyID: 1, PropertyType: "apartment", Location: "downtown"},
		{PropertyID: 2, PropertyType: "house", Location: "suburb"},
	}

	sc := NewContextualScorer(base, DefaultConfig())

	session := SessionContext{
		RecentTypes:     []string{"apartment"},
		RecentLocations: []string{"downtown"},
		TimeOfDay:       "evening",
	}

	scores, err := sc.Score(context.Background(), domain.UserProfile{}, pool, session)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	// 1.0 * (1 + 0.15 + 0.15 + 0.05) would be 1.35, capped at 1.3
	if !almostEqual(scores[1], 1.3) {
		t.Errorf("boost = %v, want cap 1.3", scores[1])
	}
	// only the evening bump applies
	if !almostEqual(scores[2], 1.05) {
		t.Errorf("scores[2] = %v, want 1.05", scores[2])
	}
}

type staticScorer struct {
	name   string
	scores map[uint64]float64
	err    error
}

func (s *staticScorer) Name() string { return s.name }

func (s *staticScorer) Score(ctx context.Context, profile domain.UserProfile, pool []domain.PropertyFeatureVector, session SessionContext) (map[uint64]float64, error) {
	return s.scores, s.err
}
