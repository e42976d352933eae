//go:build !integration

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"homeMatch/domain"
)

type fakeProfiles struct {
	profile domain.UserProfile
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID uint) domain.UserProfile {
	if f.profile.UserID == userID {
		return f.profile
	}
	return domain.NewEmptyProfile(userID)
}

type fakeCatalog struct {
	pool []domain.PropertyFeatureVector
	err  error
}

func (f *fakeCatalog) GetByID(ctx context.Context, propertyID uint64) (domain.PropertyFeatureVector, error) {
	for _, pv := range f.pool {
		if pv.PropertyID == propertyID {
			return pv, nil
		}
	}
	return domain.PropertyFeatureVector{}, errors.New("not found")
}

func (f *fakeCatalog) ListByRegion(ctx context.Context, region string, limit int) ([]domain.PropertyFeatureVector, error) {
	return f.pool, f.err
}

func (f *fakeCatalog) ListAll(ctx context.Context, limit int) ([]domain.PropertyFeatureVector, error) {
	return f.pool, f.err
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]domain.RecommendationResult
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.RecommendationResult)}
}

func (m *memCache) Get(ctx context.Context, key string) (*domain.RecommendationResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.entries[key]; ok {
		cp := r
		return &cp, true, nil
	}
	return nil, false, nil
}

func (m *memCache) Set(ctx context.Context, key string, result domain.RecommendationResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = result
	return nil
}

func (m *memCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type slowScorer struct {
	name  string
	delay time.Duration
}

func (s *slowScorer) Name() string { return s.name }

func (s *slowScorer) Score(ctx context.Context, profile domain.UserProfile, pool []domain.PropertyFeatureVector, session SessionContext) (map[uint64]float64, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return map[uint64]float64{1: 1.0}, nil
}

// poolScorer scores only candidates present in the pool it is handed, so
// cascade narrowing is observable.
type poolScorer struct {
	name   string
	scores map[uint64]float64
}

func (s *poolScorer) Name() string { return s.name }

func (s *poolScorer) Score(ctx context.Context, profile domain.UserProfile, pool []domain.PropertyFeatureVector, session SessionContext) (map[uint64]float64, error) {
	out := make(map[uint64]float64, len(pool))
	for _, pv := range pool {
		if v, ok := s.scores[pv.PropertyID]; ok {
			out[pv.PropertyID] = v
		}
	}
	return out, nil
}

func confidentProfile(userID uint) domain.UserProfile {
	return domain.UserProfile{
		UserID:     userID,
		Weights:    map[string]float64{"location:downtown": 0.9, "type:apartment": 0.7},
		Confidence: 0.8,
		EventCount: 40,
	}
}

func newTestService(cache ResultCache, cfg Config) *Service {
	pop := &fakePopularity{entries: []domain.PopularityEntry{
		{PropertyID: 1, Score: 10},
		{PropertyID: 3, Score: 8},
		{PropertyID: 4, Score: 5},
	}}
	coldStart := NewColdStartResolver(pop, &fakeOnboarding{}, cfg)

	svc := NewService(
		&fakeProfiles{profile: confidentProfile(42)},
		&fakeCatalog{pool: contentPool()},
		coldStart,
		cache,
		nil,
		nil,
		"",
		cfg,
	)
	svc.RegisterScorer(NewContentScorer())
	return svc
}

func contentPool() []domain.PropertyFeatureVector {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return []domain.PropertyFeatureVector{
		{PropertyID: 1, PropertyType: "apartment", Location: "downtown", ListedAt: base,
			Features: map[string]float64{"location:downtown": 1, "type:apartment": 1}},
		{PropertyID: 2, PropertyType: "apartment", Location: "downtown", ListedAt: base.Add(time.Hour),
			Features: map[string]float64{"location:downtown": 1}},
		{PropertyID: 3, PropertyType: "house", Location: "suburb", ListedAt: base.Add(2 * time.Hour),
			Features: map[string]float64{"type:house": 1}},
		{PropertyID: 4, PropertyType: "condo", Location: "downtown", ListedAt: base.Add(3 * time.Hour),
			Features: map[string]float64{"location:downtown": 0.5}},
	}
}

func TestRecommend_Validation(t *testing.T) {
	svc := newTestService(nil, DefaultConfig())

	_, err := svc.Recommend(context.Background(), Request{UserID: 0})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing user: err = %v, want ErrValidation", err)
	}

	_, err = svc.Recommend(context.Background(), Request{UserID: 42, RequestType: "psychic"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad request type: err = %v, want ErrValidation", err)
	}
}

func TestRecommend_ScoresWithinBounds(t *testing.T) {
	svc := newTestService(nil, DefaultConfig())

	result, err := svc.Recommend(context.Background(), Request{UserID: 42, RequestType: domain.RequestContentBased})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(result.Candidates) == 0 {
		t.Fatal("no candidates")
	}

	for _, c := range result.Candidates {
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("candidate %d score %v outside [0,1]", c.PropertyID, c.Score)
		}
	}

	// property 1 matches both weighted dimensions and must rank first
	if result.Candidates[0].PropertyID != 1 {
		t.Errorf("top candidate = %d, want 1", result.Candidates[0].PropertyID)
	}
	if result.Degraded {
		t.Error("unexpected degraded flag")
	}
}

func TestRecommend_CacheHitReturnsIdenticalResult(t *testing.T) {
	cache := newMemCache()
	svc := newTestService(cache, DefaultConfig())

	req := Request{UserID: 42, RequestType: domain.RequestContentBased}

	first, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	second, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if !first.GeneratedAt.Equal(second.GeneratedAt) {
		t.Errorf("cached result recomputed: %v vs %v", first.GeneratedAt, second.GeneratedAt)
	}
	if len(first.Candidates) != len(second.Candidates) {
		t.Fatalf("candidate count changed: %d vs %d", len(first.Candidates), len(second.Candidates))
	}
	for i := range first.Candidates {
		if first.Candidates[i].PropertyID != second.Candidates[i].PropertyID {
			t.Errorf("position %d differs: %d vs %d", i, first.Candidates[i].PropertyID, second.Candidates[i].PropertyID)
		}
	}
}

func TestRecommend_ExclusionsNeverAppear(t *testing.T) {
	svc := newTestService(nil, DefaultConfig())

	result, err := svc.Recommend(context.Background(), Request{
		UserID:      42,
		RequestType: domain.RequestContentBased,
		Exclude:     []uint64{1, 2},
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	for _, c := range result.Candidates {
		if c.PropertyID == 1 || c.PropertyID == 2 {
			t.Errorf("excluded property %d surfaced", c.PropertyID)
		}
	}
}

func TestRecommend_TimeoutDegradesAndSkipsCache(t *testing.T) {
	cache := newMemCache()

	cfg := DefaultConfig()
	cfg.ScorerTimeout = 5 * time.Millisecond

	svc := newTestService(cache, cfg)
	svc.RegisterScorer(&slowScorer{name: ScorerCollaborative, delay: 200 * time.Millisecond})

	result, err := svc.Recommend(context.Background(), Request{UserID: 42, RequestType: domain.RequestHybrid})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if !result.Degraded {
		t.Error("timed-out scorer did not set the degraded flag")
	}
	if len(result.Candidates) == 0 {
		t.Error("surviving scorer produced no candidates")
	}
	if cache.len() != 0 {
		t.Error("degraded result was cached")
	}
}

func TestRecommend_CascadeNarrowsPoolAndKeepsStageScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = domain.PolicyCascade
	cfg.CascadePoolSize = 2
	// a legal admin override; must not zero out the cascade ranking
	cfg.Weights[ScorerContextual] = 0

	svc := NewService(
		&fakeProfiles{profile: confidentProfile(42)},
		&fakeCatalog{pool: contentPool()},
		nil, nil, nil, nil, "",
		cfg,
	)
	svc.RegisterScorer(&poolScorer{name: ScorerCollaborative, scores: map[uint64]float64{1: 0.9, 2: 1.0, 3: 0.1, 4: 0.2}})
	svc.RegisterScorer(&poolScorer{name: ScorerContextual, scores: map[uint64]float64{1: 1.0, 2: 0.3, 3: 0.8, 4: 0.9}})

	result, err := svc.Recommend(context.Background(), Request{UserID: 42, RequestType: domain.RequestHybrid})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	// stage 1 keeps its top 2 (properties 2 and 1); stage 2 re-scores
	// only that subset, ranking 1 above 2
	if len(result.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 after narrowing", len(result.Candidates))
	}
	for _, c := range result.Candidates {
		if c.PropertyID == 3 || c.PropertyID == 4 {
			t.Errorf("property %d survived past the first stage cut", c.PropertyID)
		}
	}

	top := result.Candidates[0]
	if top.PropertyID != 1 {
		t.Errorf("top candidate = %d, want contextual's best, 1", top.PropertyID)
	}
	if !almostEqual(top.Score, 1.0) {
		t.Errorf("top score = %v, want the surviving stage score 1.0", top.Score)
	}
	if result.Degraded {
		t.Error("unexpected degraded flag")
	}
}

func TestRecommend_CascadeStageTimeoutDegrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = domain.PolicyCascade
	cfg.CascadePoolSize = 2
	cfg.ScorerTimeout = 5 * time.Millisecond

	svc := NewService(
		&fakeProfiles{profile: confidentProfile(42)},
		&fakeCatalog{pool: contentPool()},
		nil, nil, nil, nil, "",
		cfg,
	)
	svc.RegisterScorer(&slowScorer{name: ScorerCollaborative, delay: 200 * time.Millisecond})
	svc.RegisterScorer(&poolScorer{name: ScorerContextual, scores: map[uint64]float64{1: 1.0, 2: 0.3, 3: 0.8, 4: 0.9}})

	result, err := svc.Recommend(context.Background(), Request{UserID: 42, RequestType: domain.RequestHybrid})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if !result.Degraded {
		t.Error("timed-out cascade stage did not set the degraded flag")
	}
	// the skipped stage never narrowed the pool, so the surviving stage
	// ranked all four candidates
	if len(result.Candidates) != 4 {
		t.Errorf("got %d candidates, want 4 with the first stage skipped", len(result.Candidates))
	}
	if len(result.Candidates) > 0 && result.Candidates[0].PropertyID != 1 {
		t.Errorf("top candidate = %d, want 1", result.Candidates[0].PropertyID)
	}
}

func TestApplyExclusions_PreservesCatalogPool(t *testing.T) {
	pool := contentPool()

	filtered := applyExclusions(pool, []uint64{1, 3})
	if len(filtered) != 2 {
		t.Fatalf("got %d candidates, want 2", len(filtered))
	}

	wantOrder := []uint64{1, 2, 3, 4}
	for i, want := range wantOrder {
		if pool[i].PropertyID != want {
			t.Fatalf("pool position %d = %d after filtering, want %d untouched", i, pool[i].PropertyID, want)
		}
	}
}

func TestRecommend_ColdStartBelowConfidence(t *testing.T) {
	svc := newTestService(nil, DefaultConfig())

	// user 7 has no profile, confidence 0 < 0.2
	result, err := svc.Recommend(context.Background(), Request{UserID: 7, RequestType: domain.RequestHybrid})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if result.Algorithm != ScorerColdStart {
		t.Errorf("algorithm = %q, want %q", result.Algorithm, ScorerColdStart)
	}
	if len(result.Questions) == 0 {
		t.Error("cold-start result carries no clarifying questions")
	}
	if len(result.Candidates) == 0 {
		t.Error("cold-start produced no candidates")
	}
}

func TestRecommend_EmptyPoolIsUpstreamError(t *testing.T) {
	svc := NewService(
		&fakeProfiles{profile: confidentProfile(42)},
		&fakeCatalog{pool: nil},
		nil, nil, nil, nil, "",
		DefaultConfig(),
	)
	svc.RegisterScorer(NewContentScorer())

	_, err := svc.Recommend(context.Background(), Request{UserID: 42})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestFingerprint_StableAcrossInputOrder(t *testing.T) {
	a := Request{UserID: 42, RequestType: "hybrid", MaxResults: 10, Exclude: []uint64{3, 1, 2}}
	b := Request{UserID: 42, RequestType: "hybrid", MaxResults: 10, Exclude: []uint64{1, 2, 3}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint depends on exclusion order")
	}

	c := Request{UserID: 43, RequestType: "hybrid", MaxResults: 10, Exclude: []uint64{1, 2, 3}}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("different users share a fingerprint")
	}
}

func TestDebugRecommend_ExposesComponents(t *testing.T) {
	svc := newTestService(nil, DefaultConfig())

	debug, err := svc.DebugRecommend(context.Background(), Request{UserID: 42, RequestType: domain.RequestContentBased, MaxResults: 3})
	if err != nil {
		t.Fatalf("DebugRecommend: %v", err)
	}
	if len(debug) == 0 {
		t.Fatal("no debug candidates")
	}

	for _, d := range debug {
		if _, ok := d.RawScores[ScorerContent]; !ok {
			t.Errorf("candidate %d missing raw content score", d.PropertyID)
		}
		if _, ok := d.Normalized[ScorerContent]; !ok {
			t.Errorf("candidate %d missing normalized content score", d.PropertyID)
		}
	}
}
