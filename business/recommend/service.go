package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"homeMatch/domain"
	"homeMatch/pkg/logger"
	"homeMatch/pkg/metrics"
)

const maxResultsCap = 100

// Request is the inbound recommendation call.
type Request struct {
	UserID      uint
	RequestType string
	MaxResults  int
	Exclude     []uint64
	Region      string
	Session     SessionContext
}

// ProfileSource reads profile snapshots; never fails for unknown users.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID uint) domain.UserProfile
}

// CatalogRepository is the property catalog collaborator, consumed as a
// black box.
type CatalogRepository interface {
	GetByID(ctx context.Context, propertyID uint64) (domain.PropertyFeatureVector, error)
	ListByRegion(ctx context.Context, region string, limit int) ([]domain.PropertyFeatureVector, error)
	ListAll(ctx context.Context, limit int) ([]domain.PropertyFeatureVector, error)
}

// VariantAssigner resolves which experiment arm a user belongs to.
type VariantAssigner interface {
	Assign(ctx context.Context, experiment string, userID uint) (domain.ExperimentAssignment, error)
}

// Service is the hybrid combiner: it owns scorer registration, policy
// selection, diversity enforcement and the result cache.
type Service struct {
	prefs     ProfileSource
	catalog   CatalogRepository
	coldStart *ColdStartResolver
	cache     ResultCache
	cfgRepo   ConfigRepository
	variants  VariantAssigner

	// experimentName selects the engine-policy A/B test; empty disables
	// variant lookup.
	experimentName string

	scorers    []Scorer
	defaultCfg Config
}

func NewService(
	prefs ProfileSource,
	catalog CatalogRepository,
	coldStart *ColdStartResolver,
	cache ResultCache,
	cfgRepo ConfigRepository,
	variants VariantAssigner,
	experimentName string,
	defaultCfg Config,
) *Service {
	if defaultCfg.MaxResults <= 0 {
		defaultCfg = DefaultConfig()
	}
	return &Service{
		prefs:          prefs,
		catalog:        catalog,
		coldStart:      coldStart,
		cache:          cache,
		cfgRepo:        cfgRepo,
		variants:       variants,
		experimentName: experimentName,
		defaultCfg:     defaultCfg,
	}
}

// RegisterScorer adds a strategy. Registration order is the switching
// priority and the cascade stage order.
func (s *Service) RegisterScorer(sc Scorer) {
	s.scorers = append(s.scorers, sc)
}

// Recommend produces a ranked, diversified candidate list for one user.
func (s *Service) Recommend(ctx context.Context, req Request) (domain.RecommendationResult, error) {
	var zero domain.RecommendationResult

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("context error: %w", err)
	}
	if err := validateRequest(&req); err != nil {
		return zero, err
	}

	variant := "control"
	if s.variants != nil && s.experimentName != "" {
		if asn, err := s.variants.Assign(ctx, s.experimentName, req.UserID); err == nil {
			variant = asn.Variant
		}
	}
	cfg := s.resolveConfig(ctx, req.RequestType, variant)

	key := Fingerprint(req)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("result cache read failed", "error", err)
		} else if ok {
			metrics.CacheHits.Inc()
			return *cached, nil
		}
		metrics.CacheMisses.Inc()
	}

	profile := s.prefs.GetProfile(ctx, req.UserID)

	pool, err := s.loadPool(ctx, req)
	if err != nil {
		return zero, err
	}
	pool = applyExclusions(pool, req.Exclude)
	if len(pool) == 0 {
		return zero, fmt.Errorf("%w: empty candidate pool", domain.ErrUpstreamUnavailable)
	}
	byID := indexPool(pool)

	logger.Debug("recommend",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", req.UserID,
		"request_type", req.RequestType,
		"variant", variant,
		"pool", len(pool),
		"confidence", profile.Confidence,
	)

	var result domain.RecommendationResult
	if req.RequestType == domain.RequestColdStart || profile.Confidence < cfg.ColdStartConfidence {
		result, err = s.coldStartResult(ctx, req, profile, pool, byID, cfg)
	} else {
		result, err = s.scoredResult(ctx, req, profile, pool, byID, cfg)
	}
	if err != nil {
		return zero, err
	}

	result.GeneratedAt = time.Now()
	metrics.RecommendTotal.WithLabelValues(req.RequestType).Inc()
	if result.Degraded {
		metrics.RecommendDegradedTotal.Inc()
	}

	// Write-after: failed computations never got here, degraded results
	// are not cached so a recovered scorer set replaces them quickly.
	// A write failure is swallowed; the cache is not a correctness
	// dependency.
	if s.cache != nil && !result.Degraded {
		if err := s.cache.Set(ctx, key, result, cacheTTL(req.RequestType, cfg)); err != nil {
			logger.Warn("result cache write failed", "key", key, "error", err)
		}
	}

	return result, nil
}

func (s *Service) scoredResult(
	ctx context.Context,
	req Request,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	byID map[uint64]domain.PropertyFeatureVector,
	cfg Config,
) (domain.RecommendationResult, error) {

	scorers := s.scorersFor(req.RequestType)

	var (
		outputs  []scorerOutput
		degraded bool
	)
	if cfg.Policy == domain.PolicyCascade && len(scorers) >= 2 {
		outputs, degraded = s.cascade(ctx, scorers, profile, pool, req.Session, cfg)
	} else {
		outputs, degraded = s.fanOut(ctx, scorers, profile, pool, req.Session, cfg.ScorerTimeout)
	}

	if len(outputs) == 0 {
		// total scorer exhaustion: cold start is the last line
		res, err := s.coldStartResult(ctx, req, profile, pool, byID, cfg)
		if err != nil {
			return domain.RecommendationResult{}, fmt.Errorf("%w: %v", domain.ErrNoScorerAvailable, err)
		}
		res.Degraded = res.Degraded || degraded
		return res, nil
	}

	ranked := combine(outputs, cfg, byID)
	head, divScore := diversify(ranked, req.MaxResults, cfg.MaxConsecutiveType, cfg.DiversityFloor)
	annotate(head, profile, byID)

	return domain.RecommendationResult{
		Candidates:     head,
		Algorithm:      algorithmLabel(req.RequestType, cfg.Policy, outputs),
		AvgConfidence:  profile.Confidence,
		DiversityScore: divScore,
		Degraded:       degraded,
	}, nil
}

// cascade narrows the pool stage by stage: each scorer's top-M feeds the
// next. A stage that fails or times out is skipped and flags degradation.
func (s *Service) cascade(
	ctx context.Context,
	scorers []Scorer,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	session SessionContext,
	cfg Config,
) ([]scorerOutput, bool) {

	degraded := false
	current := pool
	var last scorerOutput
	haveLast := false

	for i, sc := range scorers {
		out := runScorer(ctx, sc, profile, current, session, cfg.ScorerTimeout)
		if out.err != nil {
			if out.timedOut {
				degraded = true
				ScorerTimeoutsTotal.WithLabelValues(out.name).Inc()
			}
			continue
		}

		last = out
		haveLast = true

		if i == len(scorers)-1 {
			break
		}
		current = topByScore(current, out.norm, cfg.CascadePoolSize)
	}

	if !haveLast {
		return nil, degraded
	}
	return []scorerOutput{last}, degraded
}

func (s *Service) coldStartResult(
	ctx context.Context,
	req Request,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	byID map[uint64]domain.PropertyFeatureVector,
	cfg Config,
) (domain.RecommendationResult, error) {

	if s.coldStart == nil {
		return domain.RecommendationResult{}, domain.ErrNoScorerAvailable
	}

	scores, questions, err := s.coldStart.Resolve(ctx, req.UserID, req.Region, pool)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	norm := normalizeScores(scores)
	candidates := make([]domain.ScoredCandidate, 0, len(norm))
	for id, v := range norm {
		pv := byID[id]
		candidates = append(candidates, domain.ScoredCandidate{
			PropertyID:   id,
			PropertyType: pv.PropertyType,
			Score:        clamp01(v),
			Components:   map[string]float64{ScorerColdStart: v},
			Reasons:      []string{"popular with home seekers in your area"},
		})
	}
	sortCandidates(candidates, byID)

	head, divScore := diversify(candidates, req.MaxResults, cfg.MaxConsecutiveType, cfg.DiversityFloor)

	ColdStartServedTotal.Inc()

	return domain.RecommendationResult{
		Candidates:     head,
		Algorithm:      ScorerColdStart,
		AvgConfidence:  profile.Confidence,
		DiversityScore: divScore,
		Questions:      questions,
	}, nil
}

func (s *Service) scorersFor(requestType string) []Scorer {
	if requestType == domain.RequestHybrid {
		return s.scorers
	}

	want := map[string]string{
		domain.RequestCollaborative: ScorerCollaborative,
		domain.RequestContentBased:  ScorerContent,
		domain.RequestContextual:    ScorerContextual,
	}[requestType]

	for _, sc := range s.scorers {
		if sc.Name() == want {
			return []Scorer{sc}
		}
	}
	return nil
}

func (s *Service) loadPool(ctx context.Context, req Request) ([]domain.PropertyFeatureVector, error) {
	limit := req.MaxResults * 10
	if limit < 100 {
		limit = 100
	}

	var (
		pool []domain.PropertyFeatureVector
		err  error
	)
	if req.Region != "" {
		pool, err = s.catalog.ListByRegion(ctx, req.Region, limit)
	} else {
		pool, err = s.catalog.ListAll(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: property catalog: %v", domain.ErrUpstreamUnavailable, err)
	}

	return pool, nil
}

func validateRequest(req *Request) error {
	if req.UserID == 0 {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	if req.RequestType == "" {
		req.RequestType = domain.RequestHybrid
	}
	switch req.RequestType {
	case domain.RequestHybrid, domain.RequestCollaborative, domain.RequestContentBased,
		domain.RequestContextual, domain.RequestColdStart:
	default:
		return fmt.Errorf("%w: unknown request type %q", domain.ErrValidation, req.RequestType)
	}

	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}
	if req.MaxResults > maxResultsCap {
		req.MaxResults = maxResultsCap
	}

	return nil
}

func applyExclusions(pool []domain.PropertyFeatureVector, exclude []uint64) []domain.PropertyFeatureVector {
	if len(exclude) == 0 {
		return pool
	}

	skip := make(map[uint64]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	// fresh slice: the pool belongs to the catalog and may be shared
	out := make([]domain.PropertyFeatureVector, 0, len(pool))
	for _, pv := range pool {
		if _, ok := skip[pv.PropertyID]; !ok {
			out = append(out, pv)
		}
	}
	return out
}

func indexPool(pool []domain.PropertyFeatureVector) map[uint64]domain.PropertyFeatureVector {
	byID := make(map[uint64]domain.PropertyFeatureVector, len(pool))
	for _, pv := range pool {
		byID[pv.PropertyID] = pv
	}
	return byID
}

// topByScore keeps the M highest-scored candidates of the pool, in pool
// order of score descending.
func topByScore(pool []domain.PropertyFeatureVector, scores map[uint64]float64, m int) []domain.PropertyFeatureVector {
	if m <= 0 || m >= len(pool) {
		return pool
	}

	sorted := append([]domain.PropertyFeatureVector(nil), pool...)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := scores[sorted[i].PropertyID], scores[sorted[j].PropertyID]
		if si != sj {
			return si > sj
		}
		return sorted[i].PropertyID < sorted[j].PropertyID
	})

	return sorted[:m]
}

var reasonLabels = map[string]string{
	ScorerCollaborative: "similar home seekers liked this",
	ScorerContent:       "matches your saved preferences",
	ScorerContextual:    "fits your current search session",
}

// annotate fills matched features and human-readable reason labels from
// the score components.
func annotate(candidates []domain.ScoredCandidate, profile domain.UserProfile, byID map[uint64]domain.PropertyFeatureVector) {
	for i := range candidates {
		c := &candidates[i]
		pv := byID[c.PropertyID]

		matched := make([]string, 0, 4)
		for dim, w := range profile.Weights {
			if w >= 0.5 && pv.Features[dim] > 0 {
				matched = append(matched, dim)
			}
		}
		sort.Strings(matched)
		if len(matched) > 5 {
			matched = matched[:5]
		}
		c.MatchedFeatures = matched

		for _, name := range []string{ScorerCollaborative, ScorerContent, ScorerContextual} {
			if c.Components[name] > 0 {
				c.Reasons = append(c.Reasons, reasonLabels[name])
			}
		}
	}
}

func algorithmLabel(requestType, policy string, outputs []scorerOutput) string {
	if requestType != domain.RequestHybrid {
		return requestType
	}
	if policy == domain.PolicySwitching && len(outputs) > 0 {
		// combine picked one; the label still reports the policy
		return domain.RequestHybrid + ":" + domain.PolicySwitching
	}
	return domain.RequestHybrid + ":" + policy
}
