package preference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"homeMatch/domain"
	"homeMatch/pkg/logger"
)

const lockStripes = 64

// SnapshotRepository persists serialized profiles so the in-memory store
// survives restarts. Saves are best-effort; the store is the owner of
// profile state.
type SnapshotRepository interface {
	LoadAll(ctx context.Context) ([]domain.UserProfile, error)
	Save(ctx context.Context, profile domain.UserProfile) error
}

type Config struct {
	// BaseLearningRate is the step size before confidence damping.
	BaseLearningRate float64
	// LearningDecay shrinks the effective rate as confidence rises.
	LearningDecay float64
	// ConfidenceScale is k in confidence = 1 - 1/(1+events/k).
	ConfidenceScale float64
	// DecayFactor is the per-sweep pull of stale weights toward neutral.
	DecayFactor float64
	// StaleAfter marks a profile as inactive for the decay sweep.
	StaleAfter time.Duration
	// MaxSweep bounds the work of one decay pass.
	MaxSweep int
}

func DefaultConfig() Config {
	return Config{
		BaseLearningRate: 0.15,
		LearningDecay:    2.0,
		ConfidenceScale:  10,
		DecayFactor:      0.02,
		StaleAfter:       30 * 24 * time.Hour,
		MaxSweep:         1000,
	}
}

// Store owns all profile state. Updates for one user are serialized
// through a lock stripe; reads copy under a shared lock so callers can
// score against a stable snapshot.
type Store struct {
	mu       sync.RWMutex
	profiles map[uint]*domain.UserProfile

	stripes [lockStripes]sync.Mutex

	lastDecayMu sync.Mutex
	lastDecay   map[uint]time.Time

	snapRepo SnapshotRepository
	cfg      Config
}

func NewStore(snapRepo SnapshotRepository, cfg Config) *Store {
	if cfg.BaseLearningRate <= 0 {
		cfg = DefaultConfig()
	}
	return &Store{
		profiles:  make(map[uint]*domain.UserProfile),
		lastDecay: make(map[uint]time.Time),
		snapRepo:  snapRepo,
		cfg:       cfg,
	}
}

// WarmStart loads persisted profiles. Called once before serving.
func (s *Store) WarmStart(ctx context.Context) error {
	if s.snapRepo == nil {
		return nil
	}

	profiles, err := s.snapRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load profile snapshots: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		cp := p.Clone()
		s.profiles[p.UserID] = &cp
	}

	logger.Info("preference store warmed", "profiles", len(profiles))
	return nil
}

// GetProfile never fails for unknown users: they get an empty profile
// with confidence 0.
func (s *Store) GetProfile(ctx context.Context, userID uint) domain.UserProfile {
	s.mu.RLock()
	p, ok := s.profiles[userID]
	if ok {
		out := p.Clone()
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	return domain.NewEmptyProfile(userID)
}

// ListProfiles returns snapshot copies of every profile; used by the
// collaborative scorer for neighbor search.
func (s *Store) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	return out, nil
}

// ApplyFeedback folds one interaction into the user's profile. Writers
// for the same user are serialized; writers for different users are not.
func (s *Store) ApplyFeedback(
	ctx context.Context,
	event domain.InteractionEvent,
	features domain.PropertyFeatureVector,
) (domain.UserProfile, error) {

	if err := ctx.Err(); err != nil {
		return domain.UserProfile{}, fmt.Errorf("context error: %w", err)
	}
	if event.Strength < -1 || event.Strength > 1 {
		return domain.UserProfile{}, fmt.Errorf("%w: strength %.2f out of [-1,1]", domain.ErrValidation, event.Strength)
	}

	stripe := &s.stripes[event.UserID%lockStripes]
	stripe.Lock()
	defer stripe.Unlock()

	current := s.GetProfile(ctx, event.UserID)
	applyEvent(&current, features.Features, event.Strength, s.cfg)

	s.mu.Lock()
	cp := current.Clone()
	s.profiles[event.UserID] = &cp
	s.mu.Unlock()

	if s.snapRepo != nil {
		if err := s.snapRepo.Save(ctx, current); err != nil {
			logger.Warn("profile snapshot save failed", "user_id", event.UserID, "error", err)
		}
	}

	return current, nil
}
