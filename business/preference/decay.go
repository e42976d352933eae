package preference

import (
	"context"
	"time"

	"homeMatch/pkg/logger"
)

// Sweep decays stale, inactive profiles toward neutral: weights move a
// small step toward 0.5 and the event count shrinks, which lowers
// confidence through the usual formula. The pass is bounded by MaxSweep
// and skips users decayed within the current staleness window, so
// re-running it is harmless. Safe to run concurrently with live traffic.
func (s *Store) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.cfg.StaleAfter)

	s.mu.RLock()
	stale := make([]uint, 0)
	for id, p := range s.profiles {
		if p.UpdatedAt.Before(cutoff) {
			stale = append(stale, id)
			if len(stale) >= s.cfg.MaxSweep {
				break
			}
		}
	}
	s.mu.RUnlock()

	decayed := 0
	for _, id := range stale {
		if ctx.Err() != nil {
			break
		}
		if s.decayOne(id, cutoff) {
			decayed++
		}
	}

	if decayed > 0 {
		logger.Info("preference decay sweep", "decayed", decayed)
	}
	return decayed
}

func (s *Store) decayOne(userID uint, cutoff time.Time) bool {
	s.lastDecayMu.Lock()
	if last, ok := s.lastDecay[userID]; ok && last.After(cutoff) {
		s.lastDecayMu.Unlock()
		return false
	}
	s.lastDecay[userID] = time.Now()
	s.lastDecayMu.Unlock()

	stripe := &s.stripes[userID%lockStripes]
	stripe.Lock()
	defer stripe.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok || !p.UpdatedAt.Before(cutoff) {
		return false
	}

	for dim, w := range p.Weights {
		p.Weights[dim] = clamp01(w + s.cfg.DecayFactor*(0.5-w))
	}
	if p.EventCount > 0 {
		p.EventCount = int(float64(p.EventCount) * (1 - s.cfg.DecayFactor))
	}
	p.Confidence = confidenceFor(p.EventCount, s.cfg.ConfidenceScale)

	return true
}

// RunDecayLoop runs Sweep on a ticker until the context is cancelled.
func (s *Store) RunDecayLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
