package recommend

import (
	"context"
	"errors"
	"sync"
	"time"

	"homeMatch/domain"
	"homeMatch/pkg/logger"
)

// SessionContext carries the in-session and static signals a request may
// supply. All fields are optional.
type SessionContext struct {
	RecentTypes     []string `json:"recent_types"`
	RecentLocations []string `json:"recent_locations"`
	TimeOfDay       string   `json:"time_of_day"`
	Device          string   `json:"device"`
}

// Scorer is the pluggable strategy contract: anything that can score a
// candidate pool against a profile can be registered with the engine.
// Implementations return raw scores; the engine min-max normalizes each
// scorer's output independently before combination.
type Scorer interface {
	Name() string
	Score(
		ctx context.Context,
		profile domain.UserProfile,
		pool []domain.PropertyFeatureVector,
		session SessionContext,
	) (map[uint64]float64, error)
}

type scorerOutput struct {
	name     string
	raw      map[uint64]float64
	norm     map[uint64]float64
	err      error
	timedOut bool
}

// runScorer invokes one scorer under its time budget. A scorer that blows
// the budget is abandoned, not waited for.
func runScorer(
	ctx context.Context,
	sc Scorer,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	session SessionContext,
	timeout time.Duration,
) scorerOutput {

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan scorerOutput, 1)
	go func() {
		raw, err := sc.Score(cctx, profile, pool, session)
		ch <- scorerOutput{name: sc.Name(), raw: raw, err: err}
	}()

	select {
	case out := <-ch:
		if out.err == nil {
			out.norm = normalizeScores(out.raw)
		}
		return out
	case <-cctx.Done():
		return scorerOutput{
			name:     sc.Name(),
			err:      domain.ErrScorerTimeout,
			timedOut: ctx.Err() == nil,
		}
	}
}

// fanOut runs every scorer in parallel against the same profile snapshot
// and reports whether the result set is degraded (a scorer timed out or
// failed while others succeeded).
func (s *Service) fanOut(
	ctx context.Context,
	scorers []Scorer,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	session SessionContext,
	timeout time.Duration,
) ([]scorerOutput, bool) {

	outputs := make([]scorerOutput, len(scorers))

	var wg sync.WaitGroup
	for i, sc := range scorers {
		wg.Add(1)
		go func(i int, sc Scorer) {
			defer wg.Done()
			outputs[i] = runScorer(ctx, sc, profile, pool, session, timeout)
		}(i, sc)
	}
	wg.Wait()

	degraded := false
	ok := make([]scorerOutput, 0, len(outputs))
	for _, out := range outputs {
		switch {
		case out.err == nil:
			ok = append(ok, out)
		case out.timedOut:
			degraded = true
			ScorerTimeoutsTotal.WithLabelValues(out.name).Inc()
			logger.Warn("scorer timed out", "scorer", out.name)
		case errors.Is(out.err, domain.ErrInsufficientData):
			// expected for thin profiles, handled by fallback
			logger.Debug("scorer skipped", "scorer", out.name, "reason", out.err)
		default:
			degraded = true
			logger.Warn("scorer failed", "scorer", out.name, "error", out.err)
		}
	}

	return ok, degraded
}
