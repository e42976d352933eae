package experiment

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"homeMatch/domain"
	"homeMatch/pkg/logger"
)

// AssignmentAudit persists assignments for offline analysis. Writes are
// best effort; allocation never depends on them.
type AssignmentAudit interface {
	Save(ctx context.Context, assignment domain.ExperimentAssignment) error
}

// Allocator maps (experiment, user) to a variant deterministically. The
// same pair always lands in the same arm, with no stored state consulted
// on the hot path.
type Allocator struct {
	mu          sync.RWMutex
	experiments map[string]domain.Experiment

	audit AssignmentAudit
}

func NewAllocator(audit AssignmentAudit) *Allocator {
	return &Allocator{
		experiments: make(map[string]domain.Experiment),
		audit:       audit,
	}
}

// Register adds or replaces an experiment definition.
func (a *Allocator) Register(exp domain.Experiment) error {
	if exp.Name == "" {
		return fmt.Errorf("%w: experiment name is required", domain.ErrValidation)
	}
	total := 0
	for _, v := range exp.Variants {
		if v.Name == "" {
			return fmt.Errorf("%w: variant name is required", domain.ErrValidation)
		}
		if v.Weight < 0 {
			return fmt.Errorf("%w: variant %q has negative weight", domain.ErrValidation, v.Name)
		}
		total += v.Weight
	}
	if total <= 0 {
		return fmt.Errorf("%w: experiment %q has no traffic", domain.ErrValidation, exp.Name)
	}

	a.mu.Lock()
	a.experiments[exp.Name] = exp
	a.mu.Unlock()

	return nil
}

// Assign resolves the user's arm by hashing experiment name and user id
// into the weighted buckets.
func (a *Allocator) Assign(ctx context.Context, experiment string, userID uint) (domain.ExperimentAssignment, error) {
	a.mu.RLock()
	exp, ok := a.experiments[experiment]
	a.mu.RUnlock()
	if !ok {
		return domain.ExperimentAssignment{}, fmt.Errorf("%w: unknown experiment %q", domain.ErrValidation, experiment)
	}

	variant := bucketFor(exp, userID)

	assignment := domain.ExperimentAssignment{
		ExperimentName: experiment,
		UserID:         userID,
		Variant:        variant,
		AssignedAt:     time.Now(),
	}

	if a.audit != nil {
		if err := a.audit.Save(ctx, assignment); err != nil {
			logger.Warn("assignment audit write failed",
				"experiment", experiment, "user_id", userID, "error", err)
		}
	}

	return assignment, nil
}

func bucketFor(exp domain.Experiment, userID uint) string {
	h := fnv.New32a()
	h.Write([]byte(exp.Name))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.FormatUint(uint64(userID), 10)))

	total := 0
	for _, v := range exp.Variants {
		total += v.Weight
	}

	slot := int(h.Sum32() % uint32(total))
	for _, v := range exp.Variants {
		if slot < v.Weight {
			return v.Name
		}
		slot -= v.Weight
	}
	return exp.Variants[len(exp.Variants)-1].Name
}
