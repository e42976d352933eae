package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"homeMatch/domain"
)

// ProfileLister exposes snapshot copies of all learned profiles for
// neighbor search.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]domain.UserProfile, error)
}

// InteractionSource reads the positive slice of the append-only event log
// for a set of users.
type InteractionSource interface {
	PositiveEvents(ctx context.Context, userIDs []uint, limit int) ([]domain.InteractionEvent, error)
}

// CollaborativeScorer finds the k most similar users by cosine similarity
// over preference vectors and aggregates their positive interactions into
// candidate scores.
type CollaborativeScorer struct {
	profiles ProfileLister
	events   InteractionSource

	k            int
	minSim       float64
	minNeighbors int
}

func NewCollaborativeScorer(profiles ProfileLister, events InteractionSource, cfg Config) *CollaborativeScorer {
	k := cfg.CollabK
	if k <= 0 {
		k = defaultCollabK
	}
	minSim := cfg.CollabMinSim
	if minSim <= 0 {
		minSim = defaultCollabMinSim
	}
	minNeighbors := cfg.CollabMinNeighbors
	if minNeighbors <= 0 {
		minNeighbors = defaultCollabMinNeighbors
	}

	return &CollaborativeScorer{
		profiles:     profiles,
		events:       events,
		k:            k,
		minSim:       minSim,
		minNeighbors: minNeighbors,
	}
}

func (c *CollaborativeScorer) Name() string { return ScorerCollaborative }

func (c *CollaborativeScorer) Score(
	ctx context.Context,
	profile domain.UserProfile,
	pool []domain.PropertyFeatureVector,
	_ SessionContext,
) (map[uint64]float64, error) {

	if len(profile.Weights) == 0 {
		return nil, domain.ErrInsufficientData
	}

	all, err := c.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	type neighbor struct {
		userID uint
		sim    float64
	}

	neighbors := make([]neighbor, 0, len(all))
	for _, other := range all {
		if other.UserID == profile.UserID {
			continue
		}
		sim := cosineSimilarity(profile.Weights, other.Weights)
		if sim >= c.minSim {
			neighbors = append(neighbors, neighbor{userID: other.UserID, sim: sim})
		}
	}

	if len(neighbors) < c.minNeighbors {
		return nil, fmt.Errorf("%w: %d neighbors above similarity %.2f", domain.ErrInsufficientData, len(neighbors), c.minSim)
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].sim == neighbors[j].sim {
			return neighbors[i].userID < neighbors[j].userID
		}
		return neighbors[i].sim > neighbors[j].sim
	})
	if len(neighbors) > c.k {
		neighbors = neighbors[:c.k]
	}

	simByUser := make(map[uint]float64, len(neighbors))
	ids := make([]uint, 0, len(neighbors))
	for _, n := range neighbors {
		simByUser[n.userID] = n.sim
		ids = append(ids, n.userID)
	}

	events, err := c.events.PositiveEvents(ctx, ids, len(ids)*100)
	if err != nil {
		return nil, fmt.Errorf("load neighbor interactions: %w", err)
	}

	inPool := make(map[uint64]struct{}, len(pool))
	for _, pv := range pool {
		inPool[pv.PropertyID] = struct{}{}
	}

	scores := make(map[uint64]float64)
	for _, ev := range events {
		if _, ok := inPool[ev.PropertyID]; !ok {
			continue
		}
		scores[ev.PropertyID] += simByUser[ev.UserID] * ev.Strength
	}

	if len(scores) == 0 {
		return nil, domain.ErrInsufficientData
	}

	return scores, nil
}

// cosineSimilarity over sparse weight maps; absent dimensions count as 0.
func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64

	for dim, av := range a {
		normA += av * av
		if bv, ok := b[dim]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
