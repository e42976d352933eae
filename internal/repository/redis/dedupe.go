package redis

import (
	"context"
	"fmt"
	"time"

	"homeMatch/business/feedback"

	"github.com/redis/go-redis/v9"
)

// dedupeTTL bounds the replay window. The unique index on event_id in
// postgres covers replays older than this.
const dedupeTTL = 24 * time.Hour

type DedupeStore struct {
	client *redis.Client
}

var _ feedback.DedupeStore = (*DedupeStore)(nil)

func NewDedupeStore(client *redis.Client) *DedupeStore {
	return &DedupeStore{
		client: client,
	}
}

// MarkIfNew claims the event id atomically; true means first sighting.
func (s *DedupeStore) MarkIfNew(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf("reco:event:%s", eventID)

	ok, err := s.client.SetNX(ctx, key, "1", dedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event id: %w", err)
	}

	return ok, nil
}
