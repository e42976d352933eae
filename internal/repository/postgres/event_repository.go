package postgres

import (
	"context"
	"fmt"
	"homeMatch/business/feedback"
	"homeMatch/business/recommend"
	"homeMatch/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

var _ feedback.EventRepository = (*EventRepository)(nil)
var _ recommend.InteractionSource = (*EventRepository)(nil)

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

// SaveEvent appends one row to the interaction log. The unique index on
// event_id backs up the redis dedupe check.
func (r *EventRepository) SaveEvent(ctx context.Context, event domain.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save interaction event: %w", err)
	}

	return nil
}

// PositiveEvents returns the positive-strength slice of the log for a set
// of users, newest first.
func (r *EventRepository) PositiveEvents(ctx context.Context, userIDs []uint, limit int) ([]domain.InteractionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(userIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 500
	}

	var events []domain.InteractionEvent
	if err := r.DB.WithContext(ctx).
		Where("user_id IN ? AND strength > 0", userIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query interaction_events: %w", err)
	}

	return events, nil
}
