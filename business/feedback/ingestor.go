package feedback

import (
	"context"
	"fmt"

	"homeMatch/domain"
	"homeMatch/pkg/logger"

	"github.com/google/uuid"
)

// EventRepository appends to the interaction event log. Rows are never
// edited after the fact.
type EventRepository interface {
	SaveEvent(ctx context.Context, event domain.InteractionEvent) error
}

// DedupeStore remembers which event ids were already processed.
// MarkIfNew returns true only on first sighting.
type DedupeStore interface {
	MarkIfNew(ctx context.Context, eventID string) (bool, error)
}

// ProfileUpdater is the preference store's write side.
type ProfileUpdater interface {
	ApplyFeedback(ctx context.Context, event domain.InteractionEvent, features domain.PropertyFeatureVector) (domain.UserProfile, error)
}

// FeatureSource resolves the touched property's feature vector.
type FeatureSource interface {
	GetByID(ctx context.Context, propertyID uint64) (domain.PropertyFeatureVector, error)
}

// Ingestor consumes interaction events: append to the log, then update
// the profile synchronously. Replays of a seen event id are dropped
// without re-applying, so at-least-once delivery is safe.
type Ingestor struct {
	events   EventRepository
	dedupe   DedupeStore
	profiles ProfileUpdater
	catalog  FeatureSource
}

func NewIngestor(
	events EventRepository,
	dedupe DedupeStore,
	profiles ProfileUpdater,
	catalog FeatureSource,
) *Ingestor {
	return &Ingestor{
		events:   events,
		dedupe:   dedupe,
		profiles: profiles,
		catalog:  catalog,
	}
}

func (i *Ingestor) Ingest(ctx context.Context, event domain.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if err := validateEvent(&event); err != nil {
		return err
	}

	fresh, err := i.dedupe.MarkIfNew(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("dedupe check: %w", err)
	}
	if !fresh {
		FeedbackEventsTotal.WithLabelValues(event.EventType, "replay").Inc()
		logger.Debug("duplicate event dropped", "event_id", event.EventID, "user_id", event.UserID)
		return nil
	}

	if err := i.events.SaveEvent(ctx, event); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	features, err := i.catalog.GetByID(ctx, event.PropertyID)
	if err != nil {
		// event is durably logged; the profile catches up on replay of
		// later events against this property
		logger.Warn("property features unavailable, profile update skipped",
			"property_id", event.PropertyID, "error", err)
		FeedbackEventsTotal.WithLabelValues(event.EventType, "partial").Inc()
		return nil
	}

	if _, err := i.profiles.ApplyFeedback(ctx, event, features); err != nil {
		return fmt.Errorf("apply feedback: %w", err)
	}

	FeedbackEventsTotal.WithLabelValues(event.EventType, "applied").Inc()

	logger.Debug("feedback ingested",
		"trace_id", traceID(ctx),
		"event_id", event.EventID,
		"user_id", event.UserID,
		"property_id", event.PropertyID,
		"event_type", event.EventType,
		"strength", event.Strength,
	)

	return nil
}

func validateEvent(event *domain.InteractionEvent) error {
	if event.UserID == 0 {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if event.PropertyID == 0 {
		return fmt.Errorf("%w: property id is required", domain.ErrValidation)
	}

	defaultStrength, known := domain.DefaultStrength(event.EventType)
	if !known {
		return fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, event.EventType)
	}
	if event.Strength == 0 && event.EventType != domain.EventRating {
		event.Strength = defaultStrength
	}
	if event.Strength < -1 || event.Strength > 1 {
		return fmt.Errorf("%w: strength %.2f out of [-1,1]", domain.ErrValidation, event.Strength)
	}

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	return nil
}
