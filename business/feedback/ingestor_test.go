//go:build !integration

package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"

	"homeMatch/domain"
)

type memEvents struct {
	mu     sync.Mutex
	events []domain.InteractionEvent
	err    error
}

func (m *memEvents) SaveEvent(ctx context.Context, event domain.InteractionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

type memDedupe struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newMemDedupe() *memDedupe {
	return &memDedupe{seen: make(map[string]struct{})}
}

func (m *memDedupe) MarkIfNew(ctx context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[eventID]; ok {
		return false, nil
	}
	m.seen[eventID] = struct{}{}
	return true, nil
}

type recordingUpdater struct {
	mu     sync.Mutex
	events []domain.InteractionEvent
}

func (r *recordingUpdater) ApplyFeedback(ctx context.Context, event domain.InteractionEvent, features domain.PropertyFeatureVector) (domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return domain.UserProfile{UserID: event.UserID}, nil
}

func (r *recordingUpdater) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakeFeatures struct {
	err error
}

func (f *fakeFeatures) GetByID(ctx context.Context, propertyID uint64) (domain.PropertyFeatureVector, error) {
	if f.err != nil {
		return domain.PropertyFeatureVector{}, f.err
	}
	return domain.PropertyFeatureVector{
		PropertyID: propertyID,
		Features:   map[string]float64{"location:downtown": 1},
	}, nil
}

func viewEvent(id string) domain.InteractionEvent {
	return domain.InteractionEvent{
		EventID:    id,
		UserID:     1,
		PropertyID: 10,
		EventType:  domain.EventView,
	}
}

func TestIngest_AppendsAndUpdatesProfile(t *testing.T) {
	events := &memEvents{}
	updater := &recordingUpdater{}
	ing := NewIngestor(events, newMemDedupe(), updater, &fakeFeatures{})

	if err := ing.Ingest(context.Background(), viewEvent("e1")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(events.events) != 1 {
		t.Fatalf("logged %d events, want 1", len(events.events))
	}
	if got := events.events[0].Strength; got != 0.2 {
		t.Errorf("view strength = %v, want default 0.2", got)
	}
	if updater.count() != 1 {
		t.Errorf("profile updates = %d, want 1", updater.count())
	}
}

func TestIngest_ReplayIsDroppedSilently(t *testing.T) {
	events := &memEvents{}
	updater := &recordingUpdater{}
	ing := NewIngestor(events, newMemDedupe(), updater, &fakeFeatures{})

	for i := 0; i < 3; i++ {
		if err := ing.Ingest(context.Background(), viewEvent("dup")); err != nil {
			t.Fatalf("replay %d returned error: %v", i, err)
		}
	}

	if len(events.events) != 1 {
		t.Errorf("logged %d events, want 1 after replays", len(events.events))
	}
	if updater.count() != 1 {
		t.Errorf("profile updated %d times, want 1 after replays", updater.count())
	}
}

func TestIngest_GeneratesEventID(t *testing.T) {
	events := &memEvents{}
	ing := NewIngestor(events, newMemDedupe(), &recordingUpdater{}, &fakeFeatures{})

	ev := viewEvent("")
	if err := ing.Ingest(context.Background(), ev); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if events.events[0].EventID == "" {
		t.Error("event id was not generated")
	}
}

func TestIngest_Validation(t *testing.T) {
	ing := NewIngestor(&memEvents{}, newMemDedupe(), &recordingUpdater{}, &fakeFeatures{})

	cases := []struct {
		name string
		ev   domain.InteractionEvent
	}{
		{"missing user", domain.InteractionEvent{PropertyID: 10, EventType: domain.EventView}},
		{"missing property", domain.InteractionEvent{UserID: 1, EventType: domain.EventView}},
		{"unknown type", domain.InteractionEvent{UserID: 1, PropertyID: 10, EventType: "teleport"}},
		{"strength too high", domain.InteractionEvent{UserID: 1, PropertyID: 10, EventType: domain.EventRating, Strength: 2}},
	}

	for _, tc := range cases {
		if err := ing.Ingest(context.Background(), tc.ev); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestIngest_MissingFeaturesStillLogsEvent(t *testing.T) {
	events := &memEvents{}
	updater := &recordingUpdater{}
	ing := NewIngestor(events, newMemDedupe(), updater, &fakeFeatures{err: errors.New("catalog down")})

	if err := ing.Ingest(context.Background(), viewEvent("e1")); err != nil {
		t.Fatalf("catalog failure surfaced: %v", err)
	}

	if len(events.events) != 1 {
		t.Errorf("event not logged despite catalog failure")
	}
	if updater.count() != 0 {
		t.Errorf("profile updated without features")
	}
}

func TestIngest_NegativeHideStrength(t *testing.T) {
	events := &memEvents{}
	ing := NewIngestor(events, newMemDedupe(), &recordingUpdater{}, &fakeFeatures{})

	ev := viewEvent("h1")
	ev.EventType = domain.EventHide
	if err := ing.Ingest(context.Background(), ev); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if got := events.events[0].Strength; got != -0.8 {
		t.Errorf("hide strength = %v, want default -0.8", got)
	}
}
