package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Interaction event kinds. Hide carries negative strength.
const (
	EventView    = "view"
	EventSave    = "save"
	EventContact = "contact"
	EventHide    = "hide"
	EventRating  = "rating"
)

// InteractionEvent is the append-only source of truth for preference
// learning. Rows are never edited; corrections arrive as new events.
// EventID is the client-supplied idempotency key.
type InteractionEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"column:event_id;uniqueIndex;not null" json:"event_id"`
	UserID     uint      `gorm:"column:user_id;not null" json:"user_id"`
	PropertyID uint64    `gorm:"column:property_id;not null" json:"property_id"`
	EventType  string    `gorm:"column:event_type;not null" json:"event_type"`
	Strength   float64   `gorm:"column:strength;not null" json:"strength"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
}

func (InteractionEvent) TableName() string {
	return "interaction_events"
}

// DefaultStrength maps an event kind to its implicit strength when the
// client does not supply one. Values stay within [-1,1].
func DefaultStrength(eventType string) (float64, bool) {
	switch eventType {
	case EventView:
		return 0.2, true
	case EventSave:
		return 0.6, true
	case EventContact:
		return 0.9, true
	case EventHide:
		return -0.8, true
	case EventRating:
		return 0, true
	default:
		return 0, false
	}
}
