package domain

import "time"

// UserProfile holds the learned preference weights of one user, keyed by
// feature dimension ("location:downtown", "type:apartment", "price:mid",
// "amenity:pool", ...). Weights and confidence are always within [0,1].
type UserProfile struct {
	UserID     uint               `json:"user_id"`
	Weights    map[string]float64 `json:"weights"`
	Confidence float64            `json:"confidence"`
	EventCount int                `json:"event_count"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewEmptyProfile is what unknown users get: no weights, confidence 0.
func NewEmptyProfile(userID uint) UserProfile {
	return UserProfile{
		UserID:  userID,
		Weights: make(map[string]float64),
	}
}

// Clone returns a deep copy so readers never share the store's map.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Weights = make(map[string]float64, len(p.Weights))
	for k, v := range p.Weights {
		out.Weights[k] = v
	}
	return out
}
