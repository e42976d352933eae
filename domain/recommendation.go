package domain

import "time"

// Recommendation request types.
const (
	RequestHybrid        = "hybrid"
	RequestCollaborative = "collaborative"
	RequestContentBased  = "content-based"
	RequestContextual    = "contextual"
	RequestColdStart     = "cold-start"
)

// ScoredCandidate is one ranked property. Score is the final normalized
// value in [0,1]; Components keeps the per-scorer normalized contributions
// for debugging and reason labels.
type ScoredCandidate struct {
	PropertyID      uint64             `json:"property_id"`
	PropertyType    string             `json:"property_type"`
	Score           float64            `json:"score"`
	Components      map[string]float64 `json:"components,omitempty"`
	MatchedFeatures []string           `json:"matched_features,omitempty"`
	Reasons         []string           `json:"reasons,omitempty"`
}

// RecommendationResult is immutable once created; cached copies are
// returned unmodified, timestamp included.
type RecommendationResult struct {
	Candidates     []ScoredCandidate `json:"candidates"`
	Algorithm      string            `json:"algorithm"`
	AvgConfidence  float64           `json:"avg_confidence"`
	DiversityScore float64           `json:"diversity_score"`
	Degraded       bool              `json:"degraded"`
	Questions      []string          `json:"questions,omitempty"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// DebugCandidate carries the full score breakdown for inspection.
type DebugCandidate struct {
	PropertyID   uint64             `json:"property_id"`
	PropertyType string             `json:"property_type"`
	RawScores    map[string]float64 `json:"raw_scores"`
	Normalized   map[string]float64 `json:"normalized"`
	FinalScore   float64            `json:"final_score"`
	Policy       string             `json:"policy"`
	Variant      string             `json:"variant"`
}
