package preference

import (
	"time"

	"homeMatch/domain"
)

// applyEvent folds one interaction into the profile. Positive strength
// moves touched weights toward 1 with diminishing returns, negative
// strength shrinks them multiplicatively. The effective learning rate
// shrinks as confidence rises so one event cannot swing an established
// profile.
func applyEvent(p *domain.UserProfile, features map[string]float64, strength float64, cfg Config) {
	lr := cfg.BaseLearningRate / (1 + cfg.LearningDecay*p.Confidence)

	for dim, fv := range features {
		if fv <= 0 {
			continue
		}

		w := p.Weights[dim]
		if strength > 0 {
			w += lr * strength * (1 - w)
		} else {
			w *= 1 + lr*strength
		}
		p.Weights[dim] = clamp01(w)
	}

	p.EventCount++
	p.Confidence = confidenceFor(p.EventCount, cfg.ConfidenceScale)
	p.UpdatedAt = time.Now()
}

// confidenceFor grows asymptotically toward 1 with event count.
func confidenceFor(eventCount int, scale float64) float64 {
	if scale <= 0 {
		scale = 10
	}
	return 1 - 1/(1+float64(eventCount)/scale)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
