package recommend

// normalizeScores min-max rescales one scorer's output onto [0,1] across
// the returned candidate set, so a thin set never gets under-scaled. A
// constant positive set maps to 1.0, a constant zero set stays 0.
func normalizeScores(raw map[uint64]float64) map[uint64]float64 {
	if len(raw) == 0 {
		return map[uint64]float64{}
	}

	first := true
	var min, max float64
	for _, v := range raw {
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make(map[uint64]float64, len(raw))
	if max == min {
		val := 0.0
		if max > 0 {
			val = 1.0
		}
		for id := range raw {
			out[id] = val
		}
		return out
	}

	span := max - min
	for id, v := range raw {
		out[id] = (v - min) / span
	}
	return out
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
