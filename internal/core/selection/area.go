package selection

import "math/rand"

// AreaSelector spreads lift tasks across drop-zone areas: it picks
// uniformly among the least-used areas so coverage stays even while
// the exact order remains random.
type AreaSelector struct {
	areas    []string
	useCount map[string]int
	rng      *rand.Rand
}

// NewAreaSelector creates a selector over the configured drop areas.
func NewAreaSelector(areas []string, rng *rand.Rand) *AreaSelector {
	s := &AreaSelector{
		areas:    append([]string(nil), areas...),
		useCount: make(map[string]int, len(areas)),
		rng:      rng,
	}
	for _, a := range s.areas {
		s.useCount[a] = 0
	}
	return s
}

// Select returns the next drop area and counts the use.
func (s *AreaSelector) Select() string {
	minCount := -1
	for _, a := range s.areas {
		if minCount == -1 || s.useCount[a] < minCount {
			minCount = s.useCount[a]
		}
	}

	candidates := make([]string, 0, len(s.areas))
	for _, a := range s.areas {
		if s.useCount[a] == minCount {
			candidates = append(candidates, a)
		}
	}

	selected := candidates[s.rng.Intn(len(candidates))]
	s.useCount[selected]++
	return selected
}

// Usage returns a copy of the per-area use counts.
func (s *AreaSelector) Usage() map[string]int {
	out := make(map[string]int, len(s.useCount))
	for a, c := range s.useCount {
		out[a] = c
	}
	return out
}
