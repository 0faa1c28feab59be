package textmatch

const DefaultSimilarityFloor = 0.7

// Scorer rates how well a set of input keywords matches an entry's keywords.
type Scorer struct {
	thesaurus *Thesaurus
	floor     float64
}

// NewScorer returns a scorer expanding fuzzy lookups through thesaurus.
// Pairs count as matched only when their similarity exceeds floor; a
// non-positive floor selects DefaultSimilarityFloor.
func NewScorer(thesaurus *Thesaurus, floor float64) *Scorer {
	if floor <= 0 {
		floor = DefaultSimilarityFloor
	}
	return &Scorer{thesaurus: thesaurus, floor: floor}
}

// Exact is the share of input keywords present verbatim in entry.
func (s *Scorer) Exact(input, entry []string) float64 {
	if len(input) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(entry))
	for _, k := range entry {
		set[k] = struct{}{}
	}

	hits := 0
	for _, k := range input {
		if _, ok := set[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(input))
}

// Fuzzy expands input with related terms and averages, over the expanded
// set, the best edit-distance similarity of each keyword against entry.
// Keywords whose best similarity does not exceed the floor contribute zero.
func (s *Scorer) Fuzzy(input, entry []string) float64 {
	expanded := s.thesaurus.Expand(input)
	if len(expanded) == 0 || len(entry) == 0 {
		return 0
	}

	var total float64
	for _, k := range expanded {
		best := 0.0
		for _, e := range entry {
			if sim := Similarity(k, e); sim > best {
				best = sim
			}
		}
		if best > s.floor {
			total += best
		}
	}
	return total / float64(len(expanded))
}
