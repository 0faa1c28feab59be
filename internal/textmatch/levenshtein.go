package textmatch

import "github.com/agnivade/levenshtein"

// Distance returns the Levenshtein edit distance between a and b counted in
// runes, with unit cost for insertion, deletion and substitution.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Similarity is 1 - Distance(a, b) / max(len(a), len(b)), in [0, 1].
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(longest)
}
