package interpreter

import (
	"math/rand"
	"strings"

	"github.com/aliskhannn/quran-assistant-bot/internal/textmatch"
)

var affirmatives = map[string]struct{}{
	"بله": {}, "بلی": {}, "آره": {}, "اره": {}, "باشه": {}, "حتما": {},
	"اوکی": {}, "البته": {}, "yes": {}, "ok": {}, "okay": {}, "sure": {},
}

// IsAffirmative reports whether input contains an affirmative token.
func IsAffirmative(input string) bool {
	for _, f := range strings.Fields(textmatch.Normalize(input)) {
		if _, ok := affirmatives[f]; ok {
			return true
		}
	}
	return false
}

// Facts is the static list of Quran facts.
type Facts []string

// Random picks a fact with rng. It returns false for an empty list.
func (f Facts) Random(rng *rand.Rand) (string, bool) {
	if len(f) == 0 {
		return "", false
	}
	return f[rng.Intn(len(f))], true
}
