package interpreter

import (
	"strings"
	"unicode/utf8"
)

var conjunctions = map[string]struct{}{
	"و": {}, "یا": {}, "اما": {}, "همچنین": {}, "ولی": {}, "سپس": {},
}

// SplitCompound splits input on conjunction words. It returns the
// non-trivial segments when there is more than one of them, nil otherwise.
// A segment is trivial when it is a single word of at most three runes.
func SplitCompound(input string) []string {
	var (
		segments []string
		current  []string
	)
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, strings.Join(current, " "))
			current = nil
		}
	}

	for _, f := range strings.Fields(input) {
		if _, ok := conjunctions[strings.Trim(f, "،,.؟?!")]; ok {
			flush()
			continue
		}
		current = append(current, f)
	}
	flush()

	var out []string
	for _, s := range segments {
		if isTrivialSegment(s) {
			continue
		}
		out = append(out, s)
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

func isTrivialSegment(s string) bool {
	fields := strings.Fields(s)
	return len(fields) == 1 && utf8.RuneCountInString(fields[0]) <= 3
}
