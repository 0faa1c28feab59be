package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and trim", "  Hello   WORLD  ", "hello world"},
		{"persian question mark", "نماز صبح چند رکعت است؟", "نماز صبح چند رکعت است"},
		{"diacritics", "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ", "بسم الله الرحمن الرحیم"},
		{"letter forms", "كتاب علي", "کتاب علی"},
		{"punctuation removed not spaced", "a,b.c", "abc"},
		{"guillemets", "کلمه «قرآن»", "کلمه قرآن"},
		{"empty", "", ""},
		{"only punctuation", "?!..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"İstanbul ÇAY",
		"الْحَمْدُ لِلَّهِ رَبِّ الْعَالَمِينَ",
		"نماز\tصبح\n\nچند   رکعت؟",
		"x + 5 = 10",
		"قرآنـــی «کریم»",
		"\xff\xfe broken utf8",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords(Normalize("آیا نماز صبح دو رکعت است؟"))
	assert.Equal(t, []string{"آیا", "نماز", "صبح", "رکعت", "است"}, got)

	assert.Empty(t, Keywords(""))
	assert.Empty(t, Keywords("یک دو از"))
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"نماز", "نمار", 1},
		{"", "قرآن", 4},
		{"abc", "abc", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestDistanceProperties(t *testing.T) {
	words := []string{"", "a", "salam", "سلام", "سلامت", "روزه", "رمضان", "kitten"}

	for _, a := range words {
		assert.Equal(t, 0, Distance(a, a))
		assert.Equal(t, len([]rune(a)), Distance("", a))
		for _, b := range words {
			assert.Equal(t, Distance(a, b), Distance(b, a), "%q vs %q", a, b)
		}
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("نماز", "نماز"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("نماز", "نمار"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestThesaurusBidirectional(t *testing.T) {
	th := NewThesaurus(map[string][]string{
		"نماز": {"صلاة", "عبادت"},
		"روزه": {"صوم"},
	})

	assert.ElementsMatch(t, []string{"صلاة", "عبادت"}, th.Related("نماز"))
	assert.Equal(t, []string{"نماز"}, th.Related("عبادت"))
	assert.Equal(t, []string{"روزه"}, th.Related("صوم"))
	assert.Empty(t, th.Related("زکات"))

	var nilTh *Thesaurus
	assert.Empty(t, nilTh.Related("نماز"))
	assert.Equal(t, []string{"نماز"}, nilTh.Expand([]string{"نماز", "نماز"}))
}

func TestScorerExact(t *testing.T) {
	s := NewScorer(nil, 0)

	input := []string{"نماز", "صبح", "چند", "رکعت", "است"}
	entry := []string{"نماز", "صبح", "رکعت", "چند"}
	assert.InDelta(t, 0.8, s.Exact(input, entry), 1e-9)
	assert.InDelta(t, 0.0, s.Exact(nil, entry), 1e-9)
	assert.InDelta(t, 0.0, s.Exact(input, nil), 1e-9)
}

func TestScorerFuzzy(t *testing.T) {
	th := NewThesaurus(map[string][]string{"روزه": {"صوم"}})
	s := NewScorer(th, 0.7)

	// "صوم" expands to "روزه", which matches the entry verbatim.
	score := s.Fuzzy([]string{"صوم"}, []string{"روزه", "رمضان"})
	assert.InDelta(t, 0.5, score, 1e-9)

	// Typo stays above the floor: 1 - 1/5 = 0.8.
	score = s.Fuzzy([]string{"رمضام"}, []string{"رمضان"})
	assert.InDelta(t, 0.8, score, 1e-9)

	// Nothing clears the floor.
	require.InDelta(t, 0.0, s.Fuzzy([]string{"زکات"}, []string{"رمضان"}), 1e-9)
}
