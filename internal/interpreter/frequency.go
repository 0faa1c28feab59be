package interpreter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aliskhannn/quran-assistant-bot/internal/textmatch"
)

var wordFrequencyRe = regexp.MustCompile(`(\S+)\s+چند\s+بار\s+در\s+قرآن\s+(?:تکرار[\s\x{200c}]*شده|آمده|اومده)`)

// WordFrequency counts how often a word occurs across the corpus.
type WordFrequency struct {
	corpus Corpus
}

func NewWordFrequency(corpus Corpus) *WordFrequency {
	return &WordFrequency{corpus: corpus}
}

// Match extracts the queried word from "<word> چند بار در قرآن تکرار شده".
func (w *WordFrequency) Match(input string) (string, bool) {
	m := wordFrequencyRe.FindStringSubmatch(textmatch.Normalize(input))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Count returns the number of verse words that contain word as a substring,
// so inflected and prefixed forms are counted too.
func (w *WordFrequency) Count(word string) int {
	word = textmatch.Normalize(word)
	if word == "" {
		return 0
	}

	count := 0
	for _, s := range w.corpus.All() {
		for _, a := range s.Ayahs {
			for _, v := range strings.Fields(textmatch.Normalize(a.Text)) {
				if strings.Contains(v, word) {
					count++
				}
			}
		}
	}
	return count
}

// SurahCount is the number of surahs in a complete corpus.
const SurahCount = 114

// Answer renders the frequency reply for input, if input is a frequency query.
// Counts over a partial corpus name the number of surahs searched.
func (w *WordFrequency) Answer(input string) (string, bool) {
	word, ok := w.Match(input)
	if !ok {
		return "", false
	}

	count := w.Count(word)
	if n := len(w.corpus.All()); n < SurahCount {
		return fmt.Sprintf("کلمه «%s» %d بار در %d سوره‌ی موجود تکرار شده است.", word, count, n), true
	}
	return fmt.Sprintf("کلمه «%s» %d بار در قرآن تکرار شده است.", word, count), true
}
