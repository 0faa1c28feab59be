package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aliskhannn/quran-assistant-bot/internal/textmatch"
)

const verseNotFoundMessage = "متأسفانه ترجمه این آیه را پیدا نکردم."

var verseRe = regexp.MustCompile(`آیه\s+(\d+)\s+در\s+سوره\s+(\d+)`)

// VerseLookup answers "آیه N در سوره M" with the verse and its translation.
type VerseLookup struct {
	corpus Corpus
}

func NewVerseLookup(corpus Corpus) *VerseLookup {
	return &VerseLookup{corpus: corpus}
}

// Match extracts the surah and ayah numbers from input.
func (v *VerseLookup) Match(input string) (surah, ayah int, ok bool) {
	m := verseRe.FindStringSubmatch(textmatch.Normalize(input))
	if m == nil {
		return 0, 0, false
	}

	ayah, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	surah, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return surah, ayah, true
}

// Lookup formats the verse reply. Unknown surahs or verses yield the fixed
// not-found message.
func (v *VerseLookup) Lookup(surah, ayah int) string {
	s, ok := v.corpus.Surah(surah)
	if !ok {
		return verseNotFoundMessage
	}
	tr, ok := s.TranslationOf(ayah)
	if !ok {
		return verseNotFoundMessage
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "سوره %s (%s)، آیه %d:\n", s.Name, s.NameFa, ayah)
	if a, ok := s.Ayah(ayah); ok && a.Text != "" {
		sb.WriteString(a.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("ترجمه: ")
	sb.WriteString(tr.Text)
	return sb.String()
}

// Answer renders the verse reply for input, if input is a verse query.
func (v *VerseLookup) Answer(input string) (string, bool) {
	surah, ayah, ok := v.Match(input)
	if !ok {
		return "", false
	}
	return v.Lookup(surah, ayah), true
}
