// Package textmatch holds the text primitives of the question matcher:
// normalization, keyword extraction, related-term expansion and
// edit-distance scoring.
package textmatch

import (
	"strings"
	"unicode/utf8"
)

// punctuation is removed outright, so "a,b" becomes "ab".
var punctuation = map[rune]struct{}{
	'.': {}, ',': {}, '/': {}, '#': {}, '!': {}, '$': {}, '%': {}, '^': {},
	'&': {}, '*': {}, ';': {}, ':': {}, '{': {}, '}': {}, '=': {}, '-': {},
	'_': {}, '`': {}, '~': {}, '(': {}, ')': {}, '?': {}, '"': {}, '\'': {},
	'[': {}, ']': {}, '+': {}, '<': {}, '>': {}, '|': {}, '\\': {}, '@': {},
	'؟': {}, '،': {}, '؛': {}, '«': {}, '»': {}, '٪': {}, '…': {},
}

// letterForms folds Arabic letter variants onto their Persian forms.
var letterForms = map[rune]rune{
	'ي': 'ی',
	'ى': 'ی',
	'ك': 'ک',
	'أ': 'ا',
	'إ': 'ا',
	'ٱ': 'ا',
}

func isDiacritic(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || // harakat, tanwin, shadda, sukun
		r == 0x0670 || // superscript alef
		(r >= 0x06D6 && r <= 0x06ED) || // Quranic annotation marks
		r == 0x0640 // tatweel
}

// Normalize lowercases s, removes punctuation and Arabic diacritics, folds
// letter variants and collapses whitespace. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if _, ok := punctuation[r]; ok {
			continue
		}
		if isDiacritic(r) {
			continue
		}
		if folded, ok := letterForms[r]; ok {
			r = folded
		}
		sb.WriteRune(foldDigit(r))
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// FoldDigits rewrites Persian and Arabic-Indic digits as ASCII digits.
func FoldDigits(s string) string {
	return strings.Map(foldDigit, s)
}

func foldDigit(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	default:
		return r
	}
}

// Keywords splits normalized text into tokens longer than two characters.
func Keywords(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// ExtractKeywords is Keywords(Normalize(raw)).
func ExtractKeywords(raw string) []string {
	return Keywords(Normalize(raw))
}
