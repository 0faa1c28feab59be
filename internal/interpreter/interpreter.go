// Package interpreter holds the specialized handlers tried before the
// knowledge search: fact continuation, word frequency, verse lookup,
// arithmetic and compound-question splitting.
package interpreter

import "github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"

// Corpus is the read-only verse and translation corpus.
type Corpus interface {
	All() []entities.Surah
	Surah(number int) (*entities.Surah, bool)
}
