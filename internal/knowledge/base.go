// Package knowledge implements the question search over the seed knowledge
// table plus the entries queued at runtime.
package knowledge

import (
	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/textmatch"
)

const (
	DefaultExactThreshold = 0.8
	DefaultFuzzyThreshold = 0.3
)

type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchCombined MatchKind = "combined"
	MatchNotFound MatchKind = "not_found"
)

// Result is the outcome of a search. Entries holds one entry for an exact
// match and every qualifying entry, in base order, for a combined match.
type Result struct {
	Kind    MatchKind
	Entries []entities.KnowledgeEntry
}

// Thresholds tune the exact and fuzzy passes.
type Thresholds struct {
	Exact float64
	Fuzzy float64
}

func (t Thresholds) withDefaults() Thresholds {
	if t.Exact <= 0 {
		t.Exact = DefaultExactThreshold
	}
	if t.Fuzzy <= 0 {
		t.Fuzzy = DefaultFuzzyThreshold
	}
	return t
}

// Base is the knowledge base of one session: a shared read-only seed and the
// entries appended during the session. Base is not safe for concurrent use.
type Base struct {
	seed    []entities.KnowledgeEntry
	runtime []entities.KnowledgeEntry

	scorer     *textmatch.Scorer
	thresholds Thresholds
}

// NewBase creates a base over seed. seed is shared, never modified.
func NewBase(seed []entities.KnowledgeEntry, scorer *textmatch.Scorer, th Thresholds) *Base {
	return &Base{
		seed:       seed,
		scorer:     scorer,
		thresholds: th.withDefaults(),
	}
}

// Entries returns seed entries followed by runtime entries.
func (b *Base) Entries() []entities.KnowledgeEntry {
	out := make([]entities.KnowledgeEntry, 0, len(b.seed)+len(b.runtime))
	out = append(out, b.seed...)
	return append(out, b.runtime...)
}

// Runtime returns a copy of the entries appended during the session.
func (b *Base) Runtime() []entities.KnowledgeEntry {
	return append([]entities.KnowledgeEntry(nil), b.runtime...)
}

// SetRuntime replaces the runtime entries, e.g. after loading a snapshot.
// Entries without keywords are dropped.
func (b *Base) SetRuntime(entries []entities.KnowledgeEntry) {
	b.runtime = b.runtime[:0]
	for _, e := range entries {
		if len(e.Keywords) == 0 {
			continue
		}
		b.runtime = append(b.runtime, e)
	}
}

// Append queues question as a new entry without answers. It returns false if
// the question has no keywords or is already present.
func (b *Base) Append(question string) bool {
	normalized := textmatch.Normalize(question)
	keywords := textmatch.Keywords(normalized)
	if len(keywords) == 0 {
		return false
	}

	for _, e := range b.runtime {
		if textmatch.Normalize(e.Question) == normalized {
			return false
		}
	}

	b.runtime = append(b.runtime, entities.KnowledgeEntry{
		Question: question,
		Keywords: keywords,
		Category: entities.CategoryNewQuestions,
		Source:   "user",
	})
	return true
}

// Search looks input up in two passes. The exact pass returns the single
// highest-scoring entry at or above the exact threshold, the first one on
// ties. Otherwise the fuzzy pass returns every entry scoring at or above the
// fuzzy threshold in base order.
func (b *Base) Search(input string) Result {
	keywords := textmatch.ExtractKeywords(input)
	if len(keywords) == 0 {
		return Result{Kind: MatchNotFound}
	}

	entries := b.Entries()

	bestIdx := -1
	bestScore := 0.0
	for i, e := range entries {
		score := b.scorer.Exact(keywords, e.Keywords)
		if score >= b.thresholds.Exact && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx >= 0 {
		return Result{Kind: MatchExact, Entries: []entities.KnowledgeEntry{entries[bestIdx]}}
	}

	var related []entities.KnowledgeEntry
	for _, e := range entries {
		if b.scorer.Fuzzy(keywords, e.Keywords) >= b.thresholds.Fuzzy {
			related = append(related, e)
		}
	}
	if len(related) > 0 {
		return Result{Kind: MatchCombined, Entries: related}
	}

	return Result{Kind: MatchNotFound}
}
