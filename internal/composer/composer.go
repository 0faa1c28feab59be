// Package composer turns matched knowledge entries into reply text: it picks
// an answer variant for the user's preferred style, appends closing remarks
// and introduces the assistant on the first turn of a session.
package composer

import (
	"math/rand"
	"strings"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
)

const (
	detailedMinWords = 25
	shortMaxWords    = 8
)

var formalMarkers = []string{
	"می‌باشد", "میباشد", "می‌گردد", "محترم", "گرامی", "جنابعالی",
	"خواهشمند", "بفرمایید", "لطفاً", "لطفا", "بنابراین", "همچنین",
}

// Messages are the canned texts the composer draws from.
type Messages struct {
	ClosingRemarks []string
	FactInvitation string
	Intros         []string
	Deferral       string
	FactDecline    string
}

// Composer renders replies. It holds no per-session state; the caller passes
// the session's random source.
type Composer struct {
	messages Messages
}

func New(messages Messages) *Composer {
	return &Composer{messages: messages}
}

// Classify buckets text by length and register.
func Classify(text string) entities.ResponseStyle {
	words := len(strings.Fields(text))
	switch {
	case words >= detailedMinWords:
		return entities.StyleDetailed
	case words <= shortMaxWords:
		return entities.StyleShort
	case hasFormalMarker(text):
		return entities.StyleFormal
	default:
		return entities.StyleCasual
	}
}

func hasFormalMarker(text string) bool {
	for _, m := range formalMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// SelectAnswer resolves the entry's answers for part of day and picks one at
// random. With a preferred style and several candidates, only candidates of
// that style are considered, unless none qualifies.
func SelectAnswer(rng *rand.Rand, entry entities.KnowledgeEntry, style entities.ResponseStyle, part entities.DayPart) (string, bool) {
	candidates := make([]string, 0, len(entry.Answers))
	for _, a := range entry.Answers {
		if text := a.Resolve(part); text != "" {
			candidates = append(candidates, text)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	if style != entities.StyleUnset && len(candidates) > 1 {
		var styled []string
		for _, c := range candidates {
			if Classify(c) == style {
				styled = append(styled, c)
			}
		}
		if len(styled) > 0 {
			candidates = styled
		}
	}

	return candidates[rng.Intn(len(candidates))], true
}

// Combine renders one answer per entry in the given order. Entries without a
// usable answer are skipped.
func Combine(rng *rand.Rand, entries []entities.KnowledgeEntry, style entities.ResponseStyle, part entities.DayPart) (string, bool) {
	var parts []string
	for _, e := range entries {
		if text, ok := SelectAnswer(rng, e, style, part); ok {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n\n"), true
}

// Closing picks a closing remark. invitesFact is true when the remark offers
// a Quran fact, in which case the next user turn is an answer to it.
func (c *Composer) Closing(rng *rand.Rand) (remark string, invitesFact bool) {
	n := len(c.messages.ClosingRemarks)
	if c.messages.FactInvitation != "" {
		n++
	}
	if n == 0 {
		return "", false
	}

	i := rng.Intn(n)
	if i == len(c.messages.ClosingRemarks) {
		return c.messages.FactInvitation, true
	}
	return c.messages.ClosingRemarks[i], false
}

// Intro picks a self-introduction for the first turn of a session.
func (c *Composer) Intro(rng *rand.Rand) string {
	if len(c.messages.Intros) == 0 {
		return ""
	}
	return c.messages.Intros[rng.Intn(len(c.messages.Intros))]
}

// Deferral is the reply to a question nothing could answer.
func (c *Composer) Deferral() string {
	return c.messages.Deferral
}

// FactDecline acknowledges a declined fact invitation.
func (c *Composer) FactDecline() string {
	return c.messages.FactDecline
}

// WithClosing appends remark to answer on its own paragraph.
func WithClosing(answer, remark string) string {
	if remark == "" {
		return answer
	}
	return answer + "\n\n" + remark
}
