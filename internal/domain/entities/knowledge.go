// Package entities contains domain entities used across the application.
package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CategoryNewQuestions marks entries appended at runtime for questions the
// assistant could not answer.
const CategoryNewQuestions = "new questions"

// KnowledgeEntry is one row of the knowledge base.
type KnowledgeEntry struct {
	Question string   `json:"question" yaml:"question"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Answers  []Answer `json:"answers" yaml:"answers"`
	Category string   `json:"category" yaml:"category"`
	Source   string   `json:"source" yaml:"source"`
}

// IsPending reports whether the entry is a queued question without answers yet.
func (e KnowledgeEntry) IsPending() bool {
	return len(e.Answers) == 0
}

// Answer is either a plain text answer or a time-variant one. Plain answers
// are encoded as bare strings, time-variant answers as objects with
// timeBased set.
type Answer struct {
	Text      string
	TimeBased bool
	Morning   string
	Afternoon string
	Evening   string
	Night     string
}

// TextAnswer wraps a plain string answer.
func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

type timeVariantAnswer struct {
	TimeBased bool   `json:"timeBased" yaml:"timeBased"`
	Morning   string `json:"morning,omitempty" yaml:"morning,omitempty"`
	Afternoon string `json:"afternoon,omitempty" yaml:"afternoon,omitempty"`
	Evening   string `json:"evening,omitempty" yaml:"evening,omitempty"`
	Night     string `json:"night,omitempty" yaml:"night,omitempty"`
}

var ErrInvalidAnswer = errors.New("answer must be a string or a time-variant object")

// Resolve returns the answer text for the given time-of-day bucket. A
// time-variant answer without text for the bucket falls back to the first
// non-empty bucket in morning, afternoon, evening, night order.
func (a Answer) Resolve(b DayPart) string {
	if !a.TimeBased {
		return a.Text
	}

	var picked string
	switch b {
	case Morning:
		picked = a.Morning
	case Afternoon:
		picked = a.Afternoon
	case Evening:
		picked = a.Evening
	case Night:
		picked = a.Night
	}
	if picked != "" {
		return picked
	}

	for _, s := range []string{a.Morning, a.Afternoon, a.Evening, a.Night} {
		if s != "" {
			return s
		}
	}
	return a.Text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.TimeBased {
		return json.Marshal(a.Text)
	}
	return json.Marshal(timeVariantAnswer{
		TimeBased: true,
		Morning:   a.Morning,
		Afternoon: a.Afternoon,
		Evening:   a.Evening,
		Night:     a.Night,
	})
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
		return nil
	}

	var tv timeVariantAnswer
	if err := json.Unmarshal(data, &tv); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	a.fromTimeVariant(tv)
	return nil
}

func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = TextAnswer(node.Value)
		return nil
	case yaml.MappingNode:
		var tv timeVariantAnswer
		if err := node.Decode(&tv); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		a.fromTimeVariant(tv)
		return nil
	default:
		return ErrInvalidAnswer
	}
}

func (a *Answer) fromTimeVariant(tv timeVariantAnswer) {
	*a = Answer{
		TimeBased: true,
		Morning:   tv.Morning,
		Afternoon: tv.Afternoon,
		Evening:   tv.Evening,
		Night:     tv.Night,
	}
}
