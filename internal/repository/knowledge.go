package repository

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/quran-assistant-bot/assets"
	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/textmatch"
)

var ErrInvalidEntry = errors.New("invalid knowledge entry")

// Messages are the canned assistant texts of the knowledge table.
type Messages struct {
	ClosingRemarks []string `yaml:"closing_remarks"`
	FactInvitation string   `yaml:"fact_invitation"`
	Intros         []string `yaml:"intros"`
	Deferral       string   `yaml:"deferral"`
	FactDecline    string   `yaml:"fact_decline"`
}

// Knowledge is the static knowledge table: seed entries, the related-term
// thesaurus, Quran facts and the assistant's canned messages.
type Knowledge struct {
	Entries  []entities.KnowledgeEntry `yaml:"entries"`
	Synonyms map[string][]string       `yaml:"synonyms"`
	Facts    []string                  `yaml:"facts"`
	Messages Messages                  `yaml:"messages"`
}

// LoadKnowledge reads the table from path, or the embedded default when path
// is empty.
func LoadKnowledge(path string) (*Knowledge, error) {
	data, err := readData(path, assets.KnowledgeFile)
	if err != nil {
		return nil, err
	}
	return ParseKnowledge(data)
}

// ParseKnowledge decodes and validates a YAML knowledge table. Keywords are
// normalized; an entry whose keywords normalize to nothing is rejected.
func ParseKnowledge(data []byte) (*Knowledge, error) {
	var k Knowledge
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("failed to unmarshal knowledge YAML: %w", err)
	}

	for i := range k.Entries {
		e := &k.Entries[i]

		keywords := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			if n := textmatch.Normalize(kw); n != "" {
				keywords = append(keywords, n)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: %q has no keywords", ErrInvalidEntry, e.Question)
		}
		e.Keywords = keywords

		if e.Source == "" {
			e.Source = "seed"
		}
	}

	return &k, nil
}
