package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
)

func TestEmbeddedQuran(t *testing.T) {
	r, err := NewQuranRepository("")
	require.NoError(t, err)

	// The embedded corpus is a sample; data.quran_path loads a full one.
	var numbers []int
	for _, s := range r.All() {
		numbers = append(numbers, s.Number)
	}
	assert.Equal(t, []int{1, 103, 108, 110, 112}, numbers)

	s, ok := r.Surah(1)
	require.True(t, ok)
	assert.Equal(t, "حمد", s.NameFa)
	assert.Len(t, s.Ayahs, 7)

	tr, err := r.Translation(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "به نام خداوند بخشنده مهربان", tr.Text)

	_, err = r.Verse(2, 1)
	assert.True(t, errors.Is(err, ErrSurahNotFound))

	_, err = r.Verse(1, 8)
	assert.True(t, errors.Is(err, ErrAyahNotFound))
}

func TestParseQuranRejectsDuplicates(t *testing.T) {
	_, err := ParseQuran([]byte(`{"surahs":[{"number":1},{"number":1}]}`))
	assert.Error(t, err)

	_, err = ParseQuran([]byte(`{"surahs":[{"number":115}]}`))
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestEmbeddedKnowledge(t *testing.T) {
	k, err := LoadKnowledge("")
	require.NoError(t, err)

	require.NotEmpty(t, k.Entries)
	require.NotEmpty(t, k.Facts)
	assert.NotEmpty(t, k.Messages.Deferral)
	assert.NotEmpty(t, k.Messages.FactInvitation)
	assert.NotEmpty(t, k.Messages.ClosingRemarks)

	var found bool
	for _, e := range k.Entries {
		assert.NotEmpty(t, e.Keywords, e.Question)
		if e.Question == "نماز صبح چند رکعت است؟" {
			found = true
			require.Len(t, e.Answers, 1)
			assert.Equal(t, "نماز صبح دو رکعت است.", e.Answers[0].Text)
		}
	}
	assert.True(t, found)
}

func TestParseKnowledge(t *testing.T) {
	doc := `
entries:
  - question: "Greeting?"
    keywords: ["  Salam!! "]
    answers:
      - "hi"
      - timeBased: true
        night: "good night"
`
	k, err := ParseKnowledge([]byte(doc))
	require.NoError(t, err)
	require.Len(t, k.Entries, 1)

	e := k.Entries[0]
	assert.Equal(t, []string{"salam"}, e.Keywords)
	assert.Equal(t, "seed", e.Source)
	require.Len(t, e.Answers, 2)
	assert.Equal(t, "hi", e.Answers[0].Text)
	assert.True(t, e.Answers[1].TimeBased)
	assert.Equal(t, "good night", e.Answers[1].Resolve(entities.Morning))

	_, err = ParseKnowledge([]byte(`entries: [{question: "x", keywords: ["?!"]}]`))
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestLoadKnowledgeFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("facts: [a, b]\n"), 0o644))

	k, err := LoadKnowledge(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, k.Facts)

	_, err = LoadKnowledge(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
