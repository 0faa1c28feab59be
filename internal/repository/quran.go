package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aliskhannn/quran-assistant-bot/assets"
	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
)

var (
	ErrSurahNotFound = errors.New("surah not found")
	ErrAyahNotFound  = errors.New("ayah not found")
	ErrInvalidNumber = errors.New("invalid surah number")
)

// QuranRepository provides read-only access to the verse and translation
// corpus.
type QuranRepository struct {
	surahs   []entities.Surah
	byNumber map[int]int
}

// NewQuranRepository loads the corpus from path, or from the embedded
// default corpus when path is empty.
func NewQuranRepository(path string) (*QuranRepository, error) {
	data, err := readData(path, assets.QuranFile)
	if err != nil {
		return nil, err
	}
	return ParseQuran(data)
}

// ParseQuran decodes a {"surahs": [...]} document.
func ParseQuran(data []byte) (*QuranRepository, error) {
	var wrapper struct {
		Surahs []entities.Surah `json:"surahs"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quran JSON: %w", err)
	}

	byNumber := make(map[int]int, len(wrapper.Surahs))
	for i, s := range wrapper.Surahs {
		if s.Number < 1 || s.Number > 114 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidNumber, s.Number)
		}
		if _, dup := byNumber[s.Number]; dup {
			return nil, fmt.Errorf("duplicate surah %d", s.Number)
		}
		byNumber[s.Number] = i
	}

	return &QuranRepository{
		surahs:   wrapper.Surahs,
		byNumber: byNumber,
	}, nil
}

// All returns every surah in file order.
func (r *QuranRepository) All() []entities.Surah {
	return r.surahs
}

// Surah returns the surah with the given number.
func (r *QuranRepository) Surah(number int) (*entities.Surah, bool) {
	i, ok := r.byNumber[number]
	if !ok {
		return nil, false
	}
	return &r.surahs[i], true
}

// Verse returns the Arabic text of a verse.
func (r *QuranRepository) Verse(surah, ayah int) (entities.Ayah, error) {
	s, ok := r.Surah(surah)
	if !ok {
		return entities.Ayah{}, fmt.Errorf("surah %d: %w", surah, ErrSurahNotFound)
	}
	a, ok := s.Ayah(ayah)
	if !ok {
		return entities.Ayah{}, fmt.Errorf("ayah %d:%d: %w", surah, ayah, ErrAyahNotFound)
	}
	return a, nil
}

// Translation returns the Persian translation of a verse.
func (r *QuranRepository) Translation(surah, ayah int) (entities.Ayah, error) {
	s, ok := r.Surah(surah)
	if !ok {
		return entities.Ayah{}, fmt.Errorf("surah %d: %w", surah, ErrSurahNotFound)
	}
	a, ok := s.TranslationOf(ayah)
	if !ok {
		return entities.Ayah{}, fmt.Errorf("ayah %d:%d: %w", surah, ayah, ErrAyahNotFound)
	}
	return a, nil
}

// readData reads path from disk, or name from the embedded assets when path
// is empty.
func readData(path, name string) ([]byte, error) {
	if path == "" {
		return fs.ReadFile(assets.Data, name)
	}
	return os.ReadFile(path)
}
