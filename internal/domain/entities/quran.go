package entities

// Ayah is a single verse, or a single verse translation.
type Ayah struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Surah is a chapter of the Quran with its verses and their Persian translation.
type Surah struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`    // Arabic name
	NameFa         string `json:"name_fa"` // Persian name
	RevelationType string `json:"revelationType,omitempty"`
	Ayahs          []Ayah `json:"ayahs"`
	Translation    []Ayah `json:"translation"`
}

// Ayah returns the verse with the given number.
func (s *Surah) Ayah(number int) (Ayah, bool) {
	return findAyah(s.Ayahs, number)
}

// TranslationOf returns the translation of the verse with the given number.
func (s *Surah) TranslationOf(number int) (Ayah, bool) {
	return findAyah(s.Translation, number)
}

func findAyah(list []Ayah, number int) (Ayah, bool) {
	for _, a := range list {
		if a.Number == number {
			return a, true
		}
	}
	return Ayah{}, false
}
