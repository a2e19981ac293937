package domain

// Accent labels used as pronunciation keys.
const (
	AccentAmerican = "American"
	AccentBritish  = "British"
)

// Definition is one meaning of a word.
type Definition struct {
	PartOfSpeech string `json:"pos"`
	Meaning      string `json:"meaning" validate:"required"`
}

// Pronunciation maps an accent label to its phonetic transcription.
type Pronunciation map[string]string

// Phonetic returns the American transcription, falling back to British.
func (p Pronunciation) Phonetic() string {
	if v := p[AccentAmerican]; v != "" {
		return v
	}
	return p[AccentBritish]
}

// VocabularyEntry is a word in a learner's vocabulary. The JSON shape is the
// import/export record shape.
type VocabularyEntry struct {
	ID            int64         `json:"-"`
	Word          string        `json:"word" validate:"required,max=128"`
	Definitions   []Definition  `json:"definitions" validate:"required,min=1,dive"`
	Pronunciation Pronunciation `json:"pronunciation"`
	MemoryMethod  string        `json:"memory_method"`
	AudioURL      string        `json:"audio_url,omitempty" validate:"omitempty,url"`
	Mastered      bool          `json:"mastered"`
	CreatedAt     int64         `json:"timestamp"`
	OwnerID       *int64        `json:"-"`
}

// FirstDefinition returns the primary definition, or a zero value.
func (v VocabularyEntry) FirstDefinition() Definition {
	if len(v.Definitions) == 0 {
		return Definition{}
	}
	return v.Definitions[0]
}

// VocabularyPatch holds the fields an explicit edit may change. Nil fields
// are left untouched.
type VocabularyPatch struct {
	Definitions   *[]Definition
	Pronunciation *Pronunciation
	MemoryMethod  *string
	AudioURL      *string
	Mastered      *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p VocabularyPatch) IsEmpty() bool {
	return p.Definitions == nil && p.Pronunciation == nil && p.MemoryMethod == nil &&
		p.AudioURL == nil && p.Mastered == nil
}

// AddResult is returned after adding a word.
type AddResult struct {
	Entry          VocabularyEntry
	RemainingToday int
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int
	Skipped  []string
}

// TodayWord is an entry scheduled for today's session.
type TodayWord struct {
	VocabularyEntry
	IsNew       bool
	ReviewCount int
}
