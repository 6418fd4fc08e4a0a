package dictdb

import "time"

// Entry is the canonical dictionary headword record.
type Entry struct {
	ID              int64
	Headword        string
	ReadingHiragana string
	ReadingRomaji   string
	FrequencyRank   *int
	JLPTLevel       string // one of N5..N1, or "" if absent
	PitchAccent     string
	JMDictID        string
	CreatedAt       time.Time

	Senses []Sense
}

// Sense is one meaning of an Entry.
type Sense struct {
	ID                            int64
	EntryID                       int64
	SenseOrder                    int
	DefinitionEnglish             string
	DefinitionChineseSimplified   string
	DefinitionChineseTraditional  string
	PartOfSpeech                  string
	UsageNotes                    string

	Examples []Example
}

// Example is a single Japanese/English/Chinese example sentence for a Sense.
type Example struct {
	ID                 int64
	SenseID            int64
	ExampleOrder        int
	JapaneseText       string
	EnglishTranslation string
	ChineseTranslation string
}

// HasJLPT reports whether the entry carries a JLPT level.
func (e Entry) HasJLPT() bool { return e.JLPTLevel != "" }

// Rank returns the frequency rank, or the supplied fallback when absent.
func (e Entry) Rank(fallback int) int {
	if e.FrequencyRank == nil {
		return fallback
	}
	return *e.FrequencyRank
}
