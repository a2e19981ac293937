package domain

// QuizOption is one answer choice. It deliberately omits the source word.
type QuizOption struct {
	Definition   string `json:"definition"`
	PartOfSpeech string `json:"pos"`
}

// Quiz is a multiple-choice question about one word.
type Quiz struct {
	Word          string       `json:"word"`
	Phonetic      string       `json:"phonetic,omitempty"`
	Audio         string       `json:"audio,omitempty"`
	Definitions   []Definition `json:"definitions"`
	MemoryMethod  string       `json:"memory_method"`
	CorrectAnswer string       `json:"correct_answer"`
	Options       []QuizOption `json:"options"`
}

// CorrectIndex returns the position of the correct option, or -1.
func (q Quiz) CorrectIndex() int {
	for i, o := range q.Options {
		if o.Definition == q.CorrectAnswer {
			return i
		}
	}
	return -1
}
