package domain

// ProgressSnapshot holds a learner's position through one day's word list.
type ProgressSnapshot struct {
	Date         string `json:"date"`
	OwnerID      *int64 `json:"-"`
	TotalWords   int    `json:"total_words"`
	CurrentIndex int    `json:"current_index"`
	Completed    int    `json:"completed"`
	Correct      int    `json:"correct"`
}

// ProgressPatch carries caller-reported counters.
type ProgressPatch struct {
	CurrentIndex int
	Completed    int
	Correct      int
}

// Validate checks the patch against the snapshot it would overwrite.
func (p ProgressPatch) Validate(totalWords int) error {
	if p.CurrentIndex < 0 || p.Completed < 0 || p.Correct < 0 {
		return Validation("progress counters must be non-negative")
	}
	if p.Correct > p.Completed {
		return Validation("correct (%d) exceeds completed (%d)", p.Correct, p.Completed)
	}
	if p.Completed > totalWords {
		return Validation("completed (%d) exceeds total words (%d)", p.Completed, totalWords)
	}
	if p.CurrentIndex > totalWords {
		return Validation("current index (%d) exceeds total words (%d)", p.CurrentIndex, totalWords)
	}
	return nil
}

// DailyContribution is one point of the contribution series.
type DailyContribution struct {
	Date       string `json:"date"`
	TotalWords int    `json:"total_words"`
	Completed  int    `json:"completed"`
	Correct    int    `json:"correct"`
}

// DayTally counts the ledger rows of one day.
type DayTally struct {
	Reviewed int `db:"reviewed"`
	Correct  int `db:"correct"`
}
