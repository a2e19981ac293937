package domain

import (
	"strconv"
	"strings"
)

// ReviewRecord is one answer in the review ledger.
type ReviewRecord struct {
	ID         int64  `json:"id"`
	Word       string `json:"word"`
	OwnerID    *int64 `json:"-"`
	ReviewedAt int64  `json:"reviewed_at"`
	WasCorrect bool   `json:"was_correct"`
}

// ReviewOutcome is returned after recording an answer.
type ReviewOutcome struct {
	Word string
	// Result echoes whether the answer was correct.
	Result bool
	// Mastered is true only when this answer completed the mastery streak.
	Mastered bool
	Streak   int
}

// WordType classifies a word in the learning history.
type WordType string

const (
	WordTypeAll       WordType = ""
	WordTypeNew       WordType = "new"
	WordTypeReviewing WordType = "reviewing"
	WordTypeMastered  WordType = "mastered"
	WordTypeWrong     WordType = "wrong"
)

// Valid reports whether t is a known classification.
func (t WordType) Valid() bool {
	switch t {
	case WordTypeAll, WordTypeNew, WordTypeReviewing, WordTypeMastered, WordTypeWrong:
		return true
	}
	return false
}

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryFilter narrows the learning history. Dates are epoch millis and
// inclusive.
type HistoryFilter struct {
	StartDate *int64
	EndDate   *int64
	WordType  WordType
	Limit     int
	Offset    int
}

// HistoryQuery is the raw, caller-supplied form of a HistoryFilter.
type HistoryQuery struct {
	StartDate string
	EndDate   string
	WordType  string
	Limit     string
	Offset    string
}

// ParseHistoryQuery validates raw parameters into a filter.
func ParseHistoryQuery(q HistoryQuery) (HistoryFilter, error) {
	f := HistoryFilter{Limit: DefaultHistoryLimit}

	parseMillis := func(name, raw string) (*int64, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return nil, Validation("%s must be epoch milliseconds, got %q", name, raw)
		}
		return &v, nil
	}

	var err error
	if f.StartDate, err = parseMillis("startDate", q.StartDate); err != nil {
		return HistoryFilter{}, err
	}
	if f.EndDate, err = parseMillis("endDate", q.EndDate); err != nil {
		return HistoryFilter{}, err
	}
	if f.StartDate != nil && f.EndDate != nil && *f.StartDate > *f.EndDate {
		return HistoryFilter{}, Validation("startDate is after endDate")
	}

	f.WordType = WordType(strings.ToLower(strings.TrimSpace(q.WordType)))
	if f.WordType == "all" {
		f.WordType = WordTypeAll
	}
	if !f.WordType.Valid() {
		return HistoryFilter{}, Validation("unknown wordType %q", q.WordType)
	}

	if s := strings.TrimSpace(q.Limit); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return HistoryFilter{}, Validation("limit must be a positive integer, got %q", q.Limit)
		}
		f.Limit = v
	}
	if s := strings.TrimSpace(q.Offset); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return HistoryFilter{}, Validation("offset must be a non-negative integer, got %q", q.Offset)
		}
		f.Offset = v
	}
	return f.Normalize(), nil
}

// Normalize applies paging defaults and bounds.
func (f HistoryFilter) Normalize() HistoryFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// HistoryEntry is a word with its aggregated review statistics.
type HistoryEntry struct {
	VocabularyEntry
	ReviewCount    int
	CorrectCount   int
	LastReviewedAt int64
}

// HistoryPage is a page of the learning history.
type HistoryPage struct {
	Total  int
	Data   []HistoryEntry
	Limit  int
	Offset int
}
