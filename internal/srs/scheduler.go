package srs

import (
	"sort"
	"time"

	"kumarajiva/internal/domain"
)

// Scheduler decides due-ness and mastery from a word's review history. It
// holds no state besides its configuration and is safe for concurrent use.
type Scheduler struct {
	cfg Config
	loc *time.Location
}

// NewScheduler validates cfg and builds a scheduler that counts days in loc.
func NewScheduler(cfg Config, loc *time.Location) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{cfg: cfg.clone(), loc: loc}, nil
}

// Config returns a copy of the learning table.
func (s *Scheduler) Config() Config {
	return s.cfg.clone()
}

// Location is the timezone calendar days are counted in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Today returns the calendar day containing now.
func (s *Scheduler) Today(now time.Time) domain.Day {
	return domain.DayOf(now, s.loc)
}

// RequiredInterval is the wait in days after reviewCount completed reviews.
// It is zero for a word that was never reviewed.
func (s *Scheduler) RequiredInterval(reviewCount int) int {
	if reviewCount <= 0 {
		return 0
	}
	idx := min(reviewCount-1, len(s.cfg.ReviewIntervals)-1)
	return s.cfg.ReviewIntervals[idx]
}

// Overdue returns how many days past its interval a reviewed word is. A
// negative value means the word is not due yet.
func (s *Scheduler) Overdue(reviewCount int, lastReviewedAt int64, now time.Time) int {
	elapsed := domain.DaysBetween(domain.FromMillis(lastReviewedAt, s.loc), now, s.loc)
	return elapsed - s.RequiredInterval(reviewCount)
}

// IsDueSummary is IsDue over an aggregated history.
func (s *Scheduler) IsDueSummary(reviewCount int, lastReviewedAt int64, now time.Time) bool {
	if reviewCount == 0 {
		return false
	}
	return s.Overdue(reviewCount, lastReviewedAt, now) >= 0
}

// IsDue reports whether a word with this history should be reviewed today.
// A word with no history is never due; it goes through the new-word path.
func (s *Scheduler) IsDue(history []domain.ReviewRecord, now time.Time) bool {
	if len(history) == 0 {
		return false
	}
	var last int64
	for _, r := range history {
		last = max(last, r.ReviewedAt)
	}
	return s.IsDueSummary(len(history), last, now)
}

// ConsecutiveCorrect counts the correct answers at the head of the history,
// most recent first. The input order does not matter.
func ConsecutiveCorrect(history []domain.ReviewRecord) int {
	sorted := append([]domain.ReviewRecord(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReviewedAt > sorted[j].ReviewedAt
	})

	streak := 0
	for _, r := range sorted {
		if !r.WasCorrect {
			break
		}
		streak++
	}
	return streak
}

// CheckMastery reports whether the history meets the mastery threshold and
// returns the current streak.
func (s *Scheduler) CheckMastery(history []domain.ReviewRecord) (bool, int) {
	streak := ConsecutiveCorrect(history)
	return streak >= s.cfg.MasteryThreshold, streak
}

// SelectDue keeps the unmastered candidates that are due at now, most
// overdue first and then fewest reviews, capped at the review slots.
func (s *Scheduler) SelectDue(candidates []domain.HistoryEntry, now time.Time) []domain.HistoryEntry {
	type ranked struct {
		entry   domain.HistoryEntry
		overdue int
	}

	due := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if c.Mastered || c.ReviewCount == 0 {
			continue
		}
		overdue := s.Overdue(c.ReviewCount, c.LastReviewedAt, now)
		if overdue < 0 {
			continue
		}
		due = append(due, ranked{entry: c, overdue: overdue})
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].entry.ReviewCount < due[j].entry.ReviewCount
	})

	limit := min(len(due), s.cfg.ReviewSlots())
	out := make([]domain.HistoryEntry, 0, limit)
	for _, r := range due[:limit] {
		out = append(out, r.entry)
	}
	return out
}
