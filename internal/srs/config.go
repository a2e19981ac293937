package srs

import (
	"fmt"

	"kumarajiva/pkg/validator"
)

// Config is the learning table. It is copied on construction and never
// mutated afterwards.
type Config struct {
	// DailyNewWords caps both new words per session and words added per day.
	DailyNewWords int `mapstructure:"daily_new_words" validate:"gte=0"`
	// DailyReviewLimit is the session size; review slots are what is left
	// after the new words.
	DailyReviewLimit int `mapstructure:"daily_review_limit" validate:"gte=0"`
	// ReviewIntervals[i] is the number of days to wait after the (i+1)th
	// review. The last interval repeats. Zero would keep a word due forever.
	ReviewIntervals []int `mapstructure:"review_intervals" validate:"required,min=1,dive,gte=1"`
	// MasteryThreshold is the streak of correct answers that masters a word.
	MasteryThreshold int `mapstructure:"mastery_threshold" validate:"gte=1"`
}

// DefaultConfig returns the stock learning table.
func DefaultConfig() Config {
	return Config{
		DailyNewWords:    10,
		DailyReviewLimit: 60,
		ReviewIntervals:  []int{1, 2, 4, 7, 15, 30},
		MasteryThreshold: 6,
	}
}

// Validate checks the table.
func (c Config) Validate() error {
	if err := validator.ValidateStruct(c); err != nil {
		return fmt.Errorf("learning config: %w", err)
	}
	return nil
}

// ReviewSlots is the number of due words a session may hold.
func (c Config) ReviewSlots() int {
	return max(c.DailyReviewLimit-c.DailyNewWords, 0)
}

func (c Config) clone() Config {
	c.ReviewIntervals = append([]int(nil), c.ReviewIntervals...)
	return c
}
