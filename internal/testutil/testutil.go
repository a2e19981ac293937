package testutil

import (
	"testing"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/srs"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(id, telegramID int64, authorized bool) *domain.User {
	return &domain.User{
		ID:         id,
		TelegramID: telegramID,
		Authorized: authorized,
		CreatedAt:  time.Now(),
	}
}

// NewTestEntry creates a vocabulary entry with a single noun meaning
func NewTestEntry(word, meaning string, createdAt int64) domain.VocabularyEntry {
	return domain.VocabularyEntry{
		Word:          word,
		Definitions:   []domain.Definition{{PartOfSpeech: "n.", Meaning: meaning}},
		Pronunciation: domain.Pronunciation{},
		CreatedAt:     createdAt,
	}
}

// NewTestScheduler creates a scheduler counting days in UTC
func NewTestScheduler(t *testing.T, cfg srs.Config) *srs.Scheduler {
	t.Helper()
	s, err := srs.NewScheduler(cfg, time.UTC)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	return s
}
