package repository

import (
	"context"

	"kumarajiva/internal/domain"
)

// TxRunner runs fn inside one transaction. Repositories called with the
// context passed to fn take part in that transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines user data operations
type UserRepository interface {
	IsAuthorized(ctx context.Context, telegramID int64) (bool, error)
	AuthorizeUser(ctx context.Context, telegramID int64) error
	EnsureUserExists(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	ListAuthorized(ctx context.Context) ([]domain.User, error)
}

// VocabularyRepository defines vocabulary data operations. Lookups that find
// nothing return a nil entry and a nil error.
type VocabularyRepository interface {
	Create(ctx context.Context, entry *domain.VocabularyEntry) error
	Get(ctx context.Context, scope domain.Scope, word string) (*domain.VocabularyEntry, error)
	// FindFold matches the word ignoring case.
	FindFold(ctx context.Context, scope domain.Scope, word string) (*domain.VocabularyEntry, error)
	List(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.VocabularyEntry, error)
	// ListOthers returns every entry in scope except word.
	ListOthers(ctx context.Context, scope domain.Scope, word string) ([]domain.VocabularyEntry, error)
	Update(ctx context.Context, scope domain.Scope, word string, patch domain.VocabularyPatch) (bool, error)
	// Upsert overwrites an existing entry or inserts a new one, keeping the
	// entry's mastered flag and creation time.
	Upsert(ctx context.Context, entry *domain.VocabularyEntry) error
	Delete(ctx context.Context, scope domain.Scope, word string) (bool, error)
	SetMastered(ctx context.Context, scope domain.Scope, word string, mastered bool) error
	CountCreatedBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (int, error)
	// ListNew returns unmastered entries without reviews, oldest first.
	ListNew(ctx context.Context, scope domain.Scope, limit int) ([]domain.VocabularyEntry, error)
	// ListReviewed returns unmastered entries with at least one review and
	// their review aggregates.
	ListReviewed(ctx context.Context, scope domain.Scope) ([]domain.HistoryEntry, error)
	Counts(ctx context.Context, scope domain.Scope) (domain.VocabularyCounts, error)
}

// ReviewRepository defines review ledger operations. Records are never
// updated; DeleteBetween exists only for resetting a day.
type ReviewRepository interface {
	Append(ctx context.Context, rec *domain.ReviewRecord) error
	// History returns a word's records, most recent first.
	History(ctx context.Context, scope domain.Scope, word string) ([]domain.ReviewRecord, error)
	ListBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) ([]domain.ReviewRecord, error)
	DeleteBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (int64, error)
	TallyBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (domain.DayTally, error)
	HistoryPage(ctx context.Context, scope domain.Scope, filter domain.HistoryFilter) ([]domain.HistoryEntry, int, error)
}

// ProgressRepository defines daily progress snapshot operations
type ProgressRepository interface {
	Get(ctx context.Context, scope domain.Scope, date string) (*domain.ProgressSnapshot, error)
	// CreateIfAbsent inserts the snapshot unless one exists for its date and owner.
	CreateIfAbsent(ctx context.Context, snap *domain.ProgressSnapshot) error
	UpdateCounters(ctx context.Context, scope domain.Scope, date string, patch domain.ProgressPatch) (bool, error)
	Delete(ctx context.Context, scope domain.Scope, date string) error
	// ListRange returns snapshots with fromDate <= date <= toDate, oldest first.
	ListRange(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]domain.ProgressSnapshot, error)
	// ListDays returns snapshots newest first for paging through past days.
	ListDays(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.ProgressSnapshot, error)
	CountDays(ctx context.Context, scope domain.Scope) (int, error)
}
