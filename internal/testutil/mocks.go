package testutil

import (
	"context"

	"kumarajiva/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockTxRunner runs the callback directly unless an error is configured
type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) IsAuthorized(ctx context.Context, telegramID int64) (bool, error) {
	args := m.Called(ctx, telegramID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AuthorizeUser(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureUserExists(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	args := m.Called(ctx, telegramID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListAuthorized(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockVocabularyRepository is a mock for VocabularyRepository
type MockVocabularyRepository struct {
	mock.Mock
}

func (m *MockVocabularyRepository) Create(ctx context.Context, entry *domain.VocabularyEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockVocabularyRepository) Get(ctx context.Context, scope domain.Scope, word string) (*domain.VocabularyEntry, error) {
	args := m.Called(ctx, scope, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VocabularyEntry), args.Error(1)
}

func (m *MockVocabularyRepository) FindFold(ctx context.Context, scope domain.Scope, word string) (*domain.VocabularyEntry, error) {
	args := m.Called(ctx, scope, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VocabularyEntry), args.Error(1)
}

func (m *MockVocabularyRepository) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.VocabularyEntry, error) {
	args := m.Called(ctx, scope, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VocabularyEntry), args.Error(1)
}

func (m *MockVocabularyRepository) ListOthers(ctx context.Context, scope domain.Scope, word string) ([]domain.VocabularyEntry, error) {
	args := m.Called(ctx, scope, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VocabularyEntry), args.Error(1)
}

func (m *MockVocabularyRepository) Update(ctx context.Context, scope domain.Scope, word string, patch domain.VocabularyPatch) (bool, error) {
	args := m.Called(ctx, scope, word, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MockVocabularyRepository) Upsert(ctx context.Context, entry *domain.VocabularyEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockVocabularyRepository) Delete(ctx context.Context, scope domain.Scope, word string) (bool, error) {
	args := m.Called(ctx, scope, word)
	return args.Bool(0), args.Error(1)
}

func (m *MockVocabularyRepository) SetMastered(ctx context.Context, scope domain.Scope, word string, mastered bool) error {
	args := m.Called(ctx, scope, word, mastered)
	return args.Error(0)
}

func (m *MockVocabularyRepository) CountCreatedBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (int, error) {
	args := m.Called(ctx, scope, fromMillis, toMillis)
	return args.Int(0), args.Error(1)
}

func (m *MockVocabularyRepository) ListNew(ctx context.Context, scope domain.Scope, limit int) ([]domain.VocabularyEntry, error) {
	args := m.Called(ctx, scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VocabularyEntry), args.Error(1)
}

func (m *MockVocabularyRepository) ListReviewed(ctx context.Context, scope domain.Scope) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

func (m *MockVocabularyRepository) Counts(ctx context.Context, scope domain.Scope) (domain.VocabularyCounts, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(domain.VocabularyCounts), args.Error(1)
}

// MockReviewRepository is a mock for ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Append(ctx context.Context, rec *domain.ReviewRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockReviewRepository) History(ctx context.Context, scope domain.Scope, word string) ([]domain.ReviewRecord, error) {
	args := m.Called(ctx, scope, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewRepository) ListBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) ([]domain.ReviewRecord, error) {
	args := m.Called(ctx, scope, fromMillis, toMillis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewRepository) DeleteBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (int64, error) {
	args := m.Called(ctx, scope, fromMillis, toMillis)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) TallyBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (domain.DayTally, error) {
	args := m.Called(ctx, scope, fromMillis, toMillis)
	return args.Get(0).(domain.DayTally), args.Error(1)
}

func (m *MockReviewRepository) HistoryPage(ctx context.Context, scope domain.Scope, filter domain.HistoryFilter) ([]domain.HistoryEntry, int, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Int(1), args.Error(2)
}

// MockProgressRepository is a mock for ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, scope domain.Scope, date string) (*domain.ProgressSnapshot, error) {
	args := m.Called(ctx, scope, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProgressSnapshot), args.Error(1)
}

func (m *MockProgressRepository) CreateIfAbsent(ctx context.Context, snap *domain.ProgressSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockProgressRepository) UpdateCounters(ctx context.Context, scope domain.Scope, date string, patch domain.ProgressPatch) (bool, error) {
	args := m.Called(ctx, scope, date, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepository) Delete(ctx context.Context, scope domain.Scope, date string) error {
	args := m.Called(ctx, scope, date)
	return args.Error(0)
}

func (m *MockProgressRepository) ListRange(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]domain.ProgressSnapshot, error) {
	args := m.Called(ctx, scope, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressSnapshot), args.Error(1)
}

func (m *MockProgressRepository) ListDays(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.ProgressSnapshot, error) {
	args := m.Called(ctx, scope, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressSnapshot), args.Error(1)
}

func (m *MockProgressRepository) CountDays(ctx context.Context, scope domain.Scope) (int, error) {
	args := m.Called(ctx, scope)
	return args.Int(0), args.Error(1)
}
