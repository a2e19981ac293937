package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/srs"
	"kumarajiva/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 17, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func todayBounds() (int64, int64) {
	day := domain.DayOf(fixedNow, time.UTC)
	return day.StartMillis(), day.EndMillis()
}

func newVocabularyService(t *testing.T, cfg srs.Config) (*VocabularyService, *testutil.MockVocabularyRepository, *testutil.MockTxRunner) {
	repo := new(testutil.MockVocabularyRepository)
	tx := new(testutil.MockTxRunner)
	svc := NewVocabularyService(repo, tx, testutil.NewTestScheduler(t, cfg), testutil.NewTestLogger())
	svc.now = fixedClock
	return svc, repo, tx
}

func TestVocabularyService_Add(t *testing.T) {
	owner := int64(7)
	scope := domain.UserScope(owner)
	from, to := todayBounds()

	tests := []struct {
		name              string
		scope             domain.Scope
		entry             domain.VocabularyEntry
		addedToday        int
		createError       error
		expectedCode      domain.ErrorCode
		expectedRemaining int
	}{
		{
			name:              "first word of the day",
			scope:             scope,
			entry:             testutil.NewTestEntry("  apple ", "a fruit", 0),
			addedToday:        0,
			expectedRemaining: 1,
		},
		{
			name:              "last slot",
			scope:             scope,
			entry:             testutil.NewTestEntry("apple", "a fruit", 0),
			addedToday:        1,
			expectedRemaining: 0,
		},
		{
			name:         "quota reached",
			scope:        scope,
			entry:        testutil.NewTestEntry("apple", "a fruit", 0),
			addedToday:   2,
			expectedCode: domain.CodeQuotaExceeded,
		},
		{
			name:         "duplicate",
			scope:        scope,
			entry:        testutil.NewTestEntry("apple", "a fruit", 0),
			createError:  domain.AlreadyExists("word exists"),
			expectedCode: domain.CodeAlreadyExists,
		},
		{
			name:         "empty word",
			scope:        scope,
			entry:        testutil.NewTestEntry(" ", "a fruit", 0),
			expectedCode: domain.CodeValidation,
		},
		{
			name:         "no definitions",
			scope:        scope,
			entry:        domain.VocabularyEntry{Word: "apple"},
			expectedCode: domain.CodeValidation,
		},
		{
			name:         "anonymous outside legacy mode",
			scope:        domain.NewScope(nil, false),
			entry:        testutil.NewTestEntry("apple", "a fruit", 0),
			expectedCode: domain.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := srs.DefaultConfig()
			cfg.DailyNewWords = 2
			svc, repo, tx := newVocabularyService(t, cfg)

			tx.On("InTx", mock.Anything).Return(nil).Maybe()
			repo.On("CountCreatedBetween", mock.Anything, tt.scope, from, to).Return(tt.addedToday, nil).Maybe()
			repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.VocabularyEntry) bool {
				return e.Word == "apple" && e.CreatedAt == fixedNow.UnixMilli() && e.OwnerID == tt.scope.OwnerID
			})).Return(tt.createError).Maybe()

			result, err := svc.Add(context.Background(), tt.scope, tt.entry)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, domain.CodeOf(err))
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "apple", result.Entry.Word)
			assert.Equal(t, tt.expectedRemaining, result.RemainingToday)
			repo.AssertExpectations(t)
		})
	}
}

func TestVocabularyService_RemainingNewWords(t *testing.T) {
	svc, repo, _ := newVocabularyService(t, srs.DefaultConfig())
	scope := domain.UserScope(1)
	from, to := todayBounds()

	repo.On("CountCreatedBetween", mock.Anything, scope, from, to).Return(12, nil)

	remaining, err := svc.RemainingNewWords(context.Background(), scope)

	assert.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestVocabularyService_GetUpdateDelete(t *testing.T) {
	scope := domain.NewScope(nil, true)
	entry := testutil.NewTestEntry("apple", "a fruit", 1)
	method := "mnemonic"

	t.Run("get missing", func(t *testing.T) {
		svc, repo, _ := newVocabularyService(t, srs.DefaultConfig())
		repo.On("Get", mock.Anything, scope, "pear").Return(nil, nil)

		_, err := svc.Get(context.Background(), scope, "pear")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		svc, repo, _ := newVocabularyService(t, srs.DefaultConfig())
		patch := domain.VocabularyPatch{MemoryMethod: &method}
		updated := entry
		updated.MemoryMethod = method
		repo.On("Update", mock.Anything, scope, "apple", patch).Return(true, nil)
		repo.On("Get", mock.Anything, scope, "apple").Return(&updated, nil)

		got, err := svc.Update(context.Background(), scope, "apple", patch)
		require.NoError(t, err)
		assert.Equal(t, method, got.MemoryMethod)
	})

	t.Run("update missing", func(t *testing.T) {
		svc, repo, _ := newVocabularyService(t, srs.DefaultConfig())
		patch := domain.VocabularyPatch{MemoryMethod: &method}
		repo.On("Update", mock.Anything, scope, "pear", patch).Return(false, nil)

		_, err := svc.Update(context.Background(), scope, "pear", patch)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("update with empty definitions", func(t *testing.T) {
		svc, _, _ := newVocabularyService(t, srs.DefaultConfig())
		defs := []domain.Definition{}

		_, err := svc.Update(context.Background(), scope, "apple", domain.VocabularyPatch{Definitions: &defs})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty patch", func(t *testing.T) {
		svc, _, _ := newVocabularyService(t, srs.DefaultConfig())

		_, err := svc.Update(context.Background(), scope, "apple", domain.VocabularyPatch{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("delete missing", func(t *testing.T) {
		svc, repo, _ := newVocabularyService(t, srs.DefaultConfig())
		repo.On("Delete", mock.Anything, scope, "pear").Return(false, nil)

		err := svc.Delete(context.Background(), scope, "pear")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestVocabularyService_Import(t *testing.T) {
	scope := domain.UserScope(3)

	t.Run("skips invalid records and keeps flags", func(t *testing.T) {
		svc, repo, tx := newVocabularyService(t, srs.DefaultConfig())
		tx.On("InTx", mock.Anything).Return(nil)

		mastered := testutil.NewTestEntry("apple", "a fruit", 500)
		mastered.Mastered = true
		undated := testutil.NewTestEntry("pear", "another fruit", 0)
		broken := domain.VocabularyEntry{Word: "ghost"}

		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.VocabularyEntry) bool {
			return e.Word == "apple" && e.Mastered && e.CreatedAt == 500 && *e.OwnerID == 3
		})).Return(nil).Once()
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.VocabularyEntry) bool {
			return e.Word == "pear" && e.CreatedAt == fixedNow.UnixMilli()
		})).Return(nil).Once()

		result, err := svc.Import(context.Background(), scope, []domain.VocabularyEntry{mastered, broken, undated})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, []string{"ghost"}, result.Skipped)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure aborts", func(t *testing.T) {
		svc, repo, tx := newVocabularyService(t, srs.DefaultConfig())
		tx.On("InTx", mock.Anything).Return(nil)
		repo.On("Upsert", mock.Anything, mock.Anything).Return(domain.Storage("upsert", errors.New("disk full")))

		_, err := svc.Import(context.Background(), scope, []domain.VocabularyEntry{testutil.NewTestEntry("apple", "a fruit", 1)})
		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestVocabularyService_Export(t *testing.T) {
	svc, repo, _ := newVocabularyService(t, srs.DefaultConfig())
	scope := domain.UserScope(3)

	entries := []domain.VocabularyEntry{
		testutil.NewTestEntry("apple", "a fruit", 2),
		testutil.NewTestEntry("pear", "another fruit", 1),
	}
	repo.On("List", mock.Anything, scope, 0, 0).Return(entries, nil)

	out, err := svc.Export(context.Background(), scope)

	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "another fruit", out["pear"].FirstDefinition().Meaning)
}
