package service

import (
	"context"
	"errors"
	"testing"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/srs"
	"kumarajiva/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const today = "2024-06-17"

type plannerMocks struct {
	vocab    *testutil.MockVocabularyRepository
	reviews  *testutil.MockReviewRepository
	progress *testutil.MockProgressRepository
	tx       *testutil.MockTxRunner
}

func newPlannerService(t *testing.T, cfg srs.Config) (*PlannerService, plannerMocks) {
	m := plannerMocks{
		vocab:    new(testutil.MockVocabularyRepository),
		reviews:  new(testutil.MockReviewRepository),
		progress: new(testutil.MockProgressRepository),
		tx:       new(testutil.MockTxRunner),
	}
	svc := NewPlannerService(m.vocab, m.reviews, m.progress, m.tx, testutil.NewTestScheduler(t, cfg), testutil.NewTestLogger())
	svc.now = fixedClock
	return svc, m
}

func smallConfig() srs.Config {
	return srs.Config{
		DailyNewWords:    2,
		DailyReviewLimit: 5,
		ReviewIntervals:  []int{1, 2, 4, 7, 15, 30},
		MasteryThreshold: 6,
	}
}

func TestPlannerService_TodayWords(t *testing.T) {
	scope := domain.UserScope(1)
	svc, m := newPlannerService(t, smallConfig())

	fresh := []domain.VocabularyEntry{
		testutil.NewTestEntry("apple", "a fruit", 1),
		testutil.NewTestEntry("banana", "yellow", 2),
	}
	dayMillis := int64(24 * 60 * 60 * 1000)
	reviewed := []domain.HistoryEntry{
		{VocabularyEntry: testutil.NewTestEntry("kiwi", "green", 0), ReviewCount: 1, LastReviewedAt: fixedNow.UnixMilli()},
		{VocabularyEntry: testutil.NewTestEntry("plum", "purple", 0), ReviewCount: 1, LastReviewedAt: fixedNow.UnixMilli() - 3*dayMillis},
	}
	m.vocab.On("ListNew", mock.Anything, scope, 2).Return(fresh, nil)
	m.vocab.On("ListReviewed", mock.Anything, scope).Return(reviewed, nil)

	words, err := svc.TodayWords(context.Background(), scope)

	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.Equal(t, "apple", words[0].Word)
	assert.True(t, words[0].IsNew)
	assert.Equal(t, "banana", words[1].Word)
	assert.True(t, words[1].IsNew)
	assert.Equal(t, "plum", words[2].Word)
	assert.False(t, words[2].IsNew)
	assert.Equal(t, 1, words[2].ReviewCount)
}

func TestPlannerService_GetOrCreateProgress(t *testing.T) {
	scope := domain.NewScope(nil, true)

	t.Run("existing snapshot", func(t *testing.T) {
		svc, m := newPlannerService(t, smallConfig())
		snap := &domain.ProgressSnapshot{Date: today, TotalWords: 4, Completed: 1}
		m.progress.On("Get", mock.Anything, scope, today).Return(snap, nil)

		got, err := svc.GetOrCreateProgress(context.Background(), scope, "")

		require.NoError(t, err)
		assert.Equal(t, snap, got)
		m.progress.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})

	t.Run("created lazily from today's words", func(t *testing.T) {
		svc, m := newPlannerService(t, smallConfig())
		created := &domain.ProgressSnapshot{Date: today, TotalWords: 1}

		m.progress.On("Get", mock.Anything, scope, today).Return(nil, nil).Once()
		m.vocab.On("ListNew", mock.Anything, scope, 2).Return([]domain.VocabularyEntry{testutil.NewTestEntry("apple", "a fruit", 1)}, nil)
		m.vocab.On("ListReviewed", mock.Anything, scope).Return([]domain.HistoryEntry{}, nil)
		m.progress.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(s *domain.ProgressSnapshot) bool {
			return s.Date == today && s.TotalWords == 1 && s.Completed == 0 && s.OwnerID == nil
		})).Return(nil)
		m.progress.On("Get", mock.Anything, scope, today).Return(created, nil).Once()

		got, err := svc.GetOrCreateProgress(context.Background(), scope, today)

		require.NoError(t, err)
		assert.Equal(t, created, got)
		m.progress.AssertExpectations(t)
	})

	t.Run("past day is never created", func(t *testing.T) {
		svc, m := newPlannerService(t, smallConfig())
		m.progress.On("Get", mock.Anything, scope, "2024-06-10").Return(nil, nil)

		_, err := svc.GetOrCreateProgress(context.Background(), scope, "2024-06-10")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		m.progress.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
		m.vocab.AssertNotCalled(t, "ListNew", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad date", func(t *testing.T) {
		svc, _ := newPlannerService(t, smallConfig())

		_, err := svc.GetOrCreateProgress(context.Background(), scope, "June 17")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestPlannerService_UpdateProgress(t *testing.T) {
	scope := domain.UserScope(1)

	tests := []struct {
		name          string
		patch         domain.ProgressPatch
		expectedError bool
	}{
		{
			name:  "valid",
			patch: domain.ProgressPatch{CurrentIndex: 2, Completed: 2, Correct: 1},
		},
		{
			name:          "correct exceeds completed",
			patch:         domain.ProgressPatch{CurrentIndex: 2, Completed: 1, Correct: 2},
			expectedError: true,
		},
		{
			name:          "completed exceeds total",
			patch:         domain.ProgressPatch{CurrentIndex: 2, Completed: 9, Correct: 1},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newPlannerService(t, smallConfig())
			m.progress.On("Get", mock.Anything, scope, today).Return(&domain.ProgressSnapshot{Date: today, TotalWords: 4}, nil)
			m.progress.On("UpdateCounters", mock.Anything, scope, today, tt.patch).Return(true, nil).Maybe()

			got, err := svc.UpdateProgress(context.Background(), scope, tt.patch)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrValidation)
				m.progress.AssertNotCalled(t, "UpdateCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.patch.Completed, got.Completed)
			assert.Equal(t, 4, got.TotalWords)
		})
	}
}

func TestPlannerService_ReconcileProgress(t *testing.T) {
	scope := domain.UserScope(1)
	svc, m := newPlannerService(t, smallConfig())
	from, to := todayBounds()

	m.progress.On("Get", mock.Anything, scope, today).Return(&domain.ProgressSnapshot{Date: today, TotalWords: 3, CurrentIndex: 1}, nil)
	// Repeated answers can exceed the session size.
	m.reviews.On("TallyBetween", mock.Anything, scope, from, to).Return(domain.DayTally{Reviewed: 5, Correct: 4}, nil)
	expected := domain.ProgressPatch{CurrentIndex: 3, Completed: 3, Correct: 3}
	m.progress.On("UpdateCounters", mock.Anything, scope, today, expected).Return(true, nil)

	got, err := svc.ReconcileProgress(context.Background(), scope)

	require.NoError(t, err)
	assert.Equal(t, 3, got.Completed)
	assert.Equal(t, 3, got.Correct)
	m.progress.AssertExpectations(t)
}

func TestPlannerService_ResetToday(t *testing.T) {
	scope := domain.UserScope(1)
	from, to := todayBounds()

	t.Run("deletes records and snapshot", func(t *testing.T) {
		svc, m := newPlannerService(t, smallConfig())
		m.tx.On("InTx", mock.Anything).Return(nil)
		m.reviews.On("DeleteBetween", mock.Anything, scope, from, to).Return(int64(3), nil)
		m.progress.On("Delete", mock.Anything, scope, today).Return(nil)

		err := svc.ResetToday(context.Background(), scope)

		assert.NoError(t, err)
		m.reviews.AssertExpectations(t)
		m.progress.AssertExpectations(t)
		m.tx.AssertExpectations(t)
	})

	t.Run("failure surfaces", func(t *testing.T) {
		svc, m := newPlannerService(t, smallConfig())
		m.tx.On("InTx", mock.Anything).Return(nil)
		m.reviews.On("DeleteBetween", mock.Anything, scope, from, to).Return(int64(0), domain.Storage("delete", errors.New("locked")))

		err := svc.ResetToday(context.Background(), scope)

		assert.ErrorIs(t, err, domain.ErrStorage)
		m.progress.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPlannerService_DaysList(t *testing.T) {
	scope := domain.UserScope(1)

	tests := []struct {
		name          string
		page          int
		totalDays     int
		expectedPages int
		expectedOff   int
	}{
		{name: "first page", page: 1, totalDays: 10, expectedPages: 2, expectedOff: 0},
		{name: "second page", page: 2, totalDays: 10, expectedPages: 2, expectedOff: 7},
		{name: "page below one", page: 0, totalDays: 3, expectedPages: 1, expectedOff: 0},
		{name: "no days", page: 1, totalDays: 0, expectedPages: 1, expectedOff: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newPlannerService(t, smallConfig())
			days := []domain.ProgressSnapshot{{Date: today}}
			m.progress.On("ListDays", mock.Anything, scope, 7, tt.expectedOff).Return(days, nil)
			m.progress.On("CountDays", mock.Anything, scope).Return(tt.totalDays, nil)

			got, pages, err := svc.DaysList(context.Background(), scope, tt.page)

			require.NoError(t, err)
			assert.Equal(t, days, got)
			assert.Equal(t, tt.expectedPages, pages)
		})
	}
}
