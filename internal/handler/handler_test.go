package handler

import (
	"context"
	"fmt"
	"testing"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository/sqlstore"
	"kumarajiva/internal/service"
	"kumarajiva/internal/srs"
	"kumarajiva/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTelegramID = int64(100)
	testPassword   = "secret"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return newTestHandlerWithConfig(t, srs.DefaultConfig())
}

func newTestHandlerWithConfig(t *testing.T, cfg srs.Config) *Handler {
	t.Helper()
	ctx := context.Background()
	logger := testutil.NewTestLogger()

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlstore.Migrate(db, logger))

	sched := testutil.NewTestScheduler(t, cfg)
	userRepo := sqlstore.NewUserRepo(db)
	vocabRepo := sqlstore.NewVocabularyRepo(db, logger)
	reviewRepo := sqlstore.NewReviewRepo(db, logger)
	progressRepo := sqlstore.NewProgressRepo(db)
	tx := sqlstore.NewTxRunner(db)

	return NewHandler(nil, Services{
		Auth:       service.NewAuthService(userRepo, testPassword),
		Vocabulary: service.NewVocabularyService(vocabRepo, tx, sched, logger),
		Review:     service.NewReviewService(vocabRepo, reviewRepo, tx, sched, logger),
		Planner:    service.NewPlannerService(vocabRepo, reviewRepo, progressRepo, tx, sched, logger),
		Quiz:       service.NewQuizService(vocabRepo, logger),
		Stats:      service.NewStatsService(vocabRepo, progressRepo, sched, logger),
	}, logger)
}

func authorize(t *testing.T, h *Handler) {
	t.Helper()
	c := testutil.NewTextContext(testTelegramID, testPassword)
	require.NoError(t, h.handleText(c))
	require.Contains(t, c.Last(), "Access granted")
}

func addWord(t *testing.T, h *Handler, word, meaning string) {
	t.Helper()
	c := testutil.NewTextContext(testTelegramID, word)
	require.NoError(t, h.handleText(c))
	c = testutil.NewTextContext(testTelegramID, meaning)
	require.NoError(t, h.handleText(c))
	require.Contains(t, c.Last(), "Saved")
}

func scopeFor(t *testing.T, h *Handler) domain.Scope {
	t.Helper()
	user, err := h.authService.EnsureUserExists(context.Background(), testTelegramID, "tester")
	require.NoError(t, err)
	return domain.UserScope(user.ID)
}

func press(t *testing.T, h *Handler, data string) *testutil.FakeContext {
	t.Helper()
	c := testutil.NewCallbackContext(testTelegramID, data)
	require.NoError(t, h.handleCallback(c))
	return c
}

func TestHandleText_Password(t *testing.T) {
	h := newTestHandler(t)

	c := testutil.NewTextContext(testTelegramID, "guess")
	require.NoError(t, h.handleText(c))
	assert.Equal(t, "Wrong password", c.Last())

	authorize(t, h)

	ok, err := h.authService.IsAuthorized(context.Background(), testTelegramID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandleStart(t *testing.T) {
	h := newTestHandler(t)

	c := testutil.NewTextContext(testTelegramID, "/start")
	require.NoError(t, h.handleStart(c))
	assert.Equal(t, msgPasswordPrompt, c.Last())

	authorize(t, h)

	c = testutil.NewTextContext(testTelegramID, "/start")
	require.NoError(t, h.handleStart(c))
	assert.Equal(t, msgMainMenu, c.Last())
}

func TestHandleText_AddWord(t *testing.T) {
	h := newTestHandler(t)
	authorize(t, h)

	c := testutil.NewTextContext(testTelegramID, "apple")
	require.NoError(t, h.handleText(c))
	assert.Contains(t, c.Last(), `Send the meaning of "apple"`)
	assert.Equal(t, domain.StateWaitingMeaning, h.GetState(testTelegramID).State)

	c = testutil.NewTextContext(testTelegramID, "n. a round fruit")
	require.NoError(t, h.handleText(c))
	assert.Contains(t, c.Last(), "You can add 9 more new words today")
	assert.Equal(t, domain.StateWaitingWord, h.GetState(testTelegramID).State)

	entry, err := h.vocabulary.Get(context.Background(), scopeFor(t, h), "apple")
	require.NoError(t, err)
	assert.Equal(t, []domain.Definition{{PartOfSpeech: "n.", Meaning: "a round fruit"}}, entry.Definitions)

	// Same word again
	require.NoError(t, h.handleText(testutil.NewTextContext(testTelegramID, "apple")))
	c = testutil.NewTextContext(testTelegramID, "fruit")
	require.NoError(t, h.handleText(c))
	assert.Contains(t, c.Last(), "already in your vocabulary")
}

func TestHandleCallback_Cancel(t *testing.T) {
	h := newTestHandler(t)
	authorize(t, h)
	h.SetState(testTelegramID, &domain.StateData{State: domain.StateWaitingMeaning, CurrentWord: "apple"})

	c := press(t, h, "cancel")
	assert.Equal(t, msgMainMenu, c.Last())
	assert.Equal(t, domain.StateIdle, h.GetState(testTelegramID).State)
}

func TestStudy_FlashcardWhenTooFewWords(t *testing.T) {
	h := newTestHandler(t)
	authorize(t, h)
	addWord(t, h, "apple", "a round fruit")

	c := press(t, h, "study")
	assert.Contains(t, c.Last(), "Do you remember")
	assert.Contains(t, c.Last(), "🆕 new word")
	state := h.GetState(testTelegramID)
	assert.Equal(t, domain.StateWaitingAnswer, state.State)
	assert.Nil(t, state.Quiz)

	// Raw data of a dynamic button arrives prefixed with \f
	c = press(t, h, "\fknow_1")
	assert.Contains(t, c.Last(), "a round fruit")
	assert.Contains(t, c.Last(), "Progress: 1/1, 1 correct")

	c = press(t, h, "study")
	assert.Contains(t, c.Last(), "Nothing left for today")
	assert.Contains(t, c.Last(), "Reviewed 1 of 1, 1 correct")
}

func TestStudy_Quiz(t *testing.T) {
	h := newTestHandler(t)
	authorize(t, h)
	for i, w := range []string{"apple", "banana", "cherry", "date"} {
		addWord(t, h, w, fmt.Sprintf("meaning %d", i))
	}

	press(t, h, "study")
	state := h.GetState(testTelegramID)
	require.NotNil(t, state.Quiz)
	require.Len(t, state.Quiz.Options, 4)
	idx := state.Quiz.CorrectIndex()
	require.GreaterOrEqual(t, idx, 0)

	c := press(t, h, fmt.Sprintf("\fans_%d", idx))
	assert.Contains(t, c.Last(), "Correct!")
	assert.Contains(t, c.Last(), "Progress: 1/4, 1 correct")

	// A second tap on the same keyboard does not record twice
	c = press(t, h, fmt.Sprintf("\fans_%d", idx))
	assert.Equal(t, "This question has expired", c.LastAlert())

	press(t, h, "study")
	state = h.GetState(testTelegramID)
	require.NotNil(t, state.Quiz)
	wrong := (state.Quiz.CorrectIndex() + 1) % len(state.Quiz.Options)

	c = press(t, h, fmt.Sprintf("\fans_%d", wrong))
	assert.Contains(t, c.Last(), "Wrong. The answer is: "+state.Quiz.CorrectAnswer)
	assert.Contains(t, c.Last(), "Progress: 2/4, 1 correct")
}

func TestStudy_StopsAtDailyNewWords(t *testing.T) {
	cfg := srs.DefaultConfig()
	cfg.DailyNewWords = 2
	h := newTestHandlerWithConfig(t, cfg)
	authorize(t, h)

	scope := scopeFor(t, h)
	entries := make([]domain.VocabularyEntry, 0, 6)
	for i, w := range []string{"apple", "banana", "cherry", "date", "elder", "fig"} {
		entries = append(entries, domain.VocabularyEntry{
			Word:        w,
			Definitions: []domain.Definition{{Meaning: fmt.Sprintf("meaning %d", i)}},
		})
	}
	_, err := h.vocabulary.Import(context.Background(), scope, entries)
	require.NoError(t, err)

	var c *testutil.FakeContext
	for i := 0; i < 6; i++ {
		c = press(t, h, "study")
		state := h.GetState(testTelegramID)
		if state.State != domain.StateWaitingAnswer {
			break
		}
		require.NotNil(t, state.Quiz)
		press(t, h, fmt.Sprintf("\fans_%d", state.Quiz.CorrectIndex()))
	}
	assert.Contains(t, c.Last(), "Reviewed 2 of 2, 2 correct")

	// Only two words were introduced today
	words, err := h.planner.TodayWords(context.Background(), scope)
	require.NoError(t, err)
	assert.Len(t, words, 2)
	for _, w := range words {
		assert.True(t, w.IsNew)
	}
	stats, err := h.stats.CurrentStats(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReviews)
}

func TestHistoryAndReset(t *testing.T) {
	h := newTestHandler(t)
	authorize(t, h)
	addWord(t, h, "apple", "a round fruit")

	c := press(t, h, "view_days")
	assert.Equal(t, "No study sessions yet", c.LastAlert())

	press(t, h, "study")
	press(t, h, "\fknow_0")

	c = press(t, h, "view_days")
	assert.Contains(t, c.Markups[len(c.Markups)-1].InlineKeyboard[0][0].Text, "Today (1/1, 0 ✅)")

	today := h.planner.Today().DateString()
	c = press(t, h, "\fday_"+today)
	assert.Contains(t, c.Last(), "1. ❌ apple")

	c = press(t, h, "reset_today")
	assert.Contains(t, c.Last(), "Today's answers were cleared")

	c = press(t, h, "\fday_"+today)
	assert.Equal(t, "No answers on this day", c.LastAlert())

	// The word is back in today's plan
	c = press(t, h, "study")
	assert.Contains(t, c.Last(), "apple")
}

func TestHandleStats(t *testing.T) {
	h := newTestHandler(t)
	authorize(t, h)
	addWord(t, h, "apple", "a round fruit")
	press(t, h, "study")
	press(t, h, "\fknow_1")

	c := press(t, h, "stats")
	assert.Contains(t, c.Last(), "Words: 1")
	assert.Contains(t, c.Last(), "Answers given: 1")
	assert.Contains(t, c.Last(), "🟩 "+h.planner.Today().DateString()+"  1/1")
}

func TestStatsText_LastWeekOnly(t *testing.T) {
	series := make([]domain.DailyContribution, 10)
	for i := range series {
		series[i] = domain.DailyContribution{Date: fmt.Sprintf("2024-06-%02d", i+1)}
	}
	series[9] = domain.DailyContribution{Date: "2024-06-10", TotalWords: 4, Completed: 2}

	text := statsText(&domain.Stats{TotalWords: 4}, series)
	assert.NotContains(t, text, "2024-06-03")
	assert.Contains(t, text, "⬜ 2024-06-04")
	assert.Contains(t, text, "🟨 2024-06-10  2/4")
}

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.Definition
	}{
		{
			name:     "plain meaning",
			input:    "a round fruit",
			expected: domain.Definition{Meaning: "a round fruit"},
		},
		{
			name:     "with part of speech",
			input:    "adj. very large",
			expected: domain.Definition{PartOfSpeech: "adj.", Meaning: "very large"},
		},
		{
			name:     "abbreviation alone is a meaning",
			input:    "etc.",
			expected: domain.Definition{Meaning: "etc."},
		},
		{
			name:     "long first word is not a part of speech",
			input:    "approximately. more or less",
			expected: domain.Definition{Meaning: "approximately. more or less"},
		},
		{
			name:     "surrounding whitespace",
			input:    "  n.  fruit  ",
			expected: domain.Definition{PartOfSpeech: "n.", Meaning: "fruit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseDefinition(tt.input))
		})
	}
}
