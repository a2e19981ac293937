package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kumarajiva/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var btnNext = tele.Btn{
	Unique: "study",
	Text:   "➡️ Next",
}

// handleStudy shows the next word of today's session. Answered words drop
// out of the plan, so the next word is always the first one. The session
// ends once the snapshot's total is answered, otherwise unseen words would
// keep refilling the new-word slots.
func (h *Handler) handleStudy(c tele.Context) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Send(msgError)
	}

	snap, err := h.planner.GetOrCreateProgress(ctx, scope, "")
	if err != nil {
		h.logger.Error("Failed to load progress", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(msgError)
	}

	words, err := h.planner.TodayWords(ctx, scope)
	if err != nil {
		h.logger.Error("Failed to plan session", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(msgError)
	}

	if len(words) == 0 || snap.Completed >= snap.TotalWords {
		h.ResetState(userID)
		text := fmt.Sprintf("🎉 Nothing left for today!\n\nReviewed %d of %d, %d correct.",
			snap.Completed, snap.TotalWords, snap.Correct)
		return h.reply(c, text, mainMenuMarkup())
	}

	next := words[0]
	quiz, err := h.quiz.Generate(ctx, scope, next.Word)
	switch {
	case err == nil:
		h.SetState(userID, &domain.StateData{
			State:       domain.StateWaitingAnswer,
			CurrentWord: quiz.Word,
			Quiz:        quiz,
		})
		return h.reply(c, quizText(quiz, next, len(words)), quizMarkup(quiz))

	case errors.Is(err, domain.ErrInsufficientData):
		// Too few words for distractors: fall back to a self-graded card
		h.SetState(userID, &domain.StateData{
			State:       domain.StateWaitingAnswer,
			CurrentWord: next.Word,
		})
		return h.reply(c, flashcardText(next, len(words)), flashcardMarkup())
	}

	h.logger.Error("Failed to generate quiz", zap.Error(err), zap.String("word", next.Word))
	return c.Send(msgError)
}

// handleQuizAnswer grades a multiple-choice answer
func (h *Handler) handleQuizAnswer(c tele.Context, data string) error {
	idx, err := strconv.Atoi(strings.TrimPrefix(data, "ans_"))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid answer"})
	}

	unlock := h.lockUser(c.Sender().ID)
	defer unlock()

	state := h.GetState(c.Sender().ID)
	if state.State != domain.StateWaitingAnswer || state.Quiz == nil {
		return c.Respond(&tele.CallbackResponse{Text: "This question has expired"})
	}
	quiz := state.Quiz

	correct := idx == quiz.CorrectIndex()
	var feedback string
	if correct {
		feedback = "✅ Correct!"
	} else {
		feedback = fmt.Sprintf("❌ Wrong. The answer is: %s", quiz.CorrectAnswer)
	}
	return h.recordAnswer(c, quiz.Word, correct, feedback+"\n\n"+definitionsText(quiz.Definitions, quiz.MemoryMethod))
}

// handleFlashcard records a self-graded answer
func (h *Handler) handleFlashcard(c tele.Context, data string) error {
	correct := strings.TrimPrefix(data, "know_") == "1"

	unlock := h.lockUser(c.Sender().ID)
	defer unlock()

	state := h.GetState(c.Sender().ID)
	if state.State != domain.StateWaitingAnswer || state.CurrentWord == "" {
		return c.Respond(&tele.CallbackResponse{Text: "This card has expired"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	entry, err := h.vocabulary.Get(ctx, scope, state.CurrentWord)
	if err != nil {
		h.logger.Error("Failed to load word", zap.Error(err), zap.String("word", state.CurrentWord))
		h.ResetState(c.Sender().ID)
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	feedback := "👍 Noted."
	if !correct {
		feedback = "📌 Keep practising."
	}
	return h.recordAnswer(c, entry.Word, correct, feedback+"\n\n"+definitionsText(entry.Definitions, entry.MemoryMethod))
}

// recordAnswer writes the answer to the ledger and syncs today's progress.
// The caller holds the user lock.
func (h *Handler) recordAnswer(c tele.Context, word string, correct bool, feedback string) error {
	userID := c.Sender().ID
	h.ResetState(userID)

	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	outcome, err := h.review.RecordReview(ctx, scope, word, correct)
	if err != nil {
		h.logger.Error("Failed to record review",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("word", word),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	snap, err := h.planner.ReconcileProgress(ctx, scope)
	if err != nil {
		h.logger.Error("Failed to update progress", zap.Error(err), zap.Int64("user_id", userID))
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	var b strings.Builder
	b.WriteString(feedback)
	if outcome.Mastered {
		fmt.Fprintf(&b, "\n\n🏆 %s mastered!", outcome.Word)
	}
	fmt.Fprintf(&b, "\n\nProgress: %d/%d, %d correct", snap.Completed, snap.TotalWords, snap.Correct)

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnNext), markup.Row(btnMainMenu))
	return h.reply(c, b.String(), markup)
}

func wordHeader(word string, phonetic string) string {
	if phonetic == "" {
		return "📝 " + word
	}
	return fmt.Sprintf("📝 %s  [%s]", word, phonetic)
}

func sessionTag(w domain.TodayWord, left int) string {
	if w.IsNew {
		return fmt.Sprintf("🆕 new word · %d left", left)
	}
	return fmt.Sprintf("🔁 review #%d · %d left", w.ReviewCount+1, left)
}

func quizText(q *domain.Quiz, w domain.TodayWord, left int) string {
	var b strings.Builder
	b.WriteString(sessionTag(w, left))
	b.WriteString("\n\n")
	b.WriteString(wordHeader(q.Word, q.Phonetic))
	b.WriteString("\n\nChoose the meaning:\n")
	for i, o := range q.Options {
		if o.PartOfSpeech != "" {
			fmt.Fprintf(&b, "\n%d. %s %s", i+1, o.PartOfSpeech, o.Definition)
		} else {
			fmt.Fprintf(&b, "\n%d. %s", i+1, o.Definition)
		}
	}
	return b.String()
}

func quizMarkup(q *domain.Quiz) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	buttons := make([]tele.Btn, 0, len(q.Options))
	for i := range q.Options {
		buttons = append(buttons, markup.Data(strconv.Itoa(i+1), fmt.Sprintf("ans_%d", i)))
	}
	markup.Inline(markup.Row(buttons...), markup.Row(btnCancel))
	return markup
}

func flashcardText(w domain.TodayWord, left int) string {
	return fmt.Sprintf("%s\n\n%s\n\nDo you remember what it means?",
		sessionTag(w, left), wordHeader(w.Word, w.Pronunciation.Phonetic()))
}

func flashcardMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("✅ I knew it", "know_1"), markup.Data("❌ I forgot", "know_0")),
		markup.Row(btnCancel),
	)
	return markup
}

func definitionsText(defs []domain.Definition, memoryMethod string) string {
	var b strings.Builder
	for i, d := range defs {
		if i > 0 {
			b.WriteString("\n")
		}
		if d.PartOfSpeech != "" {
			fmt.Fprintf(&b, "• %s %s", d.PartOfSpeech, d.Meaning)
		} else {
			fmt.Fprintf(&b, "• %s", d.Meaning)
		}
	}
	if memoryMethod != "" {
		fmt.Fprintf(&b, "\n\n💡 %s", memoryMethod)
	}
	return b.String()
}
