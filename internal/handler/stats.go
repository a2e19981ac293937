package handler

import (
	"context"
	"fmt"
	"strings"

	"kumarajiva/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// weekDays is how many trailing contribution days the stats view shows
const weekDays = 7

// handleStats shows vocabulary totals and the last week of sessions
func (h *Handler) handleStats(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Send(msgError)
	}

	stats, err := h.stats.CurrentStats(ctx, scope)
	if err != nil {
		h.logger.Error("Failed to load stats", zap.Error(err))
		return c.Send(msgError)
	}

	series, err := h.stats.Contribution(ctx, scope)
	if err != nil {
		h.logger.Error("Failed to load contribution", zap.Error(err))
		return c.Send(msgError)
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnStudy), markup.Row(btnBack))
	return h.reply(c, statsText(stats, series), markup)
}

func statsText(stats *domain.Stats, series []domain.DailyContribution) string {
	var b strings.Builder
	b.WriteString("📊 Your vocabulary\n\n")
	fmt.Fprintf(&b, "Words: %d\n", stats.TotalWords)
	fmt.Fprintf(&b, "Mastered: %d\n", stats.MasteredWordsCount)
	fmt.Fprintf(&b, "New for today: %d\n", stats.NewWordsCount)
	fmt.Fprintf(&b, "In review: %d\n", stats.ReviewWordsCount)
	fmt.Fprintf(&b, "Answers given: %d\n", stats.TotalReviews)

	if len(series) > weekDays {
		series = series[len(series)-weekDays:]
	}
	b.WriteString("\nLast 7 days:\n")
	for _, p := range series {
		mark := "⬜"
		switch {
		case p.TotalWords > 0 && p.Completed >= p.TotalWords:
			mark = "🟩"
		case p.Completed > 0:
			mark = "🟨"
		}
		fmt.Fprintf(&b, "%s %s  %d/%d\n", mark, p.Date, p.Completed, p.TotalWords)
	}
	return b.String()
}

// handleReset wipes today's answers and progress
func (h *Handler) handleReset(c tele.Context) error {
	userID := c.Sender().ID

	unlock := h.lockUser(userID)
	defer unlock()

	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Send(msgError)
	}

	if err := h.planner.ResetToday(ctx, scope); err != nil {
		return c.Send(msgError)
	}

	h.ResetState(userID)
	return h.reply(c, "♻️ Today's answers were cleared. You can study them again.\n\n"+msgMainMenu, mainMenuMarkup())
}

// SendReminder tells a Telegram user how many words wait for them today
func (h *Handler) SendReminder(_ context.Context, telegramID int64, count int) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnStudy))

	text := fmt.Sprintf("⏰ %d words are waiting for you today.", count)
	if _, err := h.bot.Send(&tele.User{ID: telegramID}, text, markup); err != nil {
		return fmt.Errorf("send reminder to %d: %w", telegramID, err)
	}
	return nil
}
