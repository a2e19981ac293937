package handler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"kumarajiva/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// If message is not modified, it was already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Static buttons whose Unique did not come through
	key := callback.Unique
	if key == "" {
		key = data
	}
	switch key {
	case "view_days", "back_to_days":
		return h.handleViewDays(c)
	case "study":
		return h.handleStudy(c)
	case "add_word":
		return h.handleAddWord(c)
	case "stats":
		return h.handleStats(c)
	case "reset_today":
		return h.handleReset(c)
	case "cancel":
		return h.handleCancel(c)
	case "back", "main_menu":
		return h.handleStart(c)
	}

	// Handle by Data prefix (dynamic buttons)
	switch {
	case strings.HasPrefix(data, "page_"):
		return h.handlePagination(c, data)
	case strings.HasPrefix(data, "day_"):
		return h.handleDaySelection(c, data)
	case strings.HasPrefix(data, "ans_"):
		return h.handleQuizAnswer(c, data)
	case strings.HasPrefix(data, "know_"):
		return h.handleFlashcard(c, data)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleViewDays shows the first page of session days
func (h *Handler) handleViewDays(c tele.Context) error {
	return h.showDays(c, 1)
}

// handlePagination handles page navigation
func (h *Handler) handlePagination(c tele.Context, data string) error {
	page, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(data), "page_"))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid page"})
	}
	return h.showDays(c, page)
}

func (h *Handler) showDays(c tele.Context, page int) error {
	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	days, totalPages, err := h.planner.DaysList(ctx, scope, page)
	if err != nil {
		h.logger.Error("Failed to get days list", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Failed to load data"})
	}

	if len(days) == 0 {
		return c.Respond(&tele.CallbackResponse{
			Text:      "No study sessions yet",
			ShowAlert: true,
		})
	}

	today := h.planner.Today()
	loc := today.Date.Location()

	text := "📅 Your study days:\n\n"
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}

	for _, snap := range days {
		label := snap.Date
		if day, err := domain.ParseDay(snap.Date, loc); err == nil {
			label = day.DisplayString(today.Date)
		}
		btnText := fmt.Sprintf("%s (%d/%d, %d ✅)", label, snap.Completed, snap.TotalWords, snap.Correct)
		rows = append(rows, markup.Row(markup.Data(btnText, "day_"+snap.Date)))
	}

	// Add pagination buttons
	if totalPages > 1 {
		navRow := tele.Row{}
		if page > 1 {
			navRow = append(navRow, markup.Data("⬅️", fmt.Sprintf("page_%d", page-1)))
		}
		if page < totalPages {
			navRow = append(navRow, markup.Data("➡️", fmt.Sprintf("page_%d", page+1)))
		}
		if len(navRow) > 0 {
			rows = append(rows, navRow)
		}
	}

	rows = append(rows, markup.Row(btnBack))
	markup.Inline(rows...)

	return h.reply(c, text, markup)
}

// handleDaySelection shows the answers of the selected day
func (h *Handler) handleDaySelection(c tele.Context, data string) error {
	userID := c.Sender().ID
	dateStr := strings.TrimPrefix(strings.TrimSpace(data), "day_")

	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	records, err := h.review.DayRecords(ctx, scope, dateStr)
	if err != nil {
		h.logger.Error("Failed to get day records",
			zap.Error(err),
			zap.String("date", dateStr),
			zap.Int64("user_id", userID),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Failed to load data"})
	}

	if len(records) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "No answers on this day"})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 Answers on %s (%d):\n\n", dateStr, len(records))
	for i, rec := range records {
		mark := "❌"
		if rec.WasCorrect {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, mark, rec.Word)
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnBackToDays, btnMainMenu),
	)

	return h.reply(c, b.String(), markup)
}
