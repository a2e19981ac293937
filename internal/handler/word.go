package handler

import (
	"errors"
	"fmt"
	"strings"

	"kumarajiva/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to ensure user exists", zap.Error(err))
		return c.Send(msgError)
	}

	// If not authorized, check password
	if !user.Authorized {
		if !h.authService.CheckPassword(text) {
			return c.Send("Wrong password")
		}
		if err := h.authService.AuthorizeUser(ctx, userID); err != nil {
			h.logger.Error("Failed to authorize user", zap.Error(err))
			return c.Send(msgError)
		}

		h.logger.Info("User authorized", zap.Int64("user_id", userID))
		h.ResetState(userID)
		return c.Send("✅ Access granted!\n\n"+msgMainMenu, mainMenuMarkup())
	}

	// User is authorized, handle based on state
	state := h.GetState(userID)

	switch state.State {
	case domain.StateWaitingMeaning:
		word := state.CurrentWord
		def := parseDefinition(text)

		result, err := h.vocabulary.Add(ctx, scope, domain.VocabularyEntry{
			Word:        word,
			Definitions: []domain.Definition{def},
		})
		if err != nil {
			return h.sendAddError(c, word, err)
		}

		h.logger.Info("Word saved",
			zap.Int64("user_id", userID),
			zap.String("word", word),
			zap.Int("remaining_today", result.RemainingToday),
		)

		// Reset to waiting for next word
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingWord})

		return c.Send(fmt.Sprintf(
			"✅ Saved!\n\nYou can add %d more new words today. Send the next word or go back to /start",
			result.RemainingToday,
		), cancelMarkup())

	default:
		// Idle or waiting for a word: the text is the word
		h.SetState(userID, &domain.StateData{
			State:       domain.StateWaitingMeaning,
			CurrentWord: text,
		})

		return c.Send(
			fmt.Sprintf("Send the meaning of %q\n(prefix a part of speech like \"n.\" if you want)", text),
			cancelMarkup(),
		)
	}
}

// handleAddWord starts the add-word flow
func (h *Handler) handleAddWord(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	_, scope, err := h.scopeOf(ctx, c)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}

	remaining, err := h.vocabulary.RemainingNewWords(ctx, scope)
	if err != nil {
		h.logger.Error("Failed to count today's words", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: msgError})
	}
	if remaining == 0 {
		return c.Respond(&tele.CallbackResponse{
			Text:      "You have reached today's limit of new words",
			ShowAlert: true,
		})
	}

	h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingWord})
	return h.reply(c, fmt.Sprintf("Send a word. %d new words left today.", remaining), cancelMarkup())
}

func (h *Handler) sendAddError(c tele.Context, word string, err error) error {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		h.ResetState(c.Sender().ID)
		return c.Send("🚫 You have reached today's limit of new words. Come back tomorrow!", mainMenuMarkup())
	case errors.Is(err, domain.ErrAlreadyExists):
		h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingWord})
		return c.Send(fmt.Sprintf("%q is already in your vocabulary. Send another word.", word), cancelMarkup())
	case errors.Is(err, domain.ErrValidation):
		var derr *domain.Error
		errors.As(err, &derr)
		return c.Send("Could not save: "+derr.Message, cancelMarkup())
	}

	h.logger.Error("Failed to save word",
		zap.Error(err),
		zap.Int64("user_id", c.Sender().ID),
	)
	return c.Send("Could not save the word. Please try again.")
}

// parseDefinition splits an optional part-of-speech prefix such as "n." or
// "adj." from the meaning.
func parseDefinition(text string) domain.Definition {
	text = strings.TrimSpace(text)
	head, rest, found := strings.Cut(text, " ")
	if found && strings.HasSuffix(head, ".") && len(head) <= 6 && strings.TrimSpace(rest) != "" {
		return domain.Definition{PartOfSpeech: head, Meaning: strings.TrimSpace(rest)}
	}
	return domain.Definition{Meaning: text}
}
