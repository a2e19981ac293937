package handler

import (
	"context"
	"sync"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/middleware"
	"kumarajiva/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const requestTimeout = 10 * time.Second

// Services bundles what the bot frontend talks to
type Services struct {
	Auth       *service.AuthService
	Vocabulary *service.VocabularyService
	Review     *service.ReviewService
	Planner    *service.PlannerService
	Quiz       *service.QuizService
	Stats      *service.StatsService
}

// Handler manages all bot interactions
type Handler struct {
	bot         *tele.Bot
	authService *service.AuthService
	vocabulary  *service.VocabularyService
	review      *service.ReviewService
	planner     *service.PlannerService
	quiz        *service.QuizService
	stats       *service.StatsService
	logger      *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex

	// Per-user locks so a double tap cannot record one answer twice
	callbackLocks map[int64]*sync.Mutex
	callbackMux   sync.Mutex
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, services Services, logger *zap.Logger) *Handler {
	return &Handler{
		bot:           bot,
		authService:   services.Auth,
		vocabulary:    services.Vocabulary,
		review:        services.Review,
		planner:       services.Planner,
		quiz:          services.Quiz,
		stats:         services.Stats,
		logger:        logger,
		states:        make(map[int64]*domain.StateData),
		callbackLocks: make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	h.bot.Use(middleware.AuthMiddleware(h.authService, h.logger))

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/study", h.handleStudy)
	h.bot.Handle("/stats", h.handleStats)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnAddWord, h.handleAddWord)
	h.bot.Handle(&btnStudy, h.handleStudy)
	h.bot.Handle(&btnStats, h.handleStats)
	h.bot.Handle(&btnViewDays, h.handleViewDays)
	h.bot.Handle(&btnReset, h.handleReset)
	h.bot.Handle(&btnCancel, h.handleCancel)
	h.bot.Handle(&btnBack, h.handleStart)
	h.bot.Handle(&btnBackToDays, h.handleViewDays)
	h.bot.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// lockUser serializes callbacks of one Telegram user. Call the returned
// func to release.
func (h *Handler) lockUser(userID int64) func() {
	h.callbackMux.Lock()
	lock, exists := h.callbackLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		h.callbackLocks[userID] = lock
	}
	h.callbackMux.Unlock()

	lock.Lock()
	return lock.Unlock
}

// scopeOf returns the data scope of the sender, registering them on first
// contact.
func (h *Handler) scopeOf(ctx context.Context, c tele.Context) (*domain.User, domain.Scope, error) {
	user := middleware.UserFrom(c)
	if user == nil {
		var err error
		user, err = h.authService.EnsureUserExists(ctx, c.Sender().ID, c.Sender().Username)
		if err != nil {
			return nil, domain.Scope{}, err
		}
	}
	return user, domain.UserScope(user.ID), nil
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

const (
	msgError          = "Something went wrong. Please try again later."
	msgPasswordPrompt = "Hi! This bot is private. Send the password to continue:"
	msgMainMenu       = "🏠 Main menu\n\nChoose an action:"
)

// Inline keyboard buttons
var (
	btnAddWord = tele.Btn{
		Unique: "add_word",
		Text:   "➕ Add word",
	}
	btnStudy = tele.Btn{
		Unique: "study",
		Text:   "📖 Study today",
	}
	btnStats = tele.Btn{
		Unique: "stats",
		Text:   "📊 Stats",
	}
	btnViewDays = tele.Btn{
		Unique: "view_days",
		Text:   "📅 History",
	}
	btnReset = tele.Btn{
		Unique: "reset_today",
		Text:   "♻️ Reset today",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Cancel",
	}
	btnBack = tele.Btn{
		Unique: "back",
		Text:   "🏠 Back",
	}
	btnBackToDays = tele.Btn{
		Unique: "back_to_days",
		Text:   "◀️ To days",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnStudy),
		menu.Row(btnAddWord, btnStats),
		menu.Row(btnViewDays, btnReset),
	)
	return menu
}

// cancelMarkup returns a keyboard with a single cancel button
func cancelMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnCancel))
	return markup
}

// reply edits the message behind a callback, or sends a new one for
// commands and text.
func (h *Handler) reply(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() != nil {
		if err := c.Edit(text, markup); err != nil {
			if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
				return nil // Message was already modified, just acknowledged
			}
			return c.Send(text, markup)
		}
		return c.Respond()
	}
	return c.Send(text, markup)
}
