package main

import (
	"context"
	"fmt"
	"time"

	"kumarajiva/internal/handler"
	"kumarajiva/internal/reminder"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// runBot serves the Telegram frontend until ctx is cancelled
func runBot(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  a.cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			a.logger.Error("Telegram handler failed", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	a.logger.Info("Telegram bot initialized")

	h := handler.NewHandler(bot, handler.Services{
		Auth:       a.auth,
		Vocabulary: a.vocab,
		Review:     a.review,
		Planner:    a.planner,
		Quiz:       a.quiz,
		Stats:      a.stats,
	}, a.logger)
	h.RegisterHandlers()

	a.logger.Info("Handlers registered")

	r := reminder.New(a.auth, a.planner, h, a.loc, a.cfg.ReminderTime, a.logger)
	if err := r.Start(); err != nil {
		return err
	}
	defer r.Stop()

	// Start bot in background
	go func() {
		a.logger.Info("Bot started successfully")
		bot.Start()
	}()

	<-ctx.Done()

	a.logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()

	a.logger.Info("Bot stopped gracefully")
	return nil
}
