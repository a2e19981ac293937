package reminder

import (
	"context"
	"fmt"
	"time"

	"kumarajiva/internal/domain"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const runTimeout = 5 * time.Minute

// Notifier delivers a reminder to one Telegram user
type Notifier interface {
	SendReminder(ctx context.Context, telegramID int64, count int) error
}

// UserLister lists the users that get reminders
type UserLister interface {
	AuthorizedUsers(ctx context.Context) ([]domain.User, error)
}

// Planner computes a user's session for today
type Planner interface {
	TodayWords(ctx context.Context, scope domain.Scope) ([]domain.TodayWord, error)
}

// Reminder sends every authorized user the size of today's session once a
// day at a fixed local time.
type Reminder struct {
	scheduler *gocron.Scheduler
	users     UserLister
	planner   Planner
	notifier  Notifier
	at        string
	logger    *zap.Logger
}

// New creates a reminder firing daily at `at` (HH:MM) in loc. An empty
// `at` disables it.
func New(users UserLister, planner Planner, notifier Notifier, loc *time.Location, at string, logger *zap.Logger) *Reminder {
	return &Reminder{
		scheduler: gocron.NewScheduler(loc),
		users:     users,
		planner:   planner,
		notifier:  notifier,
		at:        at,
		logger:    logger,
	}
}

// Start schedules the daily job and runs the scheduler in the background
func (r *Reminder) Start() error {
	if r.at == "" {
		r.logger.Info("Reminder disabled")
		return nil
	}

	_, err := r.scheduler.Every(1).Day().At(r.at).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		r.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule reminder at %s: %w", r.at, err)
	}

	r.scheduler.StartAsync()
	r.logger.Info("Reminder scheduled", zap.String("at", r.at))
	return nil
}

// Stop terminates the scheduler
func (r *Reminder) Stop() {
	r.scheduler.Stop()
}

// Jobs reports how many jobs are scheduled
func (r *Reminder) Jobs() int {
	return r.scheduler.Len()
}

// RunOnce notifies every user with words waiting today and returns how
// many reminders were sent. Failures for one user do not stop the rest.
func (r *Reminder) RunOnce(ctx context.Context) int {
	users, err := r.users.AuthorizedUsers(ctx)
	if err != nil {
		r.logger.Error("Failed to list users for reminders", zap.Error(err))
		return 0
	}

	sent := 0
	for _, user := range users {
		words, err := r.planner.TodayWords(ctx, domain.UserScope(user.ID))
		if err != nil {
			r.logger.Error("Failed to plan session for reminder",
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}
		if len(words) == 0 {
			continue
		}

		if err := r.notifier.SendReminder(ctx, user.TelegramID, len(words)); err != nil {
			r.logger.Warn("Failed to send reminder",
				zap.Int64("telegram_id", user.TelegramID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	r.logger.Info("Reminders sent", zap.Int("sent", sent), zap.Int("users", len(users)))
	return sent
}
