package middleware

import (
	"context"
	"strings"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// UserKey is the telebot context key holding the resolved *domain.User
const UserKey = "user"

const lookupTimeout = 5 * time.Second

// AuthMiddleware registers the sender on first contact and stores the user
// in the context. Unauthorized users may still send /start and plain text
// (the password); their callbacks and other commands are rejected.
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
			defer cancel()

			// Ensure user exists
			user, err := authService.EnsureUserExists(ctx, sender.ID, sender.Username)
			if err != nil {
				logger.Error("Failed to ensure user exists in middleware",
					zap.Error(err),
					zap.Int64("telegram_id", sender.ID),
				)
				return c.Send("Something went wrong. Please try again later.")
			}
			c.Set(UserKey, user)

			if !user.Authorized {
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{
						Text:      "Send /start and the password first",
						ShowAlert: true,
					})
				}
				if text := c.Text(); strings.HasPrefix(text, "/") && text != "/start" {
					return c.Send("Send /start and the password first")
				}
			}

			// User is authorized or typing the password, continue
			return next(c)
		}
	}
}

// UserFrom returns the user stored by AuthMiddleware, or nil.
func UserFrom(c tele.Context) *domain.User {
	user, _ := c.Get(UserKey).(*domain.User)
	return user
}
