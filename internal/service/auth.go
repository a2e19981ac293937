package service

import (
	"context"
	"crypto/subtle"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository"
)

// AuthService handles authentication logic
type AuthService struct {
	userRepo    repository.UserRepository
	botPassword string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, botPassword string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		botPassword: botPassword,
	}
}

// CheckPassword verifies if provided password matches
func (s *AuthService) CheckPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.botPassword)) == 1
}

// IsAuthorized checks if user is authorized
func (s *AuthService) IsAuthorized(ctx context.Context, telegramID int64) (bool, error) {
	return s.userRepo.IsAuthorized(ctx, telegramID)
}

// AuthorizeUser authorizes a user
func (s *AuthService) AuthorizeUser(ctx context.Context, telegramID int64) error {
	return s.userRepo.AuthorizeUser(ctx, telegramID)
}

// EnsureUserExists creates user record if doesn't exist and returns it
func (s *AuthService) EnsureUserExists(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	return s.userRepo.EnsureUserExists(ctx, telegramID, username)
}

// AuthorizedUsers returns every authorized user
func (s *AuthService) AuthorizedUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.ListAuthorized(ctx)
}
