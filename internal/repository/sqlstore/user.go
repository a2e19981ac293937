package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"kumarajiva/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, telegram_id, username, authorized, created_at`

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// IsAuthorized checks if user is authorized
func (r *UserRepo) IsAuthorized(ctx context.Context, telegramID int64) (bool, error) {
	q := conn(ctx, r.db)

	var authorized bool
	err := q.GetContext(ctx, &authorized, q.Rebind(`SELECT authorized FROM users WHERE telegram_id = ?`), telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		// User doesn't exist yet
		return false, nil
	}
	if err != nil {
		return false, domain.Storage("select user", err)
	}
	return authorized, nil
}

// AuthorizeUser marks user as authorized
func (r *UserRepo) AuthorizeUser(ctx context.Context, telegramID int64) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO users (telegram_id, authorized)
		VALUES (?, TRUE)
		ON CONFLICT (telegram_id)
		DO UPDATE SET authorized = TRUE
	`)
	_, err := q.ExecContext(ctx, query, telegramID)
	return domain.Storage("authorize user", err)
}

// EnsureUserExists creates user if not exists and returns it
func (r *UserRepo) EnsureUserExists(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	q := conn(ctx, r.db)
	insert := q.Rebind(`
		INSERT INTO users (telegram_id, username, authorized)
		VALUES (?, ?, FALSE)
		ON CONFLICT (telegram_id) DO NOTHING
	`)
	if _, err := q.ExecContext(ctx, insert, telegramID, username); err != nil {
		return nil, domain.Storage("insert user", err)
	}

	var u domain.User
	if err := q.GetContext(ctx, &u, q.Rebind(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`), telegramID); err != nil {
		return nil, domain.Storage("select user", err)
	}
	return &u, nil
}

// ListAuthorized returns every authorized user
func (r *UserRepo) ListAuthorized(ctx context.Context) ([]domain.User, error) {
	q := conn(ctx, r.db)

	var users []domain.User
	if err := q.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE authorized = TRUE ORDER BY id`); err != nil {
		return nil, domain.Storage("list authorized users", err)
	}
	return users, nil
}
