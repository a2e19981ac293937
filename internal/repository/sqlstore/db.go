package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kumarajiva/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Rebind(query string) string
}

type txKey struct{}

// Open connects to the database and checks the connection.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch driver {
	case DriverSQLite:
		// SQLite allows one writer; a single connection also keeps
		// in-memory databases shared.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// TxRunner implements repository.TxRunner on top of sqlx.
type TxRunner struct {
	db *sqlx.DB
}

// NewTxRunner creates a new transaction runner
func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx runs fn in a transaction and commits if fn returns nil. A call made
// while a transaction is already open joins it.
func (r *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Storage("begin transaction", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, domain.Storage("rollback", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.Storage("commit", err)
	}
	return nil
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *sqlx.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// isUniqueViolation reports whether err is a unique constraint failure on
// either supported engine.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// where builds a WHERE clause that always starts with the owner condition.
// Every scoped query goes through it.
type where struct {
	conds []string
	args  []any
}

// scoped starts a clause restricting col to the scope's owner. The shared
// legacy scope matches NULL.
func scoped(s domain.Scope, col string) *where {
	w := &where{}
	if s.OwnerID == nil {
		w.conds = append(w.conds, col+" IS NULL")
	} else {
		w.conds = append(w.conds, col+" = ?")
		w.args = append(w.args, *s.OwnerID)
	}
	return w
}

func (w *where) and(cond string, args ...any) *where {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
	return w
}

// merge appends another clause's conditions.
func (w *where) merge(o *where) *where {
	w.conds = append(w.conds, o.conds...)
	w.args = append(w.args, o.args...)
	return w
}

func (w *where) String() string {
	return "WHERE " + strings.Join(w.conds, " AND ")
}

func ownerArg(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func ownerPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
