package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"kumarajiva/internal/domain"

	"github.com/jmoiron/sqlx"
)

const progressColumns = `date, user_id, total_words, current_index, completed, correct`

type progressRow struct {
	Date         string        `db:"date"`
	UserID       sql.NullInt64 `db:"user_id"`
	TotalWords   int           `db:"total_words"`
	CurrentIndex int           `db:"current_index"`
	Completed    int           `db:"completed"`
	Correct      int           `db:"correct"`
}

func (row progressRow) toSnapshot() domain.ProgressSnapshot {
	return domain.ProgressSnapshot{
		Date:         row.Date,
		OwnerID:      ownerPtr(row.UserID),
		TotalWords:   row.TotalWords,
		CurrentIndex: row.CurrentIndex,
		Completed:    row.Completed,
		Correct:      row.Correct,
	}
}

func toSnapshots(rows []progressRow) []domain.ProgressSnapshot {
	out := make([]domain.ProgressSnapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSnapshot())
	}
	return out
}

// ProgressRepo implements repository.ProgressRepository
type ProgressRepo struct {
	db *sqlx.DB
}

// NewProgressRepo creates a new progress snapshot repository
func NewProgressRepo(db *sqlx.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

// Get returns the snapshot for date, or nil if none was created
func (r *ProgressRepo) Get(ctx context.Context, scope domain.Scope, date string) (*domain.ProgressSnapshot, error) {
	w := scoped(scope, "user_id").and("date = ?", date)
	q := conn(ctx, r.db)

	var row progressRow
	err := q.GetContext(ctx, &row, q.Rebind(`SELECT `+progressColumns+` FROM progress_snapshots `+w.String()), w.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Storage("select progress", err)
	}

	snap := row.toSnapshot()
	return &snap, nil
}

// CreateIfAbsent inserts the snapshot unless the date already has one
func (r *ProgressRepo) CreateIfAbsent(ctx context.Context, snap *domain.ProgressSnapshot) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO progress_snapshots (date, user_id, total_words, current_index, completed, correct)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	_, err := q.ExecContext(ctx, query,
		snap.Date, ownerArg(snap.OwnerID), snap.TotalWords, snap.CurrentIndex, snap.Completed, snap.Correct)
	return domain.Storage("insert progress", err)
}

// UpdateCounters overwrites the counters. It reports false when no snapshot exists.
func (r *ProgressRepo) UpdateCounters(ctx context.Context, scope domain.Scope, date string, patch domain.ProgressPatch) (bool, error) {
	w := scoped(scope, "user_id").and("date = ?", date)
	q := conn(ctx, r.db)

	res, err := q.ExecContext(ctx,
		q.Rebind(`UPDATE progress_snapshots SET current_index = ?, completed = ?, correct = ? `+w.String()),
		append([]any{patch.CurrentIndex, patch.Completed, patch.Correct}, w.args...)...)
	if err != nil {
		return false, domain.Storage("update progress", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.Storage("update progress", err)
	}
	return n > 0, nil
}

// Delete removes the snapshot for date
func (r *ProgressRepo) Delete(ctx context.Context, scope domain.Scope, date string) error {
	w := scoped(scope, "user_id").and("date = ?", date)
	q := conn(ctx, r.db)

	_, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM progress_snapshots `+w.String()), w.args...)
	return domain.Storage("delete progress", err)
}

// ListRange returns snapshots between two dates inclusive, oldest first
func (r *ProgressRepo) ListRange(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]domain.ProgressSnapshot, error) {
	w := scoped(scope, "user_id").and("date >= ?", fromDate).and("date <= ?", toDate)
	q := conn(ctx, r.db)

	var rows []progressRow
	query := q.Rebind(`SELECT ` + progressColumns + ` FROM progress_snapshots ` + w.String() + ` ORDER BY date ASC`)
	if err := q.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, domain.Storage("list progress", err)
	}
	return toSnapshots(rows), nil
}

// ListDays returns snapshots newest first
func (r *ProgressRepo) ListDays(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.ProgressSnapshot, error) {
	w := scoped(scope, "user_id")
	q := conn(ctx, r.db)

	var rows []progressRow
	query := q.Rebind(`SELECT ` + progressColumns + ` FROM progress_snapshots ` + w.String() + ` ORDER BY date DESC LIMIT ? OFFSET ?`)
	if err := q.SelectContext(ctx, &rows, query, append(w.args, limit, offset)...); err != nil {
		return nil, domain.Storage("list progress days", err)
	}
	return toSnapshots(rows), nil
}

// CountDays returns how many days have a snapshot
func (r *ProgressRepo) CountDays(ctx context.Context, scope domain.Scope) (int, error) {
	w := scoped(scope, "user_id")
	q := conn(ctx, r.db)

	var count int
	if err := q.GetContext(ctx, &count, q.Rebind(`SELECT COUNT(*) FROM progress_snapshots `+w.String()), w.args...); err != nil {
		return 0, domain.Storage("count progress days", err)
	}
	return count, nil
}
