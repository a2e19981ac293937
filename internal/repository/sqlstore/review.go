package sqlstore

import (
	"context"
	"database/sql"

	"kumarajiva/internal/domain"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type reviewRow struct {
	ID         int64         `db:"id"`
	Word       string        `db:"word"`
	UserID     sql.NullInt64 `db:"user_id"`
	ReviewedAt int64         `db:"reviewed_at"`
	WasCorrect bool          `db:"was_correct"`
}

func (row reviewRow) toRecord() domain.ReviewRecord {
	return domain.ReviewRecord{
		ID:         row.ID,
		Word:       row.Word,
		OwnerID:    ownerPtr(row.UserID),
		ReviewedAt: row.ReviewedAt,
		WasCorrect: row.WasCorrect,
	}
}

func toRecords(rows []reviewRow) []domain.ReviewRecord {
	out := make([]domain.ReviewRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRecord())
	}
	return out
}

// ReviewRepo implements repository.ReviewRepository
type ReviewRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewReviewRepo creates a new review ledger repository
func NewReviewRepo(db *sqlx.DB, logger *zap.Logger) *ReviewRepo {
	return &ReviewRepo{db: db, logger: logger}
}

// Append adds a record to the ledger and sets its ID
func (r *ReviewRepo) Append(ctx context.Context, rec *domain.ReviewRecord) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO review_records (word, user_id, reviewed_at, was_correct)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := q.GetContext(ctx, &rec.ID, query, rec.Word, ownerArg(rec.OwnerID), rec.ReviewedAt, rec.WasCorrect)
	return domain.Storage("insert review record", err)
}

// History returns the word's records, most recent first
func (r *ReviewRepo) History(ctx context.Context, scope domain.Scope, word string) ([]domain.ReviewRecord, error) {
	w := scoped(scope, "user_id").and("word = ?", word)
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT id, word, user_id, reviewed_at, was_correct FROM review_records ` +
		w.String() + ` ORDER BY reviewed_at DESC, id DESC`)

	var rows []reviewRow
	if err := q.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, domain.Storage("select review history", err)
	}
	return toRecords(rows), nil
}

// ListBetween returns records in [fromMillis, toMillis), oldest first
func (r *ReviewRepo) ListBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) ([]domain.ReviewRecord, error) {
	w := scoped(scope, "user_id").and("reviewed_at >= ?", fromMillis).and("reviewed_at < ?", toMillis)
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT id, word, user_id, reviewed_at, was_correct FROM review_records ` +
		w.String() + ` ORDER BY reviewed_at ASC, id ASC`)

	var rows []reviewRow
	if err := q.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, domain.Storage("list review records", err)
	}
	return toRecords(rows), nil
}

// DeleteBetween removes records in [fromMillis, toMillis)
func (r *ReviewRepo) DeleteBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (int64, error) {
	w := scoped(scope, "user_id").and("reviewed_at >= ?", fromMillis).and("reviewed_at < ?", toMillis)
	q := conn(ctx, r.db)

	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM review_records `+w.String()), w.args...)
	if err != nil {
		return 0, domain.Storage("delete review records", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.Storage("delete review records", err)
	}
	return n, nil
}

// TallyBetween counts answered and correct records in [fromMillis, toMillis)
func (r *ReviewRepo) TallyBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (domain.DayTally, error) {
	w := scoped(scope, "user_id").and("reviewed_at >= ?", fromMillis).and("reviewed_at < ?", toMillis)
	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT
			COUNT(*) AS reviewed,
			COALESCE(SUM(CASE WHEN was_correct THEN 1 ELSE 0 END), 0) AS correct
		FROM review_records ` + w.String())

	var tally domain.DayTally
	if err := q.GetContext(ctx, &tally, query, w.args...); err != nil {
		return domain.DayTally{}, domain.Storage("tally review records", err)
	}
	return tally, nil
}

// HistoryPage returns reviewed words with their aggregates, most recently
// reviewed first, and the total number of matching words
func (r *ReviewRepo) HistoryPage(ctx context.Context, scope domain.Scope, f domain.HistoryFilter) ([]domain.HistoryEntry, int, error) {
	f = f.Normalize()

	w := scoped(scope, "v.user_id").merge(scoped(scope, "r.user_id"))
	if f.StartDate != nil {
		w.and("r.reviewed_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		w.and("r.reviewed_at <= ?", *f.EndDate)
	}

	having := ""
	var havingArgs []any
	switch f.WordType {
	case domain.WordTypeNew:
		having = `HAVING COUNT(r.id) = 1`
	case domain.WordTypeReviewing:
		having = `HAVING COUNT(r.id) > 1 AND v.mastered = ?`
		havingArgs = append(havingArgs, false)
	case domain.WordTypeMastered:
		having = `HAVING v.mastered = ?`
		havingArgs = append(havingArgs, true)
	case domain.WordTypeWrong:
		having = `HAVING SUM(CASE WHEN r.was_correct THEN 1 ELSE 0 END) < COUNT(r.id) AND v.mastered = ?`
		havingArgs = append(havingArgs, false)
	}

	base := `
		SELECT ` + vocabularyColumns + `,
			COUNT(r.id) AS review_count,
			COALESCE(SUM(CASE WHEN r.was_correct THEN 1 ELSE 0 END), 0) AS correct_count,
			COALESCE(MAX(r.reviewed_at), 0) AS last_reviewed_at
		FROM vocabularies v
		JOIN review_records r ON r.word = v.word
		` + w.String() + `
		GROUP BY v.id
		` + having
	args := append(append([]any{}, w.args...), havingArgs...)

	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, q.Rebind(`SELECT COUNT(*) FROM (`+base+`) h`), args...); err != nil {
		return nil, 0, domain.Storage("count learning history", err)
	}

	var rows []historyRow
	pageQuery := q.Rebind(base + ` ORDER BY last_reviewed_at DESC, v.id DESC LIMIT ? OFFSET ?`)
	if err := q.SelectContext(ctx, &rows, pageQuery, append(args, f.Limit, f.Offset)...); err != nil {
		return nil, 0, domain.Storage("select learning history", err)
	}

	return toHistory(r.logger, rows), total, nil
}
