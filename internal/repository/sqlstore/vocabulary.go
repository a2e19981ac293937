package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"kumarajiva/internal/domain"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const vocabularyColumns = `v.id, v.word, v.definitions, v.pronunciation, v.memory_method,
	v.audio_url, v.mastered, v.created_at, v.user_id`

type vocabularyRow struct {
	ID            int64          `db:"id"`
	Word          string         `db:"word"`
	Definitions   string         `db:"definitions"`
	Pronunciation sql.NullString `db:"pronunciation"`
	MemoryMethod  sql.NullString `db:"memory_method"`
	AudioURL      sql.NullString `db:"audio_url"`
	Mastered      bool           `db:"mastered"`
	CreatedAt     int64          `db:"created_at"`
	UserID        sql.NullInt64  `db:"user_id"`
}

type historyRow struct {
	vocabularyRow
	ReviewCount    int   `db:"review_count"`
	CorrectCount   int   `db:"correct_count"`
	LastReviewedAt int64 `db:"last_reviewed_at"`
}

// VocabularyRepo implements repository.VocabularyRepository
type VocabularyRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewVocabularyRepo creates a new vocabulary repository
func NewVocabularyRepo(db *sqlx.DB, logger *zap.Logger) *VocabularyRepo {
	return &VocabularyRepo{db: db, logger: logger}
}

// toEntry decodes the stored JSON columns, normalizing legacy rows.
func toEntry(logger *zap.Logger, row vocabularyRow) domain.VocabularyEntry {
	defs, pron, degraded := domain.DecodeStored(row.Definitions, row.Pronunciation.String)
	if degraded {
		logger.Warn("Recovered legacy vocabulary encoding",
			zap.String("word", row.Word),
			zap.Int64("id", row.ID),
		)
	}
	return domain.VocabularyEntry{
		ID:            row.ID,
		Word:          row.Word,
		Definitions:   defs,
		Pronunciation: pron,
		MemoryMethod:  row.MemoryMethod.String,
		AudioURL:      row.AudioURL.String,
		Mastered:      row.Mastered,
		CreatedAt:     row.CreatedAt,
		OwnerID:       ownerPtr(row.UserID),
	}
}

func (r *VocabularyRepo) toEntries(rows []vocabularyRow) []domain.VocabularyEntry {
	entries := make([]domain.VocabularyEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toEntry(r.logger, row))
	}
	return entries
}

func encodeEntry(e *domain.VocabularyEntry) (defs, pron string, err error) {
	if defs, err = domain.EncodeDefinitions(e.Definitions); err != nil {
		return "", "", fmt.Errorf("encode definitions: %w", err)
	}
	if pron, err = domain.EncodePronunciation(e.Pronunciation); err != nil {
		return "", "", fmt.Errorf("encode pronunciation: %w", err)
	}
	return defs, pron, nil
}

// Create inserts a new entry and sets its ID
func (r *VocabularyRepo) Create(ctx context.Context, entry *domain.VocabularyEntry) error {
	defs, pron, err := encodeEntry(entry)
	if err != nil {
		return domain.Validation("%v", err)
	}

	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO vocabularies (word, definitions, pronunciation, memory_method, audio_url, mastered, created_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err = q.GetContext(ctx, &entry.ID, query,
		entry.Word, defs, pron, entry.MemoryMethod, entry.AudioURL, entry.Mastered, entry.CreatedAt, ownerArg(entry.OwnerID))
	if isUniqueViolation(err) {
		return domain.AlreadyExists("word %q already exists", entry.Word)
	}
	return domain.Storage("insert vocabulary", err)
}

func (r *VocabularyRepo) getOne(ctx context.Context, w *where) (*domain.VocabularyEntry, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT ` + vocabularyColumns + ` FROM vocabularies v ` + w.String() + ` LIMIT 1`)

	var row vocabularyRow
	err := q.GetContext(ctx, &row, query, w.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Storage("select vocabulary", err)
	}

	entry := toEntry(r.logger, row)
	return &entry, nil
}

// Get returns the entry with exactly this word, or nil
func (r *VocabularyRepo) Get(ctx context.Context, scope domain.Scope, word string) (*domain.VocabularyEntry, error) {
	return r.getOne(ctx, scoped(scope, "v.user_id").and("v.word = ?", word))
}

// FindFold returns the entry whose word equals word ignoring case, or nil
func (r *VocabularyRepo) FindFold(ctx context.Context, scope domain.Scope, word string) (*domain.VocabularyEntry, error) {
	return r.getOne(ctx, scoped(scope, "v.user_id").and("LOWER(v.word) = LOWER(?)", word))
}

// List returns entries newest first. A non-positive limit returns everything.
func (r *VocabularyRepo) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.VocabularyEntry, error) {
	w := scoped(scope, "v.user_id")
	query := `SELECT ` + vocabularyColumns + ` FROM vocabularies v ` + w.String() + ` ORDER BY v.created_at DESC, v.id DESC`
	args := w.args
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	q := conn(ctx, r.db)
	var rows []vocabularyRow
	if err := q.SelectContext(ctx, &rows, q.Rebind(query), args...); err != nil {
		return nil, domain.Storage("list vocabularies", err)
	}
	return r.toEntries(rows), nil
}

// ListOthers returns every entry in scope except word
func (r *VocabularyRepo) ListOthers(ctx context.Context, scope domain.Scope, word string) ([]domain.VocabularyEntry, error) {
	w := scoped(scope, "v.user_id").and("v.word <> ?", word)
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT ` + vocabularyColumns + ` FROM vocabularies v ` + w.String() + ` ORDER BY v.id`)

	var rows []vocabularyRow
	if err := q.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, domain.Storage("list distractor candidates", err)
	}
	return r.toEntries(rows), nil
}

// Update applies a patch. It reports false when the word does not exist.
func (r *VocabularyRepo) Update(ctx context.Context, scope domain.Scope, word string, patch domain.VocabularyPatch) (bool, error) {
	var sets []string
	var args []any

	if patch.Definitions != nil {
		defs, err := domain.EncodeDefinitions(*patch.Definitions)
		if err != nil {
			return false, domain.Validation("encode definitions: %v", err)
		}
		sets = append(sets, "definitions = ?")
		args = append(args, defs)
	}
	if patch.Pronunciation != nil {
		pron, err := domain.EncodePronunciation(*patch.Pronunciation)
		if err != nil {
			return false, domain.Validation("encode pronunciation: %v", err)
		}
		sets = append(sets, "pronunciation = ?")
		args = append(args, pron)
	}
	if patch.MemoryMethod != nil {
		sets = append(sets, "memory_method = ?")
		args = append(args, *patch.MemoryMethod)
	}
	if patch.AudioURL != nil {
		sets = append(sets, "audio_url = ?")
		args = append(args, *patch.AudioURL)
	}
	if patch.Mastered != nil {
		sets = append(sets, "mastered = ?")
		args = append(args, *patch.Mastered)
	}
	if len(sets) == 0 {
		entry, err := r.Get(ctx, scope, word)
		return entry != nil, err
	}

	w := scoped(scope, "user_id").and("word = ?", word)
	q := conn(ctx, r.db)
	query := q.Rebind(`UPDATE vocabularies SET ` + strings.Join(sets, ", ") + ` ` + w.String())

	res, err := q.ExecContext(ctx, query, append(args, w.args...)...)
	if err != nil {
		return false, domain.Storage("update vocabulary", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.Storage("update vocabulary", err)
	}
	return n > 0, nil
}

// Upsert overwrites the entry with the same word and owner, or inserts it
func (r *VocabularyRepo) Upsert(ctx context.Context, entry *domain.VocabularyEntry) error {
	defs, pron, err := encodeEntry(entry)
	if err != nil {
		return domain.Validation("%v", err)
	}

	scope := domain.NewScope(entry.OwnerID, true)
	w := scoped(scope, "user_id").and("word = ?", entry.Word)
	q := conn(ctx, r.db)

	res, err := q.ExecContext(ctx, q.Rebind(`
		UPDATE vocabularies
		SET definitions = ?, pronunciation = ?, memory_method = ?, audio_url = ?, mastered = ?, created_at = ?
		`+w.String()),
		append([]any{defs, pron, entry.MemoryMethod, entry.AudioURL, entry.Mastered, entry.CreatedAt}, w.args...)...)
	if err != nil {
		return domain.Storage("upsert vocabulary", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Storage("upsert vocabulary", err)
	}
	if n > 0 {
		return nil
	}
	return r.Create(ctx, entry)
}

// Delete removes the entry. Its review records are kept.
func (r *VocabularyRepo) Delete(ctx context.Context, scope domain.Scope, word string) (bool, error) {
	w := scoped(scope, "user_id").and("word = ?", word)
	q := conn(ctx, r.db)

	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM vocabularies `+w.String()), w.args...)
	if err != nil {
		return false, domain.Storage("delete vocabulary", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.Storage("delete vocabulary", err)
	}
	return n > 0, nil
}

// SetMastered sets the mastered flag
func (r *VocabularyRepo) SetMastered(ctx context.Context, scope domain.Scope, word string, mastered bool) error {
	w := scoped(scope, "user_id").and("word = ?", word)
	q := conn(ctx, r.db)

	_, err := q.ExecContext(ctx, q.Rebind(`UPDATE vocabularies SET mastered = ? `+w.String()), append([]any{mastered}, w.args...)...)
	return domain.Storage("set mastered", err)
}

// CountCreatedBetween counts entries created in [fromMillis, toMillis)
func (r *VocabularyRepo) CountCreatedBetween(ctx context.Context, scope domain.Scope, fromMillis, toMillis int64) (int, error) {
	w := scoped(scope, "user_id").and("created_at >= ?", fromMillis).and("created_at < ?", toMillis)
	q := conn(ctx, r.db)

	var count int
	if err := q.GetContext(ctx, &count, q.Rebind(`SELECT COUNT(*) FROM vocabularies `+w.String()), w.args...); err != nil {
		return 0, domain.Storage("count created vocabularies", err)
	}
	return count, nil
}

// ListNew returns unmastered entries that were never reviewed, oldest first
func (r *VocabularyRepo) ListNew(ctx context.Context, scope domain.Scope, limit int) ([]domain.VocabularyEntry, error) {
	if limit <= 0 {
		return []domain.VocabularyEntry{}, nil
	}

	records := scoped(scope, "r.user_id").and("r.word = v.word")
	w := scoped(scope, "v.user_id").
		and("v.mastered = ?", false).
		and("NOT EXISTS (SELECT 1 FROM review_records r "+records.String()+")", records.args...)

	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT ` + vocabularyColumns + ` FROM vocabularies v ` + w.String() +
		` ORDER BY v.created_at ASC, v.id ASC LIMIT ?`)

	var rows []vocabularyRow
	if err := q.SelectContext(ctx, &rows, query, append(w.args, limit)...); err != nil {
		return nil, domain.Storage("list new vocabularies", err)
	}
	return r.toEntries(rows), nil
}

// ListReviewed returns unmastered entries with at least one review record
func (r *VocabularyRepo) ListReviewed(ctx context.Context, scope domain.Scope) ([]domain.HistoryEntry, error) {
	w := scoped(scope, "v.user_id").and("v.mastered = ?", false).merge(scoped(scope, "r.user_id"))

	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT ` + vocabularyColumns + `,
			COUNT(r.id) AS review_count,
			COALESCE(SUM(CASE WHEN r.was_correct THEN 1 ELSE 0 END), 0) AS correct_count,
			COALESCE(MAX(r.reviewed_at), 0) AS last_reviewed_at
		FROM vocabularies v
		JOIN review_records r ON r.word = v.word
		` + w.String() + `
		GROUP BY v.id
		ORDER BY v.id`)

	var rows []historyRow
	if err := q.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, domain.Storage("list reviewed vocabularies", err)
	}
	return toHistory(r.logger, rows), nil
}

func toHistory(logger *zap.Logger, rows []historyRow) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.HistoryEntry{
			VocabularyEntry: toEntry(logger, row.vocabularyRow),
			ReviewCount:     row.ReviewCount,
			CorrectCount:    row.CorrectCount,
			LastReviewedAt:  row.LastReviewedAt,
		})
	}
	return out
}

// Counts returns the totals the stats are derived from
func (r *VocabularyRepo) Counts(ctx context.Context, scope domain.Scope) (domain.VocabularyCounts, error) {
	vocab := scoped(scope, "v.user_id")
	records := scoped(scope, "r.user_id").and("r.word = v.word")
	ledger := scoped(scope, "user_id")

	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN v.mastered THEN 1 ELSE 0 END), 0) AS mastered,
			COALESCE(SUM(CASE WHEN NOT v.mastered AND NOT EXISTS (
				SELECT 1 FROM review_records r ` + records.String() + `
			) THEN 1 ELSE 0 END), 0) AS unreviewed,
			COALESCE(SUM(CASE WHEN EXISTS (
				SELECT 1 FROM review_records r ` + records.String() + `
			) THEN 1 ELSE 0 END), 0) AS learned,
			(SELECT COUNT(*) FROM review_records ` + ledger.String() + `) AS reviews
		FROM vocabularies v
		` + vocab.String())

	args := make([]any, 0, 2*len(records.args)+len(ledger.args)+len(vocab.args))
	args = append(args, records.args...)
	args = append(args, records.args...)
	args = append(args, ledger.args...)
	args = append(args, vocab.args...)

	var counts domain.VocabularyCounts
	if err := q.GetContext(ctx, &counts, query, args...); err != nil {
		return domain.VocabularyCounts{}, domain.Storage("count vocabularies", err)
	}
	return counts, nil
}
