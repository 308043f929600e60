package search

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresBackend stores the search document and its tsvector on the victims
// row. Ranking uses the 'simple' text search configuration so names in any
// script are indexed unchanged.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend { return &PostgresBackend{db: db} }

func (b *PostgresBackend) Upsert(ctx context.Context, doc Document) error {
	const q = `
UPDATE victims
SET search_document = $2,
    search_vector = to_tsvector('simple', $2)
WHERE id = $1
`
	_, err := b.db.ExecContext(ctx, q, doc.RecordID, doc.Text())
	if isRankingUnavailable(err) {
		// Degrade to a document-only update so fallback search stays current.
		_, err = b.db.ExecContext(ctx, `UPDATE victims SET search_document = $2 WHERE id = $1`, doc.RecordID, doc.Text())
	}
	return err
}

// Remove is a no-op: the document lives on the victims row and goes with it.
func (b *PostgresBackend) Remove(context.Context, int64) error { return nil }

func (b *PostgresBackend) Rank(ctx context.Context, text string) ([]int64, error) {
	const q = `
SELECT id
FROM victims
WHERE search_vector @@ plainto_tsquery('simple', $1)
ORDER BY ts_rank(search_vector, plainto_tsquery('simple', $1)) DESC, id ASC
`
	ids, err := queryIDs(ctx, b.db, q, text)
	if isRankingUnavailable(err) {
		return nil, errors.Join(ErrRankingUnavailable, err)
	}
	return ids, err
}

func (b *PostgresBackend) Match(ctx context.Context, text string) ([]int64, error) {
	const q = `
SELECT id
FROM victims
WHERE full_name ILIKE $1 ESCAPE '\'
   OR native_name ILIKE $1 ESCAPE '\'
   OR biography ILIKE $1 ESCAPE '\'
   OR short_summary ILIKE $1 ESCAPE '\'
ORDER BY id ASC
`
	return queryIDs(ctx, b.db, q, "%"+escapeLike(text)+"%")
}

func queryIDs(ctx context.Context, db *sql.DB, q string, arg any) ([]int64, error) {
	rows, err := db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// isRankingUnavailable recognizes a database without the tsvector column or
// text search functions (undefined_column, undefined_function).
func isRankingUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "42703" || pgErr.Code == "42883"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
