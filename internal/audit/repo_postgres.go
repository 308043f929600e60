package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PostgresRepo writes to audit_entries. The table is INSERT-only for the API
// role; DeleteBefore is used by the registryctl purge command.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("audit: encode changes: %w", err)
	}
	const q = `
INSERT INTO audit_entries (id, actor_user_id, actor_role, action, target_model, target_id, changes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err = r.db.ExecContext(ctx, q,
		e.ID,
		nullString(e.ActorUserID),
		nullString(e.ActorRole),
		string(e.Action),
		e.TargetModel,
		e.TargetID,
		changes,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Action != "" {
		add("action = $%d", string(f.Action))
	}
	if f.TargetModel != "" {
		add("target_model = $%d", f.TargetModel)
	}
	if f.TargetID != nil {
		add("target_id = $%d", *f.TargetID)
	}
	if f.ActorUserID != "" {
		add("actor_user_id = $%d", f.ActorUserID)
	}
	if !f.Since.IsZero() {
		add("created_at >= $%d", f.Since)
	}
	if !f.Until.IsZero() {
		add("created_at < $%d", f.Until)
	}

	q := `SELECT id, actor_user_id, actor_role, action, target_model, target_id, changes, created_at FROM audit_entries`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, seq DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var (
			e        Entry
			actor    sql.NullString
			role     sql.NullString
			action   string
			targetID sql.NullInt64
			raw      []byte
		)
		if err := rows.Scan(&e.ID, &actor, &role, &action, &e.TargetModel, &targetID, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ActorUserID = actor.String
		e.ActorRole = role.String
		e.Action = Action(action)
		if targetID.Valid {
			e.TargetID = ID(targetID.Int64)
		}
		if err := json.Unmarshal(raw, &e.Changes); err != nil {
			return nil, fmt.Errorf("audit: decode changes of %s: %w", e.ID, err)
		}
		if e.Changes == nil {
			e.Changes = map[string]any{}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_entries WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
