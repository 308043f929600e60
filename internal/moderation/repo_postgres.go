package moderation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const submissionColumns = `id, victim_id, submitter_name, submitter_email, proposed_data, status, reviewer_notes, created_at, reviewed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var (
		s        Submission
		victimID sql.NullInt64
		raw      []byte
		status   string
		reviewed sql.NullTime
	)
	if err := row.Scan(&s.ID, &victimID, &s.SubmitterName, &s.SubmitterEmail, &raw, &status, &s.ReviewerNotes, &s.CreatedAt, &reviewed); err != nil {
		return Submission{}, err
	}
	if victimID.Valid {
		id := victimID.Int64
		s.VictimID = &id
	}
	if err := json.Unmarshal(raw, &s.ProposedData); err != nil {
		return Submission{}, fmt.Errorf("decode proposed_data of submission %d: %w", s.ID, err)
	}
	if s.ProposedData.SourceURLs == nil {
		s.ProposedData.SourceURLs = []string{}
	}
	s.Status = Status(status)
	if reviewed.Valid {
		t := reviewed.Time
		s.ReviewedAt = &t
	}
	return s, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, s Submission) (Submission, error) {
	raw, err := json.Marshal(s.ProposedData)
	if err != nil {
		return Submission{}, err
	}
	q := `
INSERT INTO submissions (victim_id, submitter_name, submitter_email, proposed_data, status, reviewer_notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
RETURNING ` + submissionColumns
	return scanSubmission(r.db.QueryRowContext(ctx, q, s.VictimID, s.SubmitterName, s.SubmitterEmail, raw, string(s.Status), s.ReviewerNotes))
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Submission, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.VictimID != nil {
		args = append(args, *f.VictimID)
		where = append(where, fmt.Sprintf("victim_id = $%d", len(args)))
	}
	q := `SELECT ` + submissionColumns + ` FROM submissions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
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
	out := make([]Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Transition is a conditional UPDATE, so of two concurrent reviewers exactly
// one sees a row come back.
func (r *PostgresRepo) Transition(ctx context.Context, id int64, status Status, notes string, at time.Time) (Submission, bool, error) {
	q := `
UPDATE submissions
SET status = $2, reviewer_notes = $3, reviewed_at = $4
WHERE id = $1 AND status = 'pending'
RETURNING ` + submissionColumns
	s, err := scanSubmission(r.db.QueryRowContext(ctx, q, id, string(status), notes, at.UTC()))
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Submission{}, false, err
	}
	cur, err := r.Get(ctx, id)
	if err != nil {
		return Submission{}, false, err
	}
	return cur, false, nil
}

func (r *PostgresRepo) UnlinkVictim(ctx context.Context, victimID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE submissions SET victim_id = NULL WHERE victim_id = $1`, victimID)
	return err
}
