package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "victims_slug_key"})

	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation")
	}
	if !IsUniqueViolation(err, "victims_slug_key") {
		t.Fatalf("expected constraint match")
	}
	if IsUniqueViolation(err, "tags_name_key") {
		t.Fatalf("expected constraint mismatch")
	}
	if IsUniqueViolation(errors.New("boom"), "") {
		t.Fatalf("plain error is not a unique violation")
	}
	if IsForeignKeyViolation(err) {
		t.Fatalf("unique violation is not an fk violation")
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected fk violation")
	}
}

type fakeResult struct{ n int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.n, nil }

func TestRowsAffectedOne(t *testing.T) {
	notFound := errors.New("missing")
	if err := RowsAffectedOne(fakeResult{0}, notFound); !errors.Is(err, notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := RowsAffectedOne(fakeResult{1}, notFound); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestPoolDefaults(t *testing.T) {
	p := PostgresPoolConfig{}.withDefaults()
	if p.MaxOpenConns != 25 || p.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	p = PostgresPoolConfig{MaxOpenConns: 3}.withDefaults()
	if p.MaxOpenConns != 3 {
		t.Fatalf("expected explicit value kept")
	}
}
