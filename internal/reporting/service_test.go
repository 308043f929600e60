package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"memorial-registry/internal/victims"
)

type stubSource struct {
	counts map[victims.VerificationStatus]int
	recent []victims.Victim
	err    error
	limit  int
}

func (s *stubSource) StatusCounts(context.Context) (map[victims.VerificationStatus]int, error) {
	return s.counts, s.err
}

func (s *stubSource) Recent(_ context.Context, limit int) ([]victims.Victim, error) {
	s.limit = limit
	return s.recent, nil
}

func TestSummary_CountsEveryStatus(t *testing.T) {
	died := time.Date(2022, 9, 16, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		counts: map[victims.VerificationStatus]int{victims.StatusVerified: 3, victims.StatusUnverified: 2},
		recent: []victims.Victim{{ID: 9, Slug: "mahsa-amini", FullName: "Mahsa Amini", DateOfDeath: &died, VerificationStatus: victims.StatusVerified, FamilyContactPrivate: "secret"}},
	}
	out, err := NewService(src).Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Total != 5 {
		t.Fatalf("expected total 5, got %d", out.Total)
	}
	if out.ByStatus["pending"] != 0 || out.ByStatus["verified"] != 3 || len(out.ByStatus) != 3 {
		t.Fatalf("unexpected status counts %v", out.ByStatus)
	}
	if src.limit != RecentCount {
		t.Fatalf("expected recent limit %d, got %d", RecentCount, src.limit)
	}
	if len(out.Recent) != 1 || out.Recent[0].Slug != "mahsa-amini" || *out.Recent[0].DateOfDeath != "2022-09-16" {
		t.Fatalf("unexpected recent %+v", out.Recent)
	}
}

func TestSummary_EmptyRegistry(t *testing.T) {
	out, err := NewService(&stubSource{}).Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Total != 0 || out.Recent == nil || len(out.Recent) != 0 {
		t.Fatalf("unexpected summary %+v", out)
	}
}

func TestSummary_PropagatesSourceError(t *testing.T) {
	boom := errors.New("db down")
	if _, err := NewService(&stubSource{err: boom}).Summary(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}
