package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/rbac"
)

var (
	moderator = auth.Actor{UserID: "u-mod", Role: rbac.RoleModerator}
	superuser = auth.Actor{UserID: "u-root", Role: rbac.RoleSuperuser}
	anonymous = auth.Actor{Role: auth.Anonymous}
)

func newSvc(t *testing.T) (*Service, *MemoryRepo, *time.Time) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := NewService(repo, rbac.NewGuard())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	return svc, repo, &now
}

func TestRecord_ContentRules(t *testing.T) {
	svc, repo, _ := newSvc(t)
	ctx := context.Background()

	if _, err := svc.Record(ctx, superuser, ActionDelete, "Victim", ID(1), nil); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected delete without snapshot rejected, got %v", err)
	}
	if _, err := svc.Record(ctx, moderator, ActionApprove, "Submission", ID(1), map[string]any{"reviewer_notes": "ok"}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected approve without status rejected, got %v", err)
	}
	if _, err := svc.Record(ctx, moderator, Action("merge"), "Victim", ID(1), nil); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected unknown action rejected, got %v", err)
	}
	if len(repo.Entries()) != 0 {
		t.Fatalf("rejected entries must not be stored")
	}

	e, err := svc.Record(ctx, moderator, ActionCreate, "Tag", ID(3), nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if e.ID == "" || e.Changes == nil || e.ActorRole != rbac.RoleModerator {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestRecord_AnonymousActorHasNoUserID(t *testing.T) {
	svc, repo, _ := newSvc(t)
	if _, err := svc.Record(context.Background(), anonymous, ActionCreate, "Submission", ID(9), map[string]any{"details": "x"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := repo.Entries()[0].ActorUserID; got != "" {
		t.Fatalf("expected empty actor, got %q", got)
	}
}

func TestList_StaffOnlyNewestFirst(t *testing.T) {
	svc, _, now := newSvc(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		*now = now.Add(time.Minute)
		if _, err := svc.Record(ctx, moderator, ActionUpdate, "Victim", ID(i), map[string]any{"age": i}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if _, err := svc.List(ctx, anonymous, Filter{}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for anonymous, got %v", err)
	}

	got, err := svc.List(ctx, moderator, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || *got[0].TargetID != 3 || *got[2].TargetID != 1 {
		t.Fatalf("expected newest first, got %+v", got)
	}

	got, _ = svc.List(ctx, moderator, Filter{TargetID: ID(2)})
	if len(got) != 1 || *got[0].TargetID != 2 {
		t.Fatalf("expected target filter, got %+v", got)
	}

	got, _ = svc.List(ctx, moderator, Filter{Limit: 1, Offset: 1})
	if len(got) != 1 || *got[0].TargetID != 2 {
		t.Fatalf("expected page of one, got %+v", got)
	}
}

func TestPurge_SuperuserOnly(t *testing.T) {
	svc, repo, now := newSvc(t)
	ctx := context.Background()

	old := *now
	if _, err := svc.Record(ctx, moderator, ActionCreate, "Tag", ID(1), nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	*now = now.Add(48 * time.Hour)
	if _, err := svc.Record(ctx, moderator, ActionCreate, "Tag", ID(2), nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	cutoff := old.Add(time.Hour)
	if _, err := svc.Purge(ctx, moderator, cutoff); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for moderator, got %v", err)
	}
	if _, err := svc.Purge(ctx, superuser, time.Time{}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for zero cutoff, got %v", err)
	}

	n, err := svc.Purge(ctx, superuser, cutoff)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 || len(repo.Entries()) != 1 || *repo.Entries()[0].TargetID != 2 {
		t.Fatalf("expected only the old entry purged, n=%d entries=%+v", n, repo.Entries())
	}
}
