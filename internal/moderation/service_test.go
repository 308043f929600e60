package moderation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/audit"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/rbac"
)

var (
	anon      = auth.Actor{Role: auth.Anonymous}
	moderator = auth.Actor{UserID: "u-mod", Role: rbac.RoleModerator}
	superuser = auth.Actor{UserID: "u-root", Role: rbac.RoleSuperuser}
)

type fakeVictims struct {
	bySlug map[string]int64
}

func (f fakeVictims) VictimExists(_ context.Context, id int64) (bool, error) {
	for _, v := range f.bySlug {
		if v == id {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeVictims) VictimIDBySlug(_ context.Context, slug string) (int64, error) {
	id, ok := f.bySlug[slug]
	if !ok {
		return 0, apperr.NotFound("victim %q", slug)
	}
	return id, nil
}

func newSvc(t *testing.T) (*Service, *MemoryRepo, *audit.MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	auditRepo := audit.NewMemoryRepo()
	guard := rbac.NewGuard()
	lookup := fakeVictims{bySlug: map[string]int64{"mahsa-amini": 7}}
	return NewService(repo, lookup, audit.NewService(auditRepo, guard), guard), repo, auditRepo
}

func submit(t *testing.T, svc *Service) Submission {
	t.Helper()
	sub, err := svc.Submit(context.Background(), anon, SubmitRequest{VictimSlug: "mahsa-amini", Details: "Date of death is wrong"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return sub
}

func TestSplitSourceURLs(t *testing.T) {
	got := SplitSourceURLs("http://a.org\n\nhttp://b.org  \n")
	if !reflect.DeepEqual(got, []string{"http://a.org", "http://b.org"}) {
		t.Fatalf("unexpected urls %v", got)
	}
	if got := SplitSourceURLs("  \r\n "); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestBuildProposal(t *testing.T) {
	id := int64(3)
	p := BuildProposal("details", "http://a.org\r\nhttp://b.org", &id)
	id = 4
	if p.VictimID == nil || *p.VictimID != 3 || p.Details != "details" || len(p.SourceURLs) != 2 {
		t.Fatalf("unexpected proposal %+v", p)
	}
	if p := BuildProposal("x", "", nil); p.VictimID != nil || p.SourceURLs == nil {
		t.Fatalf("unexpected proposal %+v", p)
	}
}

func TestSubmit_ValidatesAndAudits(t *testing.T) {
	svc, _, auditRepo := newSvc(t)
	ctx := context.Background()

	cases := []SubmitRequest{
		{Details: "   "},
		{Details: "x", SubmitterEmail: "not-an-email"},
		{Details: "x", SubmitterEmail: "Name <a@b.org>"},
		{Details: "x", SubmitterName: strings.Repeat("a", 121)},
	}
	for i, req := range cases {
		if _, err := svc.Submit(ctx, anon, req); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if _, err := svc.Submit(ctx, anon, SubmitRequest{VictimSlug: "nobody", Details: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected unknown slug not found, got %v", err)
	}
	missing := int64(99)
	if _, err := svc.Submit(ctx, anon, SubmitRequest{VictimID: &missing, Details: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected unknown id not found, got %v", err)
	}
	if len(auditRepo.Entries()) != 0 {
		t.Fatalf("rejected submissions must not be audited")
	}

	sub, err := svc.Submit(ctx, anon, SubmitRequest{
		VictimSlug:     "mahsa-amini",
		SubmitterName:  "<i>Friend</i>",
		SubmitterEmail: "friend@example.org",
		Details:        "Add school",
		SourceURLs:     "http://a.org\n\nhttp://b.org  \n",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != StatusPending || *sub.VictimID != 7 || sub.SubmitterName != "Friend" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if !reflect.DeepEqual(sub.ProposedData.SourceURLs, []string{"http://a.org", "http://b.org"}) {
		t.Fatalf("unexpected source urls %v", sub.ProposedData.SourceURLs)
	}

	entries := auditRepo.Entries()
	if len(entries) != 1 || entries[0].Action != audit.ActionCreate || entries[0].TargetModel != "Submission" || entries[0].ActorUserID != "" {
		t.Fatalf("expected anonymous create entry, got %+v", entries)
	}
	if entries[0].Changes["status"] != "pending" {
		t.Fatalf("expected submitted values in changes, got %v", entries[0].Changes)
	}
}

func TestReview_ApproveTwiceIsNoOp(t *testing.T) {
	svc, _, auditRepo := newSvc(t)
	ctx := context.Background()
	sub := submit(t, svc)

	first, err := svc.Review(ctx, moderator, sub.ID, DecisionApprove, "confirmed")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if first.Status != StatusApproved || first.ReviewerNotes != "confirmed" || first.ReviewedAt == nil {
		t.Fatalf("unexpected reviewed submission %+v", first)
	}

	second, err := svc.Review(ctx, moderator, sub.ID, DecisionApprove, "again")
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if second.Status != StatusApproved || second.ReviewerNotes != "confirmed" {
		t.Fatalf("expected unchanged approved submission, got %+v", second)
	}

	entries := auditRepo.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected create + one approve entry, got %d", len(entries))
	}
	e := entries[1]
	if e.Action != audit.ActionApprove || e.Changes["status"] != "approved" || e.Changes["reviewer_notes"] != "confirmed" {
		t.Fatalf("unexpected approve entry %+v", e)
	}
}

func TestReview_OppositeDecisionOnTerminalConflicts(t *testing.T) {
	svc, _, auditRepo := newSvc(t)
	ctx := context.Background()
	sub := submit(t, svc)

	if _, err := svc.Review(ctx, moderator, sub.ID, DecisionReject, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Review(ctx, moderator, sub.ID, DecisionApprove, ""); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	entries := auditRepo.Entries()
	if len(entries) != 2 || entries[1].Action != audit.ActionReject {
		t.Fatalf("expected only the reject entry, got %+v", entries)
	}
	if _, ok := entries[1].Changes["reviewer_notes"]; ok {
		t.Fatalf("empty notes must not appear in changes")
	}
}

func TestReview_GuardAndValidation(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()
	sub := submit(t, svc)

	if _, err := svc.Review(ctx, anon, sub.ID, DecisionApprove, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected anonymous forbidden, got %v", err)
	}
	if _, err := svc.Review(ctx, moderator, sub.ID, Decision("merge"), ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected bad decision rejected, got %v", err)
	}
	if _, err := svc.Review(ctx, moderator, 999, DecisionApprove, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.List(ctx, anon, ListFilter{}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected anonymous list forbidden, got %v", err)
	}
}

func TestReview_ConcurrentApprovalsTransitionOnce(t *testing.T) {
	svc, _, auditRepo := newSvc(t)
	sub := submit(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Review(context.Background(), superuser, sub.ID, DecisionApprove, ""); err != nil {
				t.Errorf("approve: %v", err)
			}
		}()
	}
	wg.Wait()

	approvals := 0
	for _, e := range auditRepo.Entries() {
		if e.Action == audit.ActionApprove {
			approvals++
		}
	}
	if approvals != 1 {
		t.Fatalf("expected exactly one approve entry, got %d", approvals)
	}
}

func TestReviewBatch_CountsPerItem(t *testing.T) {
	svc, _, auditRepo := newSvc(t)
	ctx := context.Background()
	a, b, c := submit(t, svc), submit(t, svc), submit(t, svc)

	if _, err := svc.Review(ctx, moderator, b.ID, DecisionApprove, ""); err != nil {
		t.Fatalf("pre-approve: %v", err)
	}
	if _, err := svc.Review(ctx, moderator, c.ID, DecisionReject, ""); err != nil {
		t.Fatalf("pre-reject: %v", err)
	}

	if _, err := svc.ReviewBatch(ctx, anon, []int64{a.ID}, DecisionApprove, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden batch, got %v", err)
	}

	auditRepo.FailNext = errors.New("audit down")
	res, err := svc.ReviewBatch(ctx, moderator, []int64{a.ID, b.ID, c.ID, 999}, DecisionApprove, "bulk")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	want := BatchResult{Requested: 4, Transitioned: 1, Unchanged: 1, Failed: 2, AuditFailures: 1}
	if res.Requested != want.Requested || res.Transitioned != want.Transitioned || res.Unchanged != want.Unchanged ||
		res.Failed != want.Failed || res.AuditFailures != want.AuditFailures {
		t.Fatalf("unexpected counts %+v", res)
	}
	if len(res.Errors) != 2 || res.Errors[0].ID != c.ID || res.Errors[1].ID != 999 {
		t.Fatalf("unexpected item errors %+v", res.Errors)
	}

	got, _ := svc.Get(ctx, moderator, a.ID)
	if got.Status != StatusApproved {
		t.Fatalf("expected transition to persist despite audit failure, got %s", got.Status)
	}
}

func TestList_FilterAndUnlink(t *testing.T) {
	svc, repo, _ := newSvc(t)
	ctx := context.Background()
	a := submit(t, svc)
	if _, err := svc.Submit(ctx, anon, SubmitRequest{Details: "new person"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Review(ctx, moderator, a.ID, DecisionApprove, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	pending, err := svc.List(ctx, moderator, ListFilter{Status: StatusPending})
	if err != nil || len(pending) != 1 || pending[0].VictimID != nil {
		t.Fatalf("expected one pending submission without victim, got %+v err %v", pending, err)
	}
	vid := int64(7)
	linked, _ := svc.List(ctx, moderator, ListFilter{VictimID: &vid})
	if len(linked) != 1 || linked[0].ID != a.ID {
		t.Fatalf("expected victim filter to match, got %+v", linked)
	}

	if err := svc.UnlinkVictim(ctx, 7); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	got, _ := repo.Get(ctx, a.ID)
	if got.VictimID != nil || got.Status != StatusApproved {
		t.Fatalf("expected link nulled and status kept, got %+v", got)
	}
}
