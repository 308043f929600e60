package rbac

import (
	"errors"
	"testing"

	"memorial-registry/internal/apperr"
)

var guarded = []Resource{ResourceVictim, ResourcePhoto, ResourceSource, ResourceTag, ResourceVictimTag}

func TestGuard_ModeratorNeverDeletes(t *testing.T) {
	g := NewGuard()
	for _, res := range append(guarded, ResourceSubmission, ResourceAuditLog) {
		err := g.Authorize(RoleModerator, OpDelete, res)
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Fatalf("expected moderator delete on %s to be forbidden, got %v", res, err)
		}
	}
}

func TestGuard_SuperuserDeletesGuardedEntities(t *testing.T) {
	g := NewGuard()
	for _, res := range guarded {
		if err := g.Authorize(RoleSuperuser, OpDelete, res); err != nil {
			t.Fatalf("expected superuser delete on %s allowed, got %v", res, err)
		}
	}
	if err := g.Authorize(RoleSuperuser, OpPurge, ResourceAuditLog); err != nil {
		t.Fatalf("expected superuser purge allowed, got %v", err)
	}
}

func TestGuard_ModeratorCreatesAndReviews(t *testing.T) {
	g := NewGuard()
	for _, res := range guarded {
		for _, op := range []Operation{OpCreate, OpUpdate} {
			if err := g.Authorize(RoleModerator, op, res); err != nil {
				t.Fatalf("expected moderator %s %s allowed, got %v", op, res, err)
			}
		}
	}
	if err := g.Authorize(RoleModerator, OpReview, ResourceSubmission); err != nil {
		t.Fatalf("expected moderator review allowed, got %v", err)
	}
}

func TestGuard_AnonymousOnlySubmitsAndViews(t *testing.T) {
	g := NewGuard()
	if err := g.Authorize("", OpSubmit, ResourceSubmission); err != nil {
		t.Fatalf("expected anonymous submit allowed, got %v", err)
	}
	if err := g.Authorize(RoleAnonymous, OpView, ResourceVictim); err != nil {
		t.Fatalf("expected anonymous view allowed, got %v", err)
	}
	for _, op := range []Operation{OpCreate, OpUpdate, OpDelete} {
		if err := g.Authorize(RoleAnonymous, op, ResourceVictim); err == nil {
			t.Fatalf("expected anonymous %s denied", op)
		}
	}
	if err := g.Authorize(RoleAnonymous, OpReview, ResourceSubmission); err == nil {
		t.Fatalf("expected anonymous review denied")
	}
	if err := g.Authorize(RoleAnonymous, OpView, ResourceAuditLog); err == nil {
		t.Fatalf("expected anonymous audit view denied")
	}
}

func TestGuard_AuditLogNeverWritable(t *testing.T) {
	g := NewGuard()
	for _, role := range []string{RoleAnonymous, RoleModerator, RoleSuperuser} {
		for _, op := range []Operation{OpCreate, OpUpdate} {
			if err := g.Authorize(role, op, ResourceAuditLog); err == nil {
				t.Fatalf("expected %s %s on audit log denied", role, op)
			}
		}
	}
}

func TestGuard_SubmissionsAppendOnly(t *testing.T) {
	g := NewGuard()
	for _, op := range []Operation{OpUpdate, OpDelete} {
		if err := g.Authorize(RoleSuperuser, op, ResourceSubmission); err == nil {
			t.Fatalf("expected superuser %s on submission denied", op)
		}
	}
}

func TestGuard_UnknownRoleDenied(t *testing.T) {
	g := NewGuard()
	if err := g.Authorize("root", OpView, ResourceVictim); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for unknown role, got %v", err)
	}
}
