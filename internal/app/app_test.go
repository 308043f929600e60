package app

import (
	"context"
	"testing"

	"memorial-registry/internal/auth"
	"memorial-registry/internal/config"
	"memorial-registry/internal/moderation"
	"memorial-registry/internal/rbac"
	"memorial-registry/internal/victims"
)

func TestNew_MemoryDriverWiresDeleteUnlink(t *testing.T) {
	a, err := New(config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}, Search: config.SearchConfig{Mode: config.SearchModeFallback}}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	root := auth.Actor{UserID: "root", Role: rbac.RoleSuperuser}

	v, err := a.Victims.CreateVictim(ctx, root, victims.VictimInput{FullName: "Jane Doe", Country: "Iran"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sub, err := a.Moderation.Submit(ctx, auth.Actor{}, moderation.SubmitRequest{VictimSlug: v.Slug, Details: "typo"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := a.Victims.DeleteVictim(ctx, root, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := a.Moderation.Get(ctx, root, sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VictimID != nil {
		t.Fatalf("expected submission unlinked from deleted victim, got %d", *got.VictimID)
	}
}

func TestNew_RejectsMissingDatabase(t *testing.T) {
	if _, err := New(config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverPostgres}}, nil); err == nil {
		t.Fatalf("expected error without db")
	}
	if _, err := New(config.Config{Storage: config.StorageConfig{Driver: "mongo"}}, nil); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
