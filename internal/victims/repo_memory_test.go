package victims

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepo_RecentVictimsNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := repo.InsertVictim(ctx, Victim{FullName: name, Slug: name, Country: "Iran"}); err != nil {
			t.Fatalf("insert %q: %v", name, err)
		}
	}

	got, err := repo.RecentVictims(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Slug != "c" || got[1].Slug != "b" {
		t.Fatalf("expected [c b], got %+v", got)
	}
}

func TestMemoryRepo_UpdateHandsLockedStateToMutate(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	v, err := repo.InsertVictim(ctx, Victim{FullName: "Old", Slug: "old", Country: "Iran"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	prior, updated, err := repo.UpdateVictim(ctx, v.ID, func(cur Victim) (Victim, error) {
		if cur.FullName != "Old" {
			t.Fatalf("mutate saw %q", cur.FullName)
		}
		cur.FullName = "New"
		return cur, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if prior.FullName != "Old" || updated.FullName != "New" || !updated.CreatedAt.Equal(v.CreatedAt) {
		t.Fatalf("unexpected prior %q / updated %+v", prior.FullName, updated)
	}

	if _, _, err := repo.UpdateVictim(ctx, 999, func(cur Victim) (Victim, error) { return cur, nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
