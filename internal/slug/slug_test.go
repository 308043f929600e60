package slug

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"memorial-registry/internal/apperr"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Jane Doe":              "jane-doe",
		"  Leila   Moradi  ":    "leila-moradi",
		"Zoë Ångström":          "zoe-angstrom",
		"O'Brien, Seán":         "o-brien-sean",
		"Neda A.":               "neda-a",
		"پریسا رحیمی":           "victim",
		"---":                   "victim",
		"Mahsa_Amini 2022":      "mahsa-amini-2022",
		"already-a-slug":        "already-a-slug",
	}
	for in, want := range cases {
		if got := Make(in, "victim"); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMake_TruncatesLongNames(t *testing.T) {
	got := Make(strings.Repeat("ab ", 200), "victim")
	if len(got) > MaxLen {
		t.Fatalf("expected <= %d chars, got %d", MaxLen, len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("expected no trailing hyphen, got %q", got)
	}
}

// uniqueStore mimics a storage unique constraint.
type uniqueStore struct {
	mu    sync.Mutex
	slugs map[string]int64
}

func newUniqueStore() *uniqueStore { return &uniqueStore{slugs: map[string]int64{}} }

func (s *uniqueStore) exists(_ context.Context, slug string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.slugs[slug]
	return ok && id != excludeID, nil
}

func (s *uniqueStore) reserveFor(id int64) ReserveFunc {
	return func(_ context.Context, slug string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if owner, ok := s.slugs[slug]; ok && owner != id {
			return ErrTaken
		}
		for k, v := range s.slugs {
			if v == id {
				delete(s.slugs, k)
			}
		}
		s.slugs[slug] = id
		return nil
	}
}

func TestAllocate_AppendsCounterSuffix(t *testing.T) {
	st := newUniqueStore()
	a := NewAllocator(st.exists, "victim")

	var got []string
	for id := int64(1); id <= 3; id++ {
		s, err := a.Allocate(context.Background(), "Jane Doe", 0, st.reserveFor(id))
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		got = append(got, s)
	}
	want := []string{"jane-doe", "jane-doe-2", "jane-doe-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAllocate_ExcludesRecordBeingSaved(t *testing.T) {
	st := newUniqueStore()
	a := NewAllocator(st.exists, "victim")
	if _, err := a.Allocate(context.Background(), "Jane Doe", 0, st.reserveFor(1)); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	s, err := a.Allocate(context.Background(), "jane-doe", 1, st.reserveFor(1))
	if err != nil {
		t.Fatalf("rename in place: %v", err)
	}
	if s != "jane-doe" {
		t.Fatalf("expected record to keep its own slug, got %q", s)
	}
}

func TestAllocate_ConcurrentCollidingNames(t *testing.T) {
	st := newUniqueStore()
	a := NewAllocator(st.exists, "victim")

	const n = 20
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = a.Allocate(context.Background(), "Jane Doe", 0, st.reserveFor(int64(i+1)))
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, s := range results {
		if errs[i] != nil {
			t.Fatalf("allocate %d: %v", i, errs[i])
		}
		if !strings.HasPrefix(s, "jane-doe") {
			t.Fatalf("expected shared base, got %q", s)
		}
		if seen[s] {
			t.Fatalf("duplicate slug %q", s)
		}
		seen[s] = true
	}
	for i := 1; i <= n; i++ {
		want := "jane-doe"
		if i > 1 {
			want = fmt.Sprintf("jane-doe-%d", i)
		}
		if !seen[want] {
			t.Fatalf("expected %q to be allocated; got %v", want, results)
		}
	}
}

func TestAllocate_RaceLostAtReservationMovesOn(t *testing.T) {
	// exists never sees the collision; only the reservation does.
	calls := 0
	reserve := func(_ context.Context, s string) error {
		calls++
		if s == "jane-doe" {
			return ErrTaken
		}
		return nil
	}
	a := NewAllocator(func(context.Context, string, int64) (bool, error) { return false, nil }, "victim")
	s, err := a.Allocate(context.Background(), "Jane Doe", 0, reserve)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if s != "jane-doe-2" || calls != 2 {
		t.Fatalf("expected jane-doe-2 after one lost race, got %q (%d calls)", s, calls)
	}
}

func TestAllocate_ExistingSuffixesDoNotExhaust(t *testing.T) {
	held := DefaultMaxAttempts + 50
	exists := func(_ context.Context, s string, _ int64) (bool, error) {
		if s == "ali-mohammadi" {
			return true, nil
		}
		var n int
		if _, err := fmt.Sscanf(s, "ali-mohammadi-%d", &n); err == nil && n <= held {
			return true, nil
		}
		return false, nil
	}
	a := NewAllocator(exists, "victim")
	s, err := a.Allocate(context.Background(), "Ali Mohammadi", 0, func(context.Context, string) error { return nil })
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if want := fmt.Sprintf("ali-mohammadi-%d", held+1); s != want {
		t.Fatalf("expected %q, got %q", want, s)
	}
}

func TestAllocate_ExhaustionOnlyFromLostReservations(t *testing.T) {
	reserves := 0
	exists := func(_ context.Context, s string, _ int64) (bool, error) {
		// Every other suffix is visibly held; the rest lose at reservation.
		var n int
		if _, err := fmt.Sscanf(s, "jane-doe-%d", &n); err == nil && n%2 == 0 {
			return true, nil
		}
		return false, nil
	}
	a := NewAllocator(exists, "victim").WithMaxAttempts(3)
	_, err := a.Allocate(context.Background(), "Jane Doe", 0, func(context.Context, string) error {
		reserves++
		return ErrTaken
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if reserves != 3 {
		t.Fatalf("expected 3 lost reservations before giving up, got %d", reserves)
	}
}

func TestAllocate_ExhaustionIsConflict(t *testing.T) {
	a := NewAllocator(nil, "victim").WithMaxAttempts(3)
	_, err := a.Allocate(context.Background(), "Jane Doe", 0, func(context.Context, string) error { return ErrTaken })
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAllocate_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAllocator(func(context.Context, string, int64) (bool, error) { return true, nil }, "victim")
	if _, err := a.Allocate(ctx, "Jane Doe", 0, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAllocate_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("db down")
	a := NewAllocator(nil, "victim")
	_, err := a.Allocate(context.Background(), "Jane Doe", 0, func(context.Context, string) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
