package search

import (
	"context"
	"errors"
	"testing"

	"memorial-registry/internal/apperr"
)

func seed(t *testing.T, b Backend, docs ...Document) {
	t.Helper()
	for _, d := range docs {
		if err := b.Upsert(context.Background(), d); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQuery_BlankIsValidationError(t *testing.T) {
	idx := NewIndex(NewMemoryBackend(), ModeRanked)
	if _, err := idx.Query(context.Background(), "   "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuery_RankedOrdersByRelevance(t *testing.T) {
	b := NewMemoryBackend()
	seed(t, b,
		Document{RecordID: 1, FullName: "Amir Hosseini", Biography: "worked with Parisa at the school"},
		Document{RecordID: 2, FullName: "Parisa Rahimi", ShortSummary: "Parisa was a teacher"},
		Document{RecordID: 3, FullName: "Leila Moradi"},
	)
	idx := NewIndex(b, ModeRanked)

	res, err := idx.Query(context.Background(), "parisa")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !res.Ranked || res.Mode != ModeRanked {
		t.Fatalf("expected ranked result, got %+v", res)
	}
	if !equalIDs(res.IDs, []int64{2, 1}) {
		t.Fatalf("expected [2 1], got %v", res.IDs)
	}
}

func TestQuery_RankedRequiresAllTerms(t *testing.T) {
	b := NewMemoryBackend()
	seed(t, b,
		Document{RecordID: 1, FullName: "Parisa Rahimi"},
		Document{RecordID: 2, FullName: "Parisa Ahmadi"},
	)
	res, err := NewIndex(b, ModeRanked).Query(context.Background(), "Parisa Rahimi")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !equalIDs(res.IDs, []int64{1}) {
		t.Fatalf("expected [1], got %v", res.IDs)
	}
}

func TestQuery_RankedTiesKeepInsertionOrder(t *testing.T) {
	b := NewMemoryBackend()
	seed(t, b,
		Document{RecordID: 9, FullName: "Sara Karimi"},
		Document{RecordID: 4, FullName: "Sara Tehrani"},
	)
	res, err := NewIndex(b, ModeRanked).Query(context.Background(), "sara")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !equalIDs(res.IDs, []int64{9, 4}) {
		t.Fatalf("expected insertion order [9 4], got %v", res.IDs)
	}
}

func TestQuery_FallbackSubstringAcrossFields(t *testing.T) {
	b := NewMemoryBackend()
	seed(t, b,
		Document{RecordID: 1, FullName: "Amir Hosseini"},
		Document{RecordID: 2, FullName: "Neda", NativeName: "ندا"},
		Document{RecordID: 3, FullName: "X", Biography: "A HOSSEINI family friend"},
		Document{RecordID: 4, FullName: "Y", ShortSummary: "remembered in Shiraz"},
	)
	idx := NewIndex(b, ModeFallback)

	res, err := idx.Query(context.Background(), "hosseini")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Ranked || res.Mode != ModeFallback {
		t.Fatalf("expected fallback result, got %+v", res)
	}
	if !equalIDs(res.IDs, []int64{1, 3}) {
		t.Fatalf("expected [1 3], got %v", res.IDs)
	}

	res, _ = idx.Query(context.Background(), "ندا")
	if !equalIDs(res.IDs, []int64{2}) {
		t.Fatalf("expected native name match, got %v", res.IDs)
	}
	res, _ = idx.Query(context.Background(), "shir")
	if !equalIDs(res.IDs, []int64{4}) {
		t.Fatalf("expected partial-word summary match, got %v", res.IDs)
	}
}

func TestReindex_ReadAfterWrite(t *testing.T) {
	b := NewMemoryBackend()
	idx := NewIndex(b, ModeFallback)
	ctx := context.Background()

	if err := idx.Reindex(ctx, Document{RecordID: 1, FullName: "Old Name"}); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if err := idx.Reindex(ctx, Document{RecordID: 1, FullName: "Fresh Name"}); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	res, _ := idx.Query(ctx, "fresh")
	if !equalIDs(res.IDs, []int64{1}) {
		t.Fatalf("expected updated document to match, got %v", res.IDs)
	}
	res, _ = idx.Query(ctx, "old")
	if len(res.IDs) != 0 {
		t.Fatalf("expected stale text gone, got %v", res.IDs)
	}

	if err := idx.Remove(ctx, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	res, _ = idx.Query(ctx, "fresh")
	if len(res.IDs) != 0 {
		t.Fatalf("expected removed document gone, got %v", res.IDs)
	}
}

type noRankBackend struct{ *MemoryBackend }

func (noRankBackend) Rank(context.Context, string) ([]int64, error) {
	return nil, ErrRankingUnavailable
}

func TestQuery_RankedDegradesWhenUnavailable(t *testing.T) {
	b := noRankBackend{NewMemoryBackend()}
	seed(t, b, Document{RecordID: 5, FullName: "Leila Moradi"})

	res, err := NewIndex(b, ModeRanked).Query(context.Background(), "moradi")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Ranked || res.Mode != ModeFallback || !equalIDs(res.IDs, []int64{5}) {
		t.Fatalf("expected degraded fallback result, got %+v", res)
	}
}

func TestDocumentText(t *testing.T) {
	d := Document{FullName: "Parisa Rahimi", NativeName: " ", Biography: "bio", ShortSummary: "sum"}
	if got := d.Text(); got != "Parisa Rahimi bio sum" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_a\b`); got != `50\%\_a\\b` {
		t.Fatalf("unexpected escape %q", got)
	}
}
