package victims

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/search"
)

func TestSearch_PagingDefaultsAndClamping(t *testing.T) {
	f := newFixture(t, search.ModeFallback)
	ctx := context.Background()
	for i := 1; i <= 30; i++ {
		mustCreate(t, f, VictimInput{FullName: fmt.Sprintf("Person %02d", i), Country: "Iran"})
	}

	page, err := f.svc.Search(ctx, Query{Sort: SortAlpha})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.PageSize != DefaultPageSize || page.Total != 30 || page.TotalPages != 3 || len(page.Items) != 12 {
		t.Fatalf("unexpected first page: size=%d total=%d pages=%d items=%d", page.PageSize, page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].FullName != "Person 01" || !page.HasNext() || page.HasPrev() {
		t.Fatalf("unexpected first page contents")
	}

	last, _ := f.svc.Search(ctx, Query{Sort: SortAlpha, Page: 99})
	if last.Page != 3 || len(last.Items) != 6 || last.Items[5].FullName != "Person 30" {
		t.Fatalf("expected clamp to last page, got page=%d items=%d", last.Page, len(last.Items))
	}

	big, _ := f.svc.Search(ctx, Query{PageSize: 1000})
	if big.PageSize != MaxPageSize || len(big.Items) != 30 {
		t.Fatalf("expected page size capped, got %d", big.PageSize)
	}

	if _, err := f.svc.Search(ctx, Query{PageSize: -1}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected negative page size rejected, got %v", err)
	}
}

func TestSearch_InvalidAgeBoundsReturnNothing(t *testing.T) {
	f := newFixture(t, search.ModeFallback)
	mustCreate(t, f, VictimInput{FullName: "Someone", Country: "Iran", Age: intp(25)})

	page, err := f.svc.Search(context.Background(), Query{Filters: FilterSet{AgeMin: intp(30), AgeMax: intp(20)}})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("expected no records on invalid filter")
	}
}

func TestSearch_TextThenFilterKeepsRankOrder(t *testing.T) {
	f := newFixture(t, search.ModeRanked)
	ctx := context.Background()
	mustCreate(t, f, VictimInput{FullName: "Ali", Country: "Iran", CityOfDeath: "Tehran", Biography: "friend of Reza"})
	mustCreate(t, f, VictimInput{FullName: "Reza Tehrani", Country: "Iran", CityOfDeath: "Tehran"})
	mustCreate(t, f, VictimInput{FullName: "Reza Shirazi", Country: "Iran", CityOfDeath: "Shiraz"})

	page, err := f.svc.Search(ctx, Query{Text: "reza", Filters: FilterSet{City: "tehran"}, Sort: SortAlpha})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].FullName != "Reza Tehrani" || page.Items[1].FullName != "Ali" {
		t.Fatalf("expected rank order with name match first, got %+v", page.Items)
	}
}

func TestGetBySlugAndSuggest(t *testing.T) {
	f := newFixture(t, search.ModeFallback)
	ctx := context.Background()
	v := mustCreate(t, f, VictimInput{FullName: "Zakaria Khial", Country: "Iran", FamilyContactPrivate: "secret"})
	if _, err := f.svc.CreatePhoto(ctx, moderator, PhotoInput{VictimID: v.ID, ImagePath: "b.jpg", OrderIndex: 2}); err != nil {
		t.Fatalf("photo: %v", err)
	}
	if _, err := f.svc.CreatePhoto(ctx, moderator, PhotoInput{VictimID: v.ID, ImagePath: "a.jpg", OrderIndex: 1}); err != nil {
		t.Fatalf("photo: %v", err)
	}

	d, err := f.svc.GetBySlug(ctx, "zakaria-khial")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(d.Photos) != 2 || d.Photos[0].ImagePath != "a.jpg" {
		t.Fatalf("expected photos ordered by index, got %+v", d.Photos)
	}
	if _, err := f.svc.GetBySlug(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	for i := 0; i < 10; i++ {
		mustCreate(t, f, VictimInput{FullName: fmt.Sprintf("Zak %d", i), Country: "Iran"})
	}
	names, err := f.svc.Suggest(ctx, "zak")
	if err != nil || len(names) != SuggestLimit {
		t.Fatalf("expected %d suggestions, got %v err %v", SuggestLimit, names, err)
	}
	none, _ := f.svc.Suggest(ctx, "  ")
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil list for blank query")
	}

	id, err := f.svc.VictimIDBySlug(ctx, "zakaria-khial")
	if err != nil || id != v.ID {
		t.Fatalf("expected id %d, got %d err %v", v.ID, id, err)
	}
	ok, err := f.svc.VictimExists(ctx, 424242)
	if err != nil || ok {
		t.Fatalf("expected missing victim, got %v %v", ok, err)
	}
}
