package victims

import (
	"context"
	"errors"
	"strings"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/search"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	SuggestLimit    = 8
)

// Query is one visitor search request.
type Query struct {
	Text     string
	Filters  FilterSet
	Sort     SortKey
	Page     int
	PageSize int
}

// Page is a window of results plus the metadata a client needs to paginate.
type Page struct {
	Items      []Victim
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Ranked     bool
	Mode       search.Mode
}

func (p Page) HasNext() bool { return p.Page < p.TotalPages }
func (p Page) HasPrev() bool { return p.Page > 1 }

// Search runs text search, then filters, then ordering, then paging. Out of
// range page numbers are clamped to the nearest page.
func (s *Service) Search(ctx context.Context, q Query) (Page, error) {
	if err := q.Filters.Validate(); err != nil {
		return Page{}, err
	}
	key, err := ParseSortKey(string(q.Sort))
	if err != nil {
		return Page{}, err
	}
	size := q.PageSize
	switch {
	case size < 0:
		return Page{}, apperr.Validation("page_size must not be negative")
	case size == 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	var (
		base   []Victim
		ranked bool
		mode   search.Mode
	)
	if text := strings.TrimSpace(q.Text); text != "" {
		res, err := s.index.Query(ctx, text)
		if err != nil {
			return Page{}, err
		}
		ranked, mode = res.Ranked, res.Mode
		if base, err = s.repo.ListVictims(ctx, res.IDs); err != nil {
			return Page{}, err
		}
	} else if base, err = s.repo.ListVictims(ctx, nil); err != nil {
		return Page{}, err
	}

	matched, err := Apply(base, q.Filters, key, ranked)
	if err != nil {
		return Page{}, err
	}

	p := Page{Page: q.Page, PageSize: size, Total: len(matched), Ranked: ranked, Mode: mode}
	p.TotalPages = (p.Total + size - 1) / size
	if p.TotalPages == 0 {
		p.TotalPages = 1
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > p.TotalPages {
		p.Page = p.TotalPages
	}
	start := (p.Page - 1) * size
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	p.Items = matched[start:end]
	return p, nil
}

// Detail is a victim with everything it owns.
type Detail struct {
	Victim  Victim
	Photos  []Photo
	Sources []Source
}

func (s *Service) GetBySlug(ctx context.Context, sl string) (Detail, error) {
	v, err := s.repo.GetVictimBySlug(ctx, sl)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Detail{}, apperr.NotFound("victim %q", sl)
		}
		return Detail{}, err
	}
	photos, err := s.repo.ListPhotos(ctx, v.ID)
	if err != nil {
		return Detail{}, err
	}
	sources, err := s.repo.ListSources(ctx, v.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Victim: v, Photos: photos, Sources: sources}, nil
}

// GetByID is GetBySlug for the staff surfaces.
func (s *Service) GetByID(ctx context.Context, id int64) (Victim, error) {
	v, err := s.repo.GetVictim(ctx, id)
	if err != nil {
		return Victim{}, notFound(err, "victim", id)
	}
	return v, nil
}

// Suggest returns up to SuggestLimit full names containing q. A blank q
// yields an empty list.
func (s *Service) Suggest(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []string{}, nil
	}
	return s.repo.SuggestNames(ctx, q, SuggestLimit)
}

func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	return s.repo.ListTags(ctx)
}

// VictimIDBySlug resolves a public slug for submission intake.
func (s *Service) VictimIDBySlug(ctx context.Context, sl string) (int64, error) {
	v, err := s.repo.GetVictimBySlug(ctx, sl)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, apperr.NotFound("victim %q", sl)
		}
		return 0, err
	}
	return v.ID, nil
}

func (s *Service) VictimExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetVictim(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// StatusCounts and Recent feed the reporting summary.
func (s *Service) StatusCounts(ctx context.Context) (map[VerificationStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Victim, error) {
	return s.repo.RecentVictims(ctx, limit)
}
