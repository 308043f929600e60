package reporting

import (
	"context"
	"errors"

	"memorial-registry/internal/victims"
)

// Source is the read side of the registry the summary is computed from.
// *victims.Service implements it.
type Source interface {
	StatusCounts(ctx context.Context) (map[victims.VerificationStatus]int, error)
	Recent(ctx context.Context, limit int) ([]victims.Victim, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service { return &Service{src: src} }

// Summary reports the record total, a count for every verification status
// (zero included) and the most recently created records.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if s.src == nil {
		return Summary{}, errors.New("reporting: source not configured")
	}
	counts, err := s.src.StatusCounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	recent, err := s.src.Recent(ctx, RecentCount)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{ByStatus: make(map[string]int, len(victims.Statuses)), Recent: make([]RecentVictim, 0, len(recent))}
	for _, st := range victims.Statuses {
		out.ByStatus[string(st)] = counts[st]
		out.Total += counts[st]
	}
	for _, v := range recent {
		out.Recent = append(out.Recent, recentFrom(v))
	}
	return out, nil
}
