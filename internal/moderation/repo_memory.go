package moderation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository, used by tests and STORAGE_DRIVER=memory.
type MemoryRepo struct {
	mu    sync.Mutex
	subs  map[int64]Submission
	seq   int64
	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{subs: map[int64]Submission{}, clock: time.Now}
}

func (r *MemoryRepo) Insert(_ context.Context, s Submission) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = r.seq
	s.CreatedAt = r.clock().UTC()
	r.subs[s.ID] = s
	return s, nil
}

func (r *MemoryRepo) Get(_ context.Context, id int64) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilter) ([]Submission, error) {
	r.mu.Lock()
	out := make([]Submission, 0, len(r.subs))
	for _, s := range r.subs {
		if f.matches(s) {
			out = append(out, s)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset >= len(out) {
		return []Submission{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) Transition(_ context.Context, id int64, status Status, notes string, at time.Time) (Submission, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return Submission{}, false, ErrNotFound
	}
	if s.Status != StatusPending {
		return s, false, nil
	}
	s.Status = status
	s.ReviewerNotes = notes
	reviewed := at.UTC()
	s.ReviewedAt = &reviewed
	r.subs[id] = s
	return s, true, nil
}

func (r *MemoryRepo) UnlinkVictim(_ context.Context, victimID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subs {
		if s.VictimID != nil && *s.VictimID == victimID {
			s.VictimID = nil
			r.subs[id] = s
		}
	}
	return nil
}
