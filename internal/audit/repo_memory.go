package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory append-only repository, used by tests and the
// memory storage driver.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry
	// FailNext makes the next Append fail with this error.
	FailNext error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailNext; err != nil {
		r.FailNext = nil
		return err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f Filter) ([]Entry, error) {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	r.mu.Unlock()

	// Newest first; append order breaks ties.
	idx := make(map[string]int, len(out))
	for i, e := range out {
		idx[e.ID] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return idx[out[i].ID] > idx[out[j].ID]
	})

	if f.Offset >= len(out) {
		return []Entry{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	var n int64
	for _, e := range r.entries {
		if e.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return n, nil
}

// Entries returns a copy of everything appended, oldest first.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
