package victims

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"memorial-registry/internal/slug"
)

// MemoryRepo is an in-process Repository for tests and STORAGE_DRIVER=memory.
// A single mutex makes every check-and-write atomic, which is what the slug
// unique constraint relies on.
type MemoryRepo struct {
	mu sync.Mutex

	victims map[int64]Victim
	tags    map[int64]Tag
	links   map[int64]VictimTag
	sources map[int64]Source
	photos  map[int64]Photo

	seq   int64
	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		victims: map[int64]Victim{},
		tags:    map[int64]Tag{},
		links:   map[int64]VictimTag{},
		sources: map[int64]Source{},
		photos:  map[int64]Photo{},
		clock:   time.Now,
	}
}

func (r *MemoryRepo) nextID() int64 {
	r.seq++
	return r.seq
}

func (r *MemoryRepo) victimSlugTaken(s string, excludeID int64) bool {
	for id, v := range r.victims {
		if v.Slug == s && id != excludeID {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) InsertVictim(_ context.Context, v Victim) (Victim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.victimSlugTaken(v.Slug, 0) {
		return Victim{}, slug.ErrTaken
	}
	now := r.clock().UTC()
	v.ID = r.nextID()
	v.CreatedAt, v.UpdatedAt = now, now
	v.Tags = nil
	v.SocialLinks = copyLinks(v.SocialLinks)
	r.victims[v.ID] = v
	return r.withTags(v), nil
}

func (r *MemoryRepo) UpdateVictim(_ context.Context, id int64, mutate func(Victim) (Victim, error)) (Victim, Victim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.victims[id]
	if !ok {
		return Victim{}, Victim{}, ErrNotFound
	}
	prior := r.withTags(cur)
	v, err := mutate(prior)
	if err != nil {
		return Victim{}, Victim{}, err
	}
	v.ID = id
	if r.victimSlugTaken(v.Slug, id) {
		return Victim{}, Victim{}, slug.ErrTaken
	}
	v.CreatedAt = cur.CreatedAt
	v.UpdatedAt = r.clock().UTC()
	v.Tags = nil
	v.SocialLinks = copyLinks(v.SocialLinks)
	r.victims[id] = v
	return prior, r.withTags(v), nil
}

func (r *MemoryRepo) DeleteVictim(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.victims[id]; !ok {
		return ErrNotFound
	}
	delete(r.victims, id)
	for lid, l := range r.links {
		if l.VictimID == id {
			delete(r.links, lid)
		}
	}
	for sid, s := range r.sources {
		if s.VictimID == id {
			delete(r.sources, sid)
		}
	}
	for pid, p := range r.photos {
		if p.VictimID == id {
			delete(r.photos, pid)
		}
	}
	return nil
}

func (r *MemoryRepo) GetVictim(_ context.Context, id int64) (Victim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.victims[id]
	if !ok {
		return Victim{}, ErrNotFound
	}
	return r.withTags(v), nil
}

func (r *MemoryRepo) GetVictimBySlug(_ context.Context, s string) (Victim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.victims {
		if v.Slug == s {
			return r.withTags(v), nil
		}
	}
	return Victim{}, ErrNotFound
}

func (r *MemoryRepo) ListVictims(_ context.Context, ids []int64) ([]Victim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ids == nil {
		out := make([]Victim, 0, len(r.victims))
		for _, v := range r.victims {
			out = append(out, r.withTags(v))
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}
	out := make([]Victim, 0, len(ids))
	for _, id := range ids {
		if v, ok := r.victims[id]; ok {
			out = append(out, r.withTags(v))
		}
	}
	return out, nil
}

func (r *MemoryRepo) VictimSlugExists(_ context.Context, s string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.victimSlugTaken(s, excludeID), nil
}

func (r *MemoryRepo) SuggestNames(_ context.Context, q string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(q)
	names := make([]string, 0)
	for _, v := range r.victims {
		if strings.Contains(strings.ToLower(v.FullName), needle) {
			names = append(names, v.FullName)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (r *MemoryRepo) CountByStatus(context.Context) (map[VerificationStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[VerificationStatus]int{}
	for _, v := range r.victims {
		out[v.VerificationStatus]++
	}
	return out, nil
}

func (r *MemoryRepo) RecentVictims(ctx context.Context, limit int) ([]Victim, error) {
	all, err := r.ListVictims(ctx, nil)
	if err != nil {
		return nil, err
	}
	sorted, err := Apply(all, FilterSet{}, SortRecent, false)
	if err != nil {
		return nil, err
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// withTags must be called with r.mu held.
func (r *MemoryRepo) withTags(v Victim) Victim {
	v.Tags = nil
	for _, l := range r.links {
		if l.VictimID == v.ID {
			if t, ok := r.tags[l.TagID]; ok {
				v.Tags = append(v.Tags, t)
			}
		}
	}
	sort.Slice(v.Tags, func(i, j int) bool { return v.Tags[i].Name < v.Tags[j].Name })
	v.SocialLinks = copyLinks(v.SocialLinks)
	return v
}

func (r *MemoryRepo) tagConflict(t Tag) error {
	for id, cur := range r.tags {
		if id == t.ID {
			continue
		}
		if cur.Name == t.Name {
			return ErrTagNameTaken
		}
		if cur.Slug == t.Slug {
			return slug.ErrTaken
		}
	}
	return nil
}

func (r *MemoryRepo) InsertTag(_ context.Context, t Tag) (Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = 0
	if err := r.tagConflict(t); err != nil {
		return Tag{}, err
	}
	t.ID = r.nextID()
	r.tags[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) UpdateTag(_ context.Context, id int64, mutate func(Tag) (Tag, error)) (Tag, Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior, ok := r.tags[id]
	if !ok {
		return Tag{}, Tag{}, ErrNotFound
	}
	t, err := mutate(prior)
	if err != nil {
		return Tag{}, Tag{}, err
	}
	t.ID = id
	if err := r.tagConflict(t); err != nil {
		return Tag{}, Tag{}, err
	}
	r.tags[id] = t
	return prior, t, nil
}

func (r *MemoryRepo) DeleteTag(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[id]; !ok {
		return ErrNotFound
	}
	delete(r.tags, id)
	for lid, l := range r.links {
		if l.TagID == id {
			delete(r.links, lid)
		}
	}
	return nil
}

func (r *MemoryRepo) GetTag(_ context.Context, id int64) (Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tags[id]
	if !ok {
		return Tag{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) ListTags(context.Context) ([]Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) TagSlugExists(_ context.Context, s string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tags {
		if t.Slug == s && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) AttachTag(_ context.Context, victimID, tagID int64) (VictimTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.victims[victimID]; !ok {
		return VictimTag{}, ErrNotFound
	}
	if _, ok := r.tags[tagID]; !ok {
		return VictimTag{}, ErrNotFound
	}
	for _, l := range r.links {
		if l.VictimID == victimID && l.TagID == tagID {
			return VictimTag{}, ErrAlreadyLinked
		}
	}
	l := VictimTag{ID: r.nextID(), VictimID: victimID, TagID: tagID}
	r.links[l.ID] = l
	return l, nil
}

func (r *MemoryRepo) DetachTag(_ context.Context, victimID, tagID int64) (VictimTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.links {
		if l.VictimID == victimID && l.TagID == tagID {
			delete(r.links, id)
			return l, nil
		}
	}
	return VictimTag{}, ErrNotFound
}

func (r *MemoryRepo) InsertSource(_ context.Context, s Source) (Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.victims[s.VictimID]; !ok {
		return Source{}, ErrNotFound
	}
	s.ID = r.nextID()
	r.sources[s.ID] = s
	return s, nil
}

func (r *MemoryRepo) UpdateSource(_ context.Context, id int64, mutate func(Source) (Source, error)) (Source, Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior, ok := r.sources[id]
	if !ok {
		return Source{}, Source{}, ErrNotFound
	}
	s, err := mutate(prior)
	if err != nil {
		return Source{}, Source{}, err
	}
	s.ID = id
	if _, ok := r.victims[s.VictimID]; !ok {
		return Source{}, Source{}, ErrNotFound
	}
	r.sources[id] = s
	return prior, s, nil
}

func (r *MemoryRepo) DeleteSource(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[id]; !ok {
		return ErrNotFound
	}
	delete(r.sources, id)
	return nil
}

func (r *MemoryRepo) GetSource(_ context.Context, id int64) (Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return Source{}, ErrNotFound
	}
	return s, nil
}

// ListSources orders by publication date desc (unknown last), then title.
func (r *MemoryRepo) ListSources(_ context.Context, victimID int64) ([]Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Source, 0)
	for _, s := range r.sources {
		if s.VictimID == victimID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].PublicationDate, out[j].PublicationDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) InsertPhoto(_ context.Context, p Photo) (Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.victims[p.VictimID]; !ok {
		return Photo{}, ErrNotFound
	}
	p.ID = r.nextID()
	p.CreatedAt = r.clock().UTC()
	r.photos[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) UpdatePhoto(_ context.Context, id int64, mutate func(Photo) (Photo, error)) (Photo, Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior, ok := r.photos[id]
	if !ok {
		return Photo{}, Photo{}, ErrNotFound
	}
	p, err := mutate(prior)
	if err != nil {
		return Photo{}, Photo{}, err
	}
	p.ID = id
	if _, ok := r.victims[p.VictimID]; !ok {
		return Photo{}, Photo{}, ErrNotFound
	}
	p.CreatedAt = prior.CreatedAt
	r.photos[id] = p
	return prior, p, nil
}

func (r *MemoryRepo) DeletePhoto(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.photos[id]; !ok {
		return ErrNotFound
	}
	delete(r.photos, id)
	return nil
}

func (r *MemoryRepo) GetPhoto(_ context.Context, id int64) (Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.photos[id]
	if !ok {
		return Photo{}, ErrNotFound
	}
	return p, nil
}

// ListPhotos orders by order_index, then creation.
func (r *MemoryRepo) ListPhotos(_ context.Context, victimID int64) ([]Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Photo, 0)
	for _, p := range r.photos {
		if p.VictimID == victimID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
