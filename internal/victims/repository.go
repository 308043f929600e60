package victims

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("victims: not found")
	// ErrTagNameTaken is a duplicate tag name; slug collisions surface as slug.ErrTaken.
	ErrTagNameTaken = errors.New("victims: tag name taken")
	// ErrAlreadyLinked is a duplicate (victim, tag) pair.
	ErrAlreadyLinked = errors.New("victims: tag already linked")
)

// Repository is the persistence contract of the registry. Insert and update
// of slugged rows return slug.ErrTaken when the unique constraint rejects the
// slug, so the allocator can move to the next suffix.
//
// Update methods lock the row, hand its current state to mutate and persist
// the result. They return the locked state alongside the stored one, so the
// caller diffs against what was actually replaced. mutate must not call back
// into the repository.
type Repository interface {
	InsertVictim(ctx context.Context, v Victim) (Victim, error)
	UpdateVictim(ctx context.Context, id int64, mutate func(Victim) (Victim, error)) (prior, updated Victim, err error)
	// DeleteVictim removes the victim with its photos, sources and tag links.
	DeleteVictim(ctx context.Context, id int64) error
	GetVictim(ctx context.Context, id int64) (Victim, error)
	GetVictimBySlug(ctx context.Context, slug string) (Victim, error)
	// ListVictims returns victims with tags; ids nil means all, otherwise the
	// result follows the order of ids and skips missing ones.
	ListVictims(ctx context.Context, ids []int64) ([]Victim, error)
	VictimSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	SuggestNames(ctx context.Context, q string, limit int) ([]string, error)
	CountByStatus(ctx context.Context) (map[VerificationStatus]int, error)
	RecentVictims(ctx context.Context, limit int) ([]Victim, error)

	InsertTag(ctx context.Context, t Tag) (Tag, error)
	UpdateTag(ctx context.Context, id int64, mutate func(Tag) (Tag, error)) (prior, updated Tag, err error)
	DeleteTag(ctx context.Context, id int64) error
	GetTag(ctx context.Context, id int64) (Tag, error)
	ListTags(ctx context.Context) ([]Tag, error)
	TagSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)

	AttachTag(ctx context.Context, victimID, tagID int64) (VictimTag, error)
	DetachTag(ctx context.Context, victimID, tagID int64) (VictimTag, error)

	InsertSource(ctx context.Context, s Source) (Source, error)
	UpdateSource(ctx context.Context, id int64, mutate func(Source) (Source, error)) (prior, updated Source, err error)
	DeleteSource(ctx context.Context, id int64) error
	GetSource(ctx context.Context, id int64) (Source, error)
	ListSources(ctx context.Context, victimID int64) ([]Source, error)

	InsertPhoto(ctx context.Context, p Photo) (Photo, error)
	UpdatePhoto(ctx context.Context, id int64, mutate func(Photo) (Photo, error)) (prior, updated Photo, err error)
	DeletePhoto(ctx context.Context, id int64) error
	GetPhoto(ctx context.Context, id int64) (Photo, error)
	ListPhotos(ctx context.Context, victimID int64) ([]Photo, error)
}
