// Package slug derives unique, human-readable identifiers.
package slug

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"memorial-registry/internal/apperr"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrTaken is returned by storage when a slug violates its unique constraint.
var ErrTaken = errors.New("slug: already taken")

const (
	// MaxLen leaves room for a "-NNN" suffix inside a 255-char column.
	MaxLen = 240
	// DefaultMaxAttempts bounds the reservations that may be lost to concurrent
	// writers before giving up with a conflict.
	DefaultMaxAttempts = 100
)

// Make lowercases name, transliterates it to ASCII and joins the remaining
// alphanumeric runs with single hyphens. An empty result yields fallback.
func Make(name, fallback string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	out := b.String()
	if len(out) > MaxLen {
		out = strings.TrimRight(out[:MaxLen], "-")
	}
	if out == "" {
		return fallback
	}
	return out
}

// ExistsFunc reports whether slug is held by a record other than excludeID.
// excludeID is 0 for records that are not persisted yet.
type ExistsFunc func(ctx context.Context, slug string, excludeID int64) (bool, error)

// ReserveFunc persists the record under slug. It returns ErrTaken when the
// storage unique constraint rejects the slug.
type ReserveFunc func(ctx context.Context, slug string) error

type Allocator struct {
	exists      ExistsFunc
	fallback    string
	maxAttempts int
}

func NewAllocator(exists ExistsFunc, fallback string) *Allocator {
	return &Allocator{exists: exists, fallback: fallback, maxAttempts: DefaultMaxAttempts}
}

// WithMaxAttempts overrides the lost-reservation bound.
func (a *Allocator) WithMaxAttempts(n int) *Allocator {
	if n > 0 {
		a.maxAttempts = n
	}
	return a
}

// Allocate walks base, base-2, base-3, ... and returns the first slug that
// reserve accepts. Suffixes the existence check reports as held are skipped
// without limit; only reservations lost to a concurrent writer count against
// maxAttempts. The reservation settles the race, so two concurrent callers
// with the same base always end up on different slugs.
func (a *Allocator) Allocate(ctx context.Context, candidate string, excludeID int64, reserve ReserveFunc) (string, error) {
	base := Make(candidate, a.fallback)

	lost := 0
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s := base
		if n > 1 {
			s = base + "-" + strconv.Itoa(n)
		}

		if a.exists != nil {
			taken, err := a.exists(ctx, s, excludeID)
			if err != nil {
				return "", err
			}
			if taken {
				continue
			}
		}

		if reserve == nil {
			return s, nil
		}
		err := reserve(ctx, s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrTaken) {
			return "", err
		}
		lost++
		if lost >= a.maxAttempts {
			return "", apperr.Conflict("could not allocate a unique slug for %q after %d lost reservations", base, lost)
		}
	}
}
