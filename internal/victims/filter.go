package victims

import (
	"sort"
	"strings"

	"memorial-registry/internal/apperr"
)

// FilterSet is a conjunction of optional predicates. Zero fields match all.
type FilterSet struct {
	City     string
	Province string
	Country  string
	Status   VerificationStatus
	AgeMin   *int
	AgeMax   *int
	Tag      string
}

func (f FilterSet) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return apperr.Validation("verification_status %q is not one of unverified, pending, verified", f.Status)
	}
	if f.AgeMin != nil && *f.AgeMin < 0 {
		return apperr.Validation("age_min must not be negative")
	}
	if f.AgeMax != nil && *f.AgeMax < 0 {
		return apperr.Validation("age_max must not be negative")
	}
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		return apperr.Validation("age_min %d is greater than age_max %d", *f.AgeMin, *f.AgeMax)
	}
	return nil
}

func (f FilterSet) match(v Victim) bool {
	if f.City != "" && !containsFold(v.CityOfDeath, f.City) {
		return false
	}
	if f.Province != "" && !containsFold(v.ProvinceOrState, f.Province) {
		return false
	}
	if f.Country != "" && !containsFold(v.Country, f.Country) {
		return false
	}
	if f.Status != "" && v.VerificationStatus != f.Status {
		return false
	}
	// A victim with unknown age never satisfies an age bound.
	if f.AgeMin != nil && (v.Age == nil || *v.Age < *f.AgeMin) {
		return false
	}
	if f.AgeMax != nil && (v.Age == nil || *v.Age > *f.AgeMax) {
		return false
	}
	if f.Tag != "" && !v.HasTag(f.Tag) {
		return false
	}
	return true
}

type SortKey string

const (
	SortRecent SortKey = "recent"
	SortAlpha  SortKey = "alpha"
	SortAge    SortKey = "age"
	SortDate   SortKey = "date"
)

// ParseSortKey maps the empty key to SortRecent.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortRecent, nil
	case SortRecent, SortAlpha, SortAge, SortDate:
		return k, nil
	default:
		return "", apperr.Validation("sort %q is not one of recent, alpha, age, date", s)
	}
}

// Apply filters base and orders the result. With ranked set, base is already
// in relevance order and is kept; otherwise key decides. Every ordering ends
// with an id tie-breaker so pages are stable. base is not modified.
func Apply(base []Victim, fs FilterSet, key SortKey, ranked bool) ([]Victim, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	if key == "" {
		key = SortRecent
	}
	if _, err := ParseSortKey(string(key)); err != nil {
		return nil, err
	}

	out := make([]Victim, 0, len(base))
	for _, v := range base {
		if fs.match(v) {
			out = append(out, v)
		}
	}
	if ranked {
		return out, nil
	}
	sort.SliceStable(out, less(out, key))
	return out, nil
}

func less(vs []Victim, key SortKey) func(i, j int) bool {
	switch key {
	case SortAlpha:
		return func(i, j int) bool {
			a, b := strings.ToLower(vs[i].FullName), strings.ToLower(vs[j].FullName)
			if a != b {
				return a < b
			}
			return vs[i].ID < vs[j].ID
		}
	case SortAge:
		return func(i, j int) bool {
			a, b := vs[i].Age, vs[j].Age
			switch {
			case a == nil && b == nil:
			case a == nil:
				return false
			case b == nil:
				return true
			case *a != *b:
				return *a < *b
			}
			return vs[i].ID < vs[j].ID
		}
	case SortDate:
		return func(i, j int) bool {
			a, b := vs[i].DateOfDeath, vs[j].DateOfDeath
			switch {
			case a == nil && b == nil:
			case a == nil:
				return false
			case b == nil:
				return true
			case !a.Equal(*b):
				return a.After(*b)
			}
			return vs[i].ID < vs[j].ID
		}
	default:
		return func(i, j int) bool {
			if !vs[i].CreatedAt.Equal(vs[j].CreatedAt) {
				return vs[i].CreatedAt.After(vs[j].CreatedAt)
			}
			return vs[i].ID > vs[j].ID
		}
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
