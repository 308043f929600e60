package victims

import (
	"strings"
	"time"

	"memorial-registry/internal/search"
)

type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusPending    VerificationStatus = "pending"
	StatusVerified   VerificationStatus = "verified"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusUnverified, StatusPending, StatusVerified:
		return true
	default:
		return false
	}
}

// Statuses lists every verification status in display order.
var Statuses = []VerificationStatus{StatusUnverified, StatusPending, StatusVerified}

const dateLayout = "2006-01-02"

// Victim is one memorial record.
//
// Invariants:
// - Slug is unique across victims and only changes through the allocator.
// - FamilyContactPrivate never leaves the staff surfaces.
// - SearchDocument is derived from the four text fields on every write.
type Victim struct {
	ID                   int64
	FullName             string
	NativeName           string
	Slug                 string
	Gender               string
	Age                  *int
	DateOfBirth          *time.Time
	DateOfDeath          *time.Time
	CityOfDeath          string
	ProvinceOrState      string
	Country              string
	Biography            string
	ShortSummary         string
	Occupation           string
	Education            string
	MaritalStatus        string
	ChildrenCount        *int
	VerificationStatus   VerificationStatus
	VerificationNotes    string
	FamilyContactPrivate string
	BurialLocation       string
	SocialLinks          map[string]string
	SubmittedBy          string
	ConfidenceScore      int
	SearchDocument       string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Tags is populated on reads; links are written through AttachTag.
	Tags []Tag
}

// Document is the search document of v.
func (v Victim) Document() search.Document {
	return search.Document{
		RecordID:     v.ID,
		FullName:     v.FullName,
		NativeName:   v.NativeName,
		Biography:    v.Biography,
		ShortSummary: v.ShortSummary,
	}
}

// HasTag reports whether v is linked to the tag with this slug.
func (v Victim) HasTag(tagSlug string) bool {
	for _, t := range v.Tags {
		if strings.EqualFold(t.Slug, tagSlug) {
			return true
		}
	}
	return false
}

// Fields is the audit snapshot of v: every persisted, user-editable column,
// with JSON-friendly values.
func (v Victim) Fields() map[string]any {
	return map[string]any{
		"full_name":              v.FullName,
		"native_name":            v.NativeName,
		"slug":                   v.Slug,
		"gender":                 v.Gender,
		"age":                    intOrNil(v.Age),
		"date_of_birth":          dateOrNil(v.DateOfBirth),
		"date_of_death":          dateOrNil(v.DateOfDeath),
		"city_of_death":          v.CityOfDeath,
		"province_or_state":      v.ProvinceOrState,
		"country":                v.Country,
		"biography":              v.Biography,
		"short_summary":          v.ShortSummary,
		"occupation":             v.Occupation,
		"education":              v.Education,
		"marital_status":         v.MaritalStatus,
		"children_count":         intOrNil(v.ChildrenCount),
		"verification_status":    string(v.VerificationStatus),
		"verification_notes":     v.VerificationNotes,
		"family_contact_private": v.FamilyContactPrivate,
		"burial_location":        v.BurialLocation,
		"social_links":           copyLinks(v.SocialLinks),
		"submitted_by":           stringOrNil(v.SubmittedBy),
		"confidence_score":       v.ConfidenceScore,
	}
}

type Tag struct {
	ID   int64
	Name string
	Slug string
}

func (t Tag) Fields() map[string]any {
	return map[string]any{"name": t.Name, "slug": t.Slug}
}

// VictimTag links a victim to a tag; the pair is unique.
type VictimTag struct {
	ID       int64
	VictimID int64
	TagID    int64
}

func (vt VictimTag) Fields() map[string]any {
	return map[string]any{"victim_id": vt.VictimID, "tag_id": vt.TagID}
}

type Source struct {
	ID               int64
	VictimID         int64
	Title            string
	URL              string
	PublisherName    string
	PublicationDate  *time.Time
	CredibilityScore int
	Notes            string
}

func (s Source) Fields() map[string]any {
	return map[string]any{
		"victim_id":         s.VictimID,
		"title":             s.Title,
		"url":               s.URL,
		"publisher_name":    s.PublisherName,
		"publication_date":  dateOrNil(s.PublicationDate),
		"credibility_score": s.CredibilityScore,
		"notes":             s.Notes,
	}
}

// Photo is metadata for an image stored elsewhere; ImagePath is opaque.
type Photo struct {
	ID                 int64
	VictimID           int64
	ImagePath          string
	Caption            string
	PhotographerCredit string
	OrderIndex         int
	CreatedAt          time.Time
}

func (p Photo) Fields() map[string]any {
	return map[string]any{
		"victim_id":           p.VictimID,
		"image_path":          p.ImagePath,
		"caption":             p.Caption,
		"photographer_credit": p.PhotographerCredit,
		"order_index":         p.OrderIndex,
	}
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateOrNil(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.Format(dateLayout)
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func copyLinks(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
