package victims

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"memorial-registry/internal/apperr"
)

const (
	DefaultConfidenceScore  = 50
	DefaultCredibilityScore = 3
)

// VictimInput is the full replacement state of a victim. On update, fields
// left zero overwrite the stored values; Slug is only applied when set.
type VictimInput struct {
	FullName             string             `json:"full_name"`
	NativeName           string             `json:"native_name"`
	Slug                 string             `json:"slug"`
	Gender               string             `json:"gender"`
	Age                  *int               `json:"age"`
	DateOfBirth          *time.Time         `json:"-"`
	DateOfDeath          *time.Time         `json:"-"`
	CityOfDeath          string             `json:"city_of_death"`
	ProvinceOrState      string             `json:"province_or_state"`
	Country              string             `json:"country"`
	Biography            string             `json:"biography"`
	ShortSummary         string             `json:"short_summary"`
	Occupation           string             `json:"occupation"`
	Education            string             `json:"education"`
	MaritalStatus        string             `json:"marital_status"`
	ChildrenCount        *int               `json:"children_count"`
	VerificationStatus   VerificationStatus `json:"verification_status"`
	VerificationNotes    string             `json:"verification_notes"`
	FamilyContactPrivate string             `json:"family_contact_private"`
	BurialLocation       string             `json:"burial_location"`
	SocialLinks          map[string]string  `json:"social_links"`
	ConfidenceScore      int                `json:"confidence_score"`
}

// apply validates in and copies the sanitized values onto v. It never
// touches v.ID, v.Slug, timestamps or tags.
func (in VictimInput) apply(v *Victim) error {
	var errs fieldErrors

	v.FullName = Sanitize(in.FullName)
	v.NativeName = Sanitize(in.NativeName)
	v.Gender = Sanitize(in.Gender)
	v.CityOfDeath = Sanitize(in.CityOfDeath)
	v.ProvinceOrState = Sanitize(in.ProvinceOrState)
	v.Country = Sanitize(in.Country)
	v.Biography = Sanitize(in.Biography)
	v.ShortSummary = Sanitize(in.ShortSummary)
	v.Occupation = Sanitize(in.Occupation)
	v.Education = Sanitize(in.Education)
	v.MaritalStatus = Sanitize(in.MaritalStatus)
	v.VerificationNotes = Sanitize(in.VerificationNotes)
	v.FamilyContactPrivate = Sanitize(in.FamilyContactPrivate)
	v.BurialLocation = Sanitize(in.BurialLocation)

	errs.required("full_name", v.FullName)
	errs.required("country", v.Country)
	errs.maxLen("full_name", v.FullName, 255)
	errs.maxLen("native_name", v.NativeName, 255)
	errs.maxLen("gender", v.Gender, 50)
	errs.maxLen("city_of_death", v.CityOfDeath, 120)
	errs.maxLen("province_or_state", v.ProvinceOrState, 120)
	errs.maxLen("country", v.Country, 120)
	errs.maxLen("occupation", v.Occupation, 200)
	errs.maxLen("education", v.Education, 200)
	errs.maxLen("marital_status", v.MaritalStatus, 100)
	errs.maxLen("burial_location", v.BurialLocation, 200)

	v.Age = copyInt(in.Age)
	errs.nonNegative("age", v.Age, 150)
	v.ChildrenCount = copyInt(in.ChildrenCount)
	errs.nonNegative("children_count", v.ChildrenCount, 100)

	v.DateOfBirth = civilDate(in.DateOfBirth)
	v.DateOfDeath = civilDate(in.DateOfDeath)
	if v.DateOfBirth != nil && v.DateOfDeath != nil && v.DateOfDeath.Before(*v.DateOfBirth) {
		errs.add("date_of_death must not be before date_of_birth")
	}

	v.VerificationStatus = in.VerificationStatus
	if v.VerificationStatus == "" {
		v.VerificationStatus = StatusUnverified
	}
	if !v.VerificationStatus.Valid() {
		errs.add("verification_status %q is not one of unverified, pending, verified", in.VerificationStatus)
	}

	v.ConfidenceScore = in.ConfidenceScore
	if v.ConfidenceScore == 0 {
		v.ConfidenceScore = DefaultConfidenceScore
	}
	if v.ConfidenceScore < 1 || v.ConfidenceScore > 100 {
		errs.add("confidence_score must be between 1 and 100, got %d", in.ConfidenceScore)
	}

	v.SocialLinks = make(map[string]string, len(in.SocialLinks))
	for k, raw := range in.SocialLinks {
		k = strings.TrimSpace(k)
		raw = strings.TrimSpace(raw)
		if k == "" || raw == "" {
			continue
		}
		if !isHTTPURL(raw) {
			errs.add("social_links[%s] must be an http or https URL", k)
			continue
		}
		v.SocialLinks[k] = raw
	}

	return errs.err()
}

type TagInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (in TagInput) apply(t *Tag) error {
	var errs fieldErrors
	t.Name = Sanitize(in.Name)
	errs.required("name", t.Name)
	errs.maxLen("name", t.Name, 80)
	return errs.err()
}

type SourceInput struct {
	VictimID         int64      `json:"victim_id"`
	Title            string     `json:"title"`
	URL              string     `json:"url"`
	PublisherName    string     `json:"publisher_name"`
	PublicationDate  *time.Time `json:"-"`
	CredibilityScore int        `json:"credibility_score"`
	Notes            string     `json:"notes"`
}

func (in SourceInput) apply(s *Source) error {
	var errs fieldErrors
	s.VictimID = in.VictimID
	s.Title = Sanitize(in.Title)
	s.URL = strings.TrimSpace(in.URL)
	s.PublisherName = Sanitize(in.PublisherName)
	s.PublicationDate = civilDate(in.PublicationDate)
	s.Notes = Sanitize(in.Notes)

	if s.VictimID <= 0 {
		errs.add("victim_id is required")
	}
	errs.required("title", s.Title)
	errs.maxLen("title", s.Title, 255)
	errs.required("publisher_name", s.PublisherName)
	errs.maxLen("publisher_name", s.PublisherName, 255)
	errs.maxLen("url", s.URL, 500)
	if !isHTTPURL(s.URL) {
		errs.add("url must be an http or https URL")
	}

	s.CredibilityScore = in.CredibilityScore
	if s.CredibilityScore == 0 {
		s.CredibilityScore = DefaultCredibilityScore
	}
	if s.CredibilityScore < 1 || s.CredibilityScore > 5 {
		errs.add("credibility_score must be between 1 and 5, got %d", in.CredibilityScore)
	}
	return errs.err()
}

type PhotoInput struct {
	VictimID           int64  `json:"victim_id"`
	ImagePath          string `json:"image_path"`
	Caption            string `json:"caption"`
	PhotographerCredit string `json:"photographer_credit"`
	OrderIndex         int    `json:"order_index"`
}

func (in PhotoInput) apply(p *Photo) error {
	var errs fieldErrors
	p.VictimID = in.VictimID
	p.ImagePath = strings.TrimSpace(in.ImagePath)
	p.Caption = Sanitize(in.Caption)
	p.PhotographerCredit = Sanitize(in.PhotographerCredit)
	p.OrderIndex = in.OrderIndex

	if p.VictimID <= 0 {
		errs.add("victim_id is required")
	}
	errs.required("image_path", p.ImagePath)
	errs.maxLen("image_path", p.ImagePath, 500)
	errs.maxLen("caption", p.Caption, 255)
	errs.maxLen("photographer_credit", p.PhotographerCredit, 255)
	if p.OrderIndex < 0 {
		errs.add("order_index must not be negative")
	}
	return errs.err()
}

// fieldErrors collects every problem with an input before failing once.
type fieldErrors []string

func (e *fieldErrors) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

func (e *fieldErrors) required(field, v string) {
	if v == "" {
		e.add("%s is required", field)
	}
}

func (e *fieldErrors) maxLen(field, v string, n int) {
	if utf8.RuneCountInString(v) > n {
		e.add("%s must be at most %d characters", field, n)
	}
}

func (e *fieldErrors) nonNegative(field string, v *int, max int) {
	if v != nil && (*v < 0 || *v > max) {
		e.add("%s must be between 0 and %d", field, max)
	}
}

func (e fieldErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.Validation("%s", strings.Join(e, "; "))
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	n := *p
	return &n
}

func civilDate(p *time.Time) *time.Time {
	if p == nil || p.IsZero() {
		return nil
	}
	d := time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// ParseDate parses an optional YYYY-MM-DD value. Blank yields nil.
func ParseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, apperr.Validation("%s must be a date in YYYY-MM-DD form", field)
	}
	return &d, nil
}
