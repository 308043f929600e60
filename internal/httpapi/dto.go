package httpapi

import (
	"time"

	"memorial-registry/internal/moderation"
	"memorial-registry/internal/victims"
)

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

type tagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func tagsOut(ts []victims.Tag) []tagDTO {
	out := make([]tagDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, tagDTO{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return out
}

// publicVictim is what anonymous visitors see. Private contact details and
// the submitting account are never included.
type publicVictim struct {
	ID                 int64             `json:"id"`
	FullName           string            `json:"full_name"`
	NativeName         string            `json:"native_name,omitempty"`
	Slug               string            `json:"slug"`
	Gender             string            `json:"gender,omitempty"`
	Age                *int              `json:"age"`
	DateOfBirth        *string           `json:"date_of_birth"`
	DateOfDeath        *string           `json:"date_of_death"`
	CityOfDeath        string            `json:"city_of_death,omitempty"`
	ProvinceOrState    string            `json:"province_or_state,omitempty"`
	Country            string            `json:"country"`
	Biography          string            `json:"biography,omitempty"`
	ShortSummary       string            `json:"short_summary,omitempty"`
	Occupation         string            `json:"occupation,omitempty"`
	Education          string            `json:"education,omitempty"`
	MaritalStatus      string            `json:"marital_status,omitempty"`
	ChildrenCount      *int              `json:"children_count"`
	VerificationStatus string            `json:"verification_status"`
	VerificationNotes  string            `json:"verification_notes,omitempty"`
	BurialLocation     string            `json:"burial_location,omitempty"`
	SocialLinks        map[string]string `json:"social_links"`
	ConfidenceScore    int               `json:"confidence_score"`
	Tags               []tagDTO          `json:"tags"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func publicVictimOut(v victims.Victim) publicVictim {
	links := v.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	return publicVictim{
		ID:                 v.ID,
		FullName:           v.FullName,
		NativeName:         v.NativeName,
		Slug:               v.Slug,
		Gender:             v.Gender,
		Age:                v.Age,
		DateOfBirth:        formatDate(v.DateOfBirth),
		DateOfDeath:        formatDate(v.DateOfDeath),
		CityOfDeath:        v.CityOfDeath,
		ProvinceOrState:    v.ProvinceOrState,
		Country:            v.Country,
		Biography:          v.Biography,
		ShortSummary:       v.ShortSummary,
		Occupation:         v.Occupation,
		Education:          v.Education,
		MaritalStatus:      v.MaritalStatus,
		ChildrenCount:      v.ChildrenCount,
		VerificationStatus: string(v.VerificationStatus),
		VerificationNotes:  v.VerificationNotes,
		BurialLocation:     v.BurialLocation,
		SocialLinks:        links,
		ConfidenceScore:    v.ConfidenceScore,
		Tags:               tagsOut(v.Tags),
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

// staffVictim adds the fields only moderators may read.
type staffVictim struct {
	publicVictim
	FamilyContactPrivate string `json:"family_contact_private"`
	SubmittedBy          string `json:"submitted_by,omitempty"`
}

func staffVictimOut(v victims.Victim) staffVictim {
	return staffVictim{
		publicVictim:         publicVictimOut(v),
		FamilyContactPrivate: v.FamilyContactPrivate,
		SubmittedBy:          v.SubmittedBy,
	}
}

type sourceDTO struct {
	ID               int64   `json:"id"`
	VictimID         int64   `json:"victim_id"`
	Title            string  `json:"title"`
	URL              string  `json:"url"`
	PublisherName    string  `json:"publisher_name,omitempty"`
	PublicationDate  *string `json:"publication_date"`
	CredibilityScore int     `json:"credibility_score"`
	Notes            string  `json:"notes,omitempty"`
}

func sourceOut(s victims.Source) sourceDTO {
	return sourceDTO{
		ID:               s.ID,
		VictimID:         s.VictimID,
		Title:            s.Title,
		URL:              s.URL,
		PublisherName:    s.PublisherName,
		PublicationDate:  formatDate(s.PublicationDate),
		CredibilityScore: s.CredibilityScore,
		Notes:            s.Notes,
	}
}

type photoDTO struct {
	ID                 int64     `json:"id"`
	VictimID           int64     `json:"victim_id"`
	ImagePath          string    `json:"image_path"`
	Caption            string    `json:"caption,omitempty"`
	PhotographerCredit string    `json:"photographer_credit,omitempty"`
	OrderIndex         int       `json:"order_index"`
	CreatedAt          time.Time `json:"created_at"`
}

func photoOut(p victims.Photo) photoDTO {
	return photoDTO{
		ID:                 p.ID,
		VictimID:           p.VictimID,
		ImagePath:          p.ImagePath,
		Caption:            p.Caption,
		PhotographerCredit: p.PhotographerCredit,
		OrderIndex:         p.OrderIndex,
		CreatedAt:          p.CreatedAt,
	}
}

type detailDTO struct {
	publicVictim
	Photos  []photoDTO  `json:"photos"`
	Sources []sourceDTO `json:"sources"`
}

func detailOut(d victims.Detail) detailDTO {
	out := detailDTO{
		publicVictim: publicVictimOut(d.Victim),
		Photos:       make([]photoDTO, 0, len(d.Photos)),
		Sources:      make([]sourceDTO, 0, len(d.Sources)),
	}
	for _, p := range d.Photos {
		out.Photos = append(out.Photos, photoOut(p))
	}
	for _, s := range d.Sources {
		out.Sources = append(out.Sources, sourceOut(s))
	}
	return out
}

type pageDTO[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	HasNext    bool   `json:"has_next"`
	HasPrev    bool   `json:"has_prev"`
	Ranked     bool   `json:"ranked"`
	Mode       string `json:"mode,omitempty"`
}

func pageOut[T any](p victims.Page, conv func(victims.Victim) T) pageDTO[T] {
	out := pageDTO[T]{
		Items:      make([]T, 0, len(p.Items)),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext(),
		HasPrev:    p.HasPrev(),
		Ranked:     p.Ranked,
		Mode:       string(p.Mode),
	}
	for _, v := range p.Items {
		out.Items = append(out.Items, conv(v))
	}
	return out
}

// submissionReceipt is the public answer to a correction; it echoes nothing
// the submitter did not send.
type submissionReceipt struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type submissionDTO struct {
	ID             int64               `json:"id"`
	VictimID       *int64              `json:"victim_id"`
	SubmitterName  string              `json:"submitter_name,omitempty"`
	SubmitterEmail string              `json:"submitter_email,omitempty"`
	ProposedData   moderation.Proposal `json:"proposed_data"`
	Status         string              `json:"status"`
	ReviewerNotes  string              `json:"reviewer_notes,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	ReviewedAt     *time.Time          `json:"reviewed_at"`
}

func submissionOut(s moderation.Submission) submissionDTO {
	return submissionDTO{
		ID:             s.ID,
		VictimID:       s.VictimID,
		SubmitterName:  s.SubmitterName,
		SubmitterEmail: s.SubmitterEmail,
		ProposedData:   s.ProposedData,
		Status:         string(s.Status),
		ReviewerNotes:  s.ReviewerNotes,
		CreatedAt:      s.CreatedAt,
		ReviewedAt:     s.ReviewedAt,
	}
}
