package reporting

import "memorial-registry/internal/victims"

// RecentCount is how many of the newest records the summary lists.
const RecentCount = 6

// Summary is the public landing-page overview of the registry.
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Recent   []RecentVictim `json:"recent"`
}

// RecentVictim is the public card shown for a newly added record.
type RecentVictim struct {
	ID                 int64   `json:"id"`
	Slug               string  `json:"slug"`
	FullName           string  `json:"full_name"`
	CityOfDeath        string  `json:"city_of_death,omitempty"`
	DateOfDeath        *string `json:"date_of_death,omitempty"`
	ShortSummary       string  `json:"short_summary,omitempty"`
	VerificationStatus string  `json:"verification_status"`
}

func recentFrom(v victims.Victim) RecentVictim {
	out := RecentVictim{
		ID:                 v.ID,
		Slug:               v.Slug,
		FullName:           v.FullName,
		CityOfDeath:        v.CityOfDeath,
		ShortSummary:       v.ShortSummary,
		VerificationStatus: string(v.VerificationStatus),
	}
	if v.DateOfDeath != nil {
		d := v.DateOfDeath.Format("2006-01-02")
		out.DateOfDeath = &d
	}
	return out
}
