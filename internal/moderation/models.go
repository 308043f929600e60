package moderation

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

// Decision is what a reviewer does with a pending submission.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Target is the terminal status a decision leads to.
func (d Decision) Target() (Status, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Proposal is the structured payload of a submission. Approved proposals are
// not merged into the record automatically.
type Proposal struct {
	VictimID   *int64   `json:"victim_id"`
	Details    string   `json:"details"`
	SourceURLs []string `json:"source_urls"`
}

// Submission is an untrusted public correction awaiting review.
//
// Invariants:
// - Status starts pending and moves to approved or rejected at most once.
// - Submissions are never deleted; a deleted victim leaves VictimID nil.
type Submission struct {
	ID             int64
	VictimID       *int64
	SubmitterName  string
	SubmitterEmail string
	ProposedData   Proposal
	Status         Status
	ReviewerNotes  string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
}

// BuildProposal assembles the payload from free-form input.
func BuildProposal(details, sourceURLsText string, victimID *int64) Proposal {
	var id *int64
	if victimID != nil {
		v := *victimID
		id = &v
	}
	return Proposal{
		VictimID:   id,
		Details:    details,
		SourceURLs: SplitSourceURLs(sourceURLsText),
	}
}

// SplitSourceURLs returns the trimmed non-blank lines of text, in order.
// The result is never nil.
func SplitSourceURLs(text string) []string {
	out := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ListFilter narrows the review queue. Zero fields match everything.
type ListFilter struct {
	Status   Status
	VictimID *int64
	Limit    int
	Offset   int
}

func (f ListFilter) matches(s Submission) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.VictimID != nil && (s.VictimID == nil || *s.VictimID != *f.VictimID) {
		return false
	}
	return true
}
