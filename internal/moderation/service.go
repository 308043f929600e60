package moderation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/audit"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/observability/metrics"
	"memorial-registry/internal/rbac"
	"memorial-registry/internal/victims"
	"memorial-registry/pkg/logger"
)

// VictimLookup resolves the record a submission refers to.
type VictimLookup interface {
	VictimExists(ctx context.Context, id int64) (bool, error)
	VictimIDBySlug(ctx context.Context, slug string) (int64, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actor auth.Actor, action audit.Action, targetModel string, targetID *int64, changes map[string]any) (audit.Entry, error)
}

const (
	maxNameLen    = 120
	maxEmailLen   = 254
	maxDetailsLen = 10000
	maxListLimit  = 200
)

type Service struct {
	repo    Repository
	victims VictimLookup
	audit   AuditRecorder
	guard   rbac.Guard
	clock   func() time.Time
}

func NewService(repo Repository, lookup VictimLookup, rec AuditRecorder, guard rbac.Guard) *Service {
	return &Service{repo: repo, victims: lookup, audit: rec, guard: guard, clock: time.Now}
}

// SubmitRequest is the public correction form. The victim is referenced by
// VictimSlug (public routes) or VictimID; both empty means a new record.
type SubmitRequest struct {
	VictimID       *int64 `json:"victim_id"`
	VictimSlug     string `json:"-"`
	SubmitterName  string `json:"submitter_name"`
	SubmitterEmail string `json:"submitter_email"`
	Details        string `json:"details"`
	SourceURLs     string `json:"source_urls"`
}

// Submit files a pending submission. Anyone may submit.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, req SubmitRequest) (Submission, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpSubmit, rbac.ResourceSubmission); err != nil {
		return Submission{}, err
	}
	sub, err := s.validate(ctx, req)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return Submission{}, err
	}

	created, err := s.repo.Insert(ctx, sub)
	if err != nil {
		return Submission{}, err
	}
	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()

	s.record(ctx, actor, audit.ActionCreate, created.ID, map[string]any{
		"victim_id":       idOrNil(created.VictimID),
		"submitter_name":  created.SubmitterName,
		"submitter_email": created.SubmitterEmail,
		"proposed_data": map[string]any{
			"victim_id":   idOrNil(created.ProposedData.VictimID),
			"details":     created.ProposedData.Details,
			"source_urls": created.ProposedData.SourceURLs,
		},
		"status": string(created.Status),
	})
	return created, nil
}

func (s *Service) validate(ctx context.Context, req SubmitRequest) (Submission, error) {
	details := victims.Sanitize(req.Details)
	name := victims.Sanitize(req.SubmitterName)
	email := strings.TrimSpace(req.SubmitterEmail)

	var problems []string
	if details == "" {
		problems = append(problems, "details is required")
	}
	if utf8.RuneCountInString(details) > maxDetailsLen {
		problems = append(problems, fmt.Sprintf("details must be at most %d characters", maxDetailsLen))
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		problems = append(problems, fmt.Sprintf("submitter_name must be at most %d characters", maxNameLen))
	}
	if email != "" {
		if len(email) > maxEmailLen {
			problems = append(problems, fmt.Sprintf("submitter_email must be at most %d characters", maxEmailLen))
		} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			problems = append(problems, "submitter_email is not a valid address")
		}
	}
	if len(problems) > 0 {
		return Submission{}, apperr.Validation("%s", strings.Join(problems, "; "))
	}

	victimID, err := s.resolveVictim(ctx, req)
	if err != nil {
		return Submission{}, err
	}
	return Submission{
		VictimID:       victimID,
		SubmitterName:  name,
		SubmitterEmail: email,
		ProposedData:   BuildProposal(details, req.SourceURLs, victimID),
		Status:         StatusPending,
	}, nil
}

func (s *Service) resolveVictim(ctx context.Context, req SubmitRequest) (*int64, error) {
	if sl := strings.TrimSpace(req.VictimSlug); sl != "" {
		id, err := s.victims.VictimIDBySlug(ctx, sl)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	if req.VictimID == nil {
		return nil, nil
	}
	ok, err := s.victims.VictimExists(ctx, *req.VictimID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("victim %d", *req.VictimID)
	}
	id := *req.VictimID
	return &id, nil
}

// reviewed is the outcome of reviewing one submission. auditErr is set when
// the transition committed but its audit entry could not be written.
type reviewed struct {
	sub       Submission
	unchanged bool
	auditErr  error
}

// Review applies decision to submission id. Repeating the decision already
// taken is a no-op; reversing a terminal decision is a conflict.
func (s *Service) Review(ctx context.Context, actor auth.Actor, id int64, decision Decision, notes string) (Submission, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpReview, rbac.ResourceSubmission); err != nil {
		return Submission{}, err
	}
	target, ok := decision.Target()
	if !ok {
		return Submission{}, apperr.Validation("decision must be approve or reject, got %q", decision)
	}
	r, err := s.review(ctx, actor, id, decision, target, victims.Sanitize(notes))
	return r.sub, err
}

func (s *Service) review(ctx context.Context, actor auth.Actor, id int64, decision Decision, target Status, notes string) (reviewed, error) {
	sub, transitioned, err := s.repo.Transition(ctx, id, target, notes, s.clock())
	if errors.Is(err, ErrNotFound) {
		return reviewed{}, apperr.NotFound("submission %d", id)
	}
	if err != nil {
		return reviewed{}, err
	}
	if !transitioned {
		if sub.Status == target {
			metrics.ReviewsTotal.WithLabelValues(string(decision), "unchanged").Inc()
			return reviewed{sub: sub, unchanged: true}, nil
		}
		metrics.ReviewsTotal.WithLabelValues(string(decision), "conflict").Inc()
		return reviewed{}, apperr.Conflict("submission %d is already %s", id, sub.Status)
	}
	metrics.ReviewsTotal.WithLabelValues(string(decision), "transitioned").Inc()

	changes := map[string]any{"status": string(target)}
	if notes != "" {
		changes["reviewer_notes"] = notes
	}
	action := audit.ActionApprove
	if target == StatusRejected {
		action = audit.ActionReject
	}
	return reviewed{sub: sub, auditErr: s.record(ctx, actor, action, id, changes)}, nil
}

// ItemError is the failure of one id in a batch.
type ItemError struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// BatchResult counts what happened to every requested id.
type BatchResult struct {
	Requested     int         `json:"requested"`
	Transitioned  int         `json:"transitioned"`
	Unchanged     int         `json:"unchanged"`
	Failed        int         `json:"failed"`
	AuditFailures int         `json:"audit_failures"`
	Errors        []ItemError `json:"errors"`
}

// ReviewBatch reviews ids one after another. Authorization is checked once;
// a failing id is counted and does not roll back the others.
func (s *Service) ReviewBatch(ctx context.Context, actor auth.Actor, ids []int64, decision Decision, notes string) (BatchResult, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpReview, rbac.ResourceSubmission); err != nil {
		return BatchResult{}, err
	}
	target, ok := decision.Target()
	if !ok {
		return BatchResult{}, apperr.Validation("decision must be approve or reject, got %q", decision)
	}
	if len(ids) == 0 {
		return BatchResult{}, apperr.Validation("ids must not be empty")
	}
	notes = victims.Sanitize(notes)

	res := BatchResult{Requested: len(ids), Errors: []ItemError{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, ItemError{ID: id, Error: err.Error()})
			continue
		}
		r, err := s.review(ctx, actor, id, decision, target, notes)
		switch {
		case err != nil:
			res.Failed++
			res.Errors = append(res.Errors, ItemError{ID: id, Error: err.Error()})
		case r.unchanged:
			res.Unchanged++
		default:
			res.Transitioned++
			if r.auditErr != nil {
				res.AuditFailures++
			}
		}
	}
	logger.From(ctx).Info("batch review",
		"decision", decision,
		"requested", res.Requested,
		"transitioned", res.Transitioned,
		"unchanged", res.Unchanged,
		"failed", res.Failed,
		"audit_failures", res.AuditFailures,
	)
	return res, nil
}

// List is the staff review queue, newest first.
func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter) ([]Submission, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpView, rbac.ResourceSubmission); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("status %q is not one of pending, approved, rejected", f.Status)
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, apperr.Validation("limit and offset must not be negative")
	}
	if f.Limit == 0 || f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id int64) (Submission, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpView, rbac.ResourceSubmission); err != nil {
		return Submission{}, err
	}
	sub, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Submission{}, apperr.NotFound("submission %d", id)
	}
	return sub, err
}

// UnlinkVictim nulls the victim reference of submissions about a deleted victim.
func (s *Service) UnlinkVictim(ctx context.Context, victimID int64) error {
	return s.repo.UnlinkVictim(ctx, victimID)
}

func (s *Service) record(ctx context.Context, actor auth.Actor, action audit.Action, id int64, changes map[string]any) error {
	metrics.MutationsTotal.WithLabelValues(string(action), string(rbac.ResourceSubmission)).Inc()
	if s.audit == nil {
		return nil
	}
	_, err := s.audit.Record(ctx, actor, action, string(rbac.ResourceSubmission), audit.ID(id), changes)
	if err != nil {
		metrics.AuditWriteFailuresTotal.WithLabelValues(string(action), string(rbac.ResourceSubmission)).Inc()
		logger.From(ctx).Warn("audit write failed",
			"action", action,
			"target_model", rbac.ResourceSubmission,
			"target_id", id,
			"err", err,
		)
	}
	return err
}

func idOrNil(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
