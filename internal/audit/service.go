package audit

import (
	"context"
	"errors"
	"time"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/rbac"
	"memorial-registry/pkg/logger"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit entries. There is no
// update method; deletion exists only for the retention purge.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type Service struct {
	repo  Repository
	guard rbac.Guard
	clock func() time.Time
}

func NewService(repo Repository, guard rbac.Guard) *Service {
	return &Service{repo: repo, guard: guard, clock: time.Now}
}

var ErrInvalidEntry = errors.New("audit: invalid entry")

// Record appends one entry for a mutation that has already committed. It
// enforces the content rules per action; the caller decides what to do when
// it fails.
func (s *Service) Record(ctx context.Context, actor auth.Actor, action Action, targetModel string, targetID *int64, changes map[string]any) (Entry, error) {
	if s.repo == nil {
		return Entry{}, errors.New("audit: repository not configured")
	}
	if !action.Valid() || targetModel == "" {
		return Entry{}, ErrInvalidEntry
	}
	if changes == nil {
		changes = map[string]any{}
	}
	switch action {
	case ActionDelete:
		if len(changes) == 0 {
			return Entry{}, errors.Join(ErrInvalidEntry, errors.New("delete requires a snapshot"))
		}
	case ActionApprove, ActionReject:
		if _, ok := changes["status"]; !ok {
			return Entry{}, errors.Join(ErrInvalidEntry, errors.New("review requires status"))
		}
	}

	e := Entry{
		ID:          uuid.NewString(),
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		Action:      action,
		TargetModel: targetModel,
		TargetID:    targetID,
		Changes:     changes,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns entries newest first. Staff only.
func (s *Service) List(ctx context.Context, actor auth.Actor, f Filter) ([]Entry, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpView, rbac.ResourceAuditLog); err != nil {
		return nil, err
	}
	if f.Action != "" && !f.Action.Valid() {
		return nil, apperr.Validation("unknown audit action %q", f.Action)
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, apperr.Validation("limit and offset must not be negative")
	}
	if f.Limit == 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if !f.Since.IsZero() && !f.Until.IsZero() && f.Until.Before(f.Since) {
		return nil, apperr.Validation("until must not be before since")
	}
	return s.repo.List(ctx, f)
}

// Purge deletes entries created before the cutoff. Superuser only. The purge
// itself is logged, not audited.
func (s *Service) Purge(ctx context.Context, actor auth.Actor, before time.Time) (int64, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpPurge, rbac.ResourceAuditLog); err != nil {
		return 0, err
	}
	if before.IsZero() {
		return 0, apperr.Validation("purge cutoff is required")
	}
	if before.After(s.clock()) {
		return 0, apperr.Validation("purge cutoff must not be in the future")
	}
	n, err := s.repo.DeleteBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	logger.From(ctx).Warn("audit entries purged",
		"actor_user_id", actor.UserID,
		"actor_role", actor.Role,
		"before", before.UTC(),
		"deleted", n,
	)
	return n, nil
}
