package victims

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/audit"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/observability/metrics"
	"memorial-registry/internal/rbac"
	"memorial-registry/internal/search"
	"memorial-registry/internal/slug"
	"memorial-registry/pkg/logger"
)

// AuditRecorder is the slice of audit.Service the pipeline needs.
type AuditRecorder interface {
	Record(ctx context.Context, actor auth.Actor, action audit.Action, targetModel string, targetID *int64, changes map[string]any) (audit.Entry, error)
}

// SubmissionUnlinker nulls submission links to a deleted victim.
type SubmissionUnlinker interface {
	UnlinkVictim(ctx context.Context, victimID int64) error
}

// Service is the registry's mutation and query surface. Every mutation runs
// guard, validate, write, reindex, audit in that order.
type Service struct {
	repo     Repository
	index    *search.Index
	audit    AuditRecorder
	guard    rbac.Guard
	unlinker SubmissionUnlinker

	victimSlugs *slug.Allocator
	tagSlugs    *slug.Allocator
}

func NewService(repo Repository, index *search.Index, rec AuditRecorder, guard rbac.Guard) *Service {
	return &Service{
		repo:        repo,
		index:       index,
		audit:       rec,
		guard:       guard,
		victimSlugs: slug.NewAllocator(repo.VictimSlugExists, "victim"),
		tagSlugs:    slug.NewAllocator(repo.TagSlugExists, "tag"),
	}
}

// WithSubmissionUnlinker sets the hook run after a victim is deleted.
func (s *Service) WithSubmissionUnlinker(u SubmissionUnlinker) *Service {
	s.unlinker = u
	return s
}

func (s *Service) CreateVictim(ctx context.Context, actor auth.Actor, in VictimInput) (Victim, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpCreate, rbac.ResourceVictim); err != nil {
		return Victim{}, err
	}
	var v Victim
	if err := in.apply(&v); err != nil {
		return Victim{}, err
	}
	v.SubmittedBy = actor.UserID
	v.SearchDocument = v.Document().Text()

	candidate := in.Slug
	if candidate == "" {
		candidate = v.FullName
	}
	var created Victim
	_, err := s.victimSlugs.Allocate(ctx, candidate, 0, func(ctx context.Context, sl string) error {
		v.Slug = sl
		var err error
		created, err = s.repo.InsertVictim(ctx, v)
		return err
	})
	if err != nil {
		return Victim{}, err
	}

	indexErr := s.reindex(ctx, created)
	s.record(ctx, actor, audit.ActionCreate, rbac.ResourceVictim, created.ID, created.Fields())
	return created, indexErr
}

// UpdateVictim replaces the editable state of victim id with in. The slug is
// reallocated only when in.Slug is set.
func (s *Service) UpdateVictim(ctx context.Context, actor auth.Actor, id int64, in VictimInput) (Victim, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpUpdate, rbac.ResourceVictim); err != nil {
		return Victim{}, err
	}
	mutate := func(sl string) func(Victim) (Victim, error) {
		return func(next Victim) (Victim, error) {
			if err := in.apply(&next); err != nil {
				return Victim{}, err
			}
			if sl != "" {
				next.Slug = sl
			}
			next.SearchDocument = next.Document().Text()
			return next, nil
		}
	}

	var (
		prior, updated Victim
		err            error
	)
	if in.Slug == "" {
		prior, updated, err = s.repo.UpdateVictim(ctx, id, mutate(""))
	} else {
		_, err = s.victimSlugs.Allocate(ctx, in.Slug, id, func(ctx context.Context, sl string) error {
			var err error
			prior, updated, err = s.repo.UpdateVictim(ctx, id, mutate(sl))
			return err
		})
	}
	if err != nil {
		return Victim{}, notFound(err, "victim", id)
	}

	var indexErr error
	if prior.SearchDocument != updated.SearchDocument {
		indexErr = s.reindex(ctx, updated)
	}
	s.record(ctx, actor, audit.ActionUpdate, rbac.ResourceVictim, id, diff(prior.Fields(), updated.Fields()))
	return updated, indexErr
}

// DeleteVictim removes the victim and everything it owns, drops its search
// document and detaches submissions that referenced it.
func (s *Service) DeleteVictim(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.guard.Authorize(actor.Role, rbac.OpDelete, rbac.ResourceVictim); err != nil {
		return err
	}
	prior, err := s.repo.GetVictim(ctx, id)
	if err != nil {
		return notFound(err, "victim", id)
	}
	if err := s.repo.DeleteVictim(ctx, id); err != nil {
		return notFound(err, "victim", id)
	}

	var hookErrs []error
	if err := s.index.Remove(ctx, id); err != nil {
		metrics.ReindexFailuresTotal.Inc()
		logger.From(ctx).Error("search document removal failed", "victim_id", id, "err", err)
		hookErrs = append(hookErrs, fmt.Errorf("victim %d deleted but search index removal failed: %w", id, err))
	}
	if s.unlinker != nil {
		if err := s.unlinker.UnlinkVictim(ctx, id); err != nil {
			logger.From(ctx).Error("submission unlink failed", "victim_id", id, "err", err)
			hookErrs = append(hookErrs, fmt.Errorf("victim %d deleted but submissions were not unlinked: %w", id, err))
		}
	}

	snapshot := prior.Fields()
	snapshot["tags"] = tagSlugs(prior.Tags)
	s.record(ctx, actor, audit.ActionDelete, rbac.ResourceVictim, id, snapshot)
	return errors.Join(hookErrs...)
}

func (s *Service) CreateTag(ctx context.Context, actor auth.Actor, in TagInput) (Tag, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpCreate, rbac.ResourceTag); err != nil {
		return Tag{}, err
	}
	var t Tag
	if err := in.apply(&t); err != nil {
		return Tag{}, err
	}
	candidate := in.Slug
	if candidate == "" {
		candidate = t.Name
	}
	var created Tag
	_, err := s.tagSlugs.Allocate(ctx, candidate, 0, func(ctx context.Context, sl string) error {
		t.Slug = sl
		var err error
		created, err = s.repo.InsertTag(ctx, t)
		return err
	})
	if err != nil {
		return Tag{}, tagErr(err, t.Name)
	}
	s.record(ctx, actor, audit.ActionCreate, rbac.ResourceTag, created.ID, created.Fields())
	return created, nil
}

func (s *Service) UpdateTag(ctx context.Context, actor auth.Actor, id int64, in TagInput) (Tag, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpUpdate, rbac.ResourceTag); err != nil {
		return Tag{}, err
	}
	mutate := func(sl string) func(Tag) (Tag, error) {
		return func(next Tag) (Tag, error) {
			if err := in.apply(&next); err != nil {
				return Tag{}, err
			}
			if sl != "" {
				next.Slug = sl
			}
			return next, nil
		}
	}

	var (
		prior, updated Tag
		err            error
	)
	if in.Slug == "" {
		prior, updated, err = s.repo.UpdateTag(ctx, id, mutate(""))
	} else {
		_, err = s.tagSlugs.Allocate(ctx, in.Slug, id, func(ctx context.Context, sl string) error {
			var err error
			prior, updated, err = s.repo.UpdateTag(ctx, id, mutate(sl))
			return err
		})
	}
	if err != nil {
		return Tag{}, tagErr(notFound(err, "tag", id), Sanitize(in.Name))
	}
	s.record(ctx, actor, audit.ActionUpdate, rbac.ResourceTag, id, diff(prior.Fields(), updated.Fields()))
	return updated, nil
}

func (s *Service) DeleteTag(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.guard.Authorize(actor.Role, rbac.OpDelete, rbac.ResourceTag); err != nil {
		return err
	}
	prior, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return notFound(err, "tag", id)
	}
	if err := s.repo.DeleteTag(ctx, id); err != nil {
		return notFound(err, "tag", id)
	}
	s.record(ctx, actor, audit.ActionDelete, rbac.ResourceTag, id, prior.Fields())
	return nil
}

// AttachTag links a tag to a victim. Linking counts as creating a VictimTag.
func (s *Service) AttachTag(ctx context.Context, actor auth.Actor, victimID, tagID int64) (VictimTag, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpCreate, rbac.ResourceVictimTag); err != nil {
		return VictimTag{}, err
	}
	l, err := s.repo.AttachTag(ctx, victimID, tagID)
	switch {
	case errors.Is(err, ErrAlreadyLinked):
		return VictimTag{}, apperr.Conflict("tag %d is already linked to victim %d", tagID, victimID)
	case errors.Is(err, ErrNotFound):
		return VictimTag{}, apperr.NotFound("victim %d or tag %d", victimID, tagID)
	case err != nil:
		return VictimTag{}, err
	}
	s.record(ctx, actor, audit.ActionCreate, rbac.ResourceVictimTag, l.ID, l.Fields())
	return l, nil
}

// DetachTag removes a link. Unlinking counts as deleting a VictimTag.
func (s *Service) DetachTag(ctx context.Context, actor auth.Actor, victimID, tagID int64) error {
	if err := s.guard.Authorize(actor.Role, rbac.OpDelete, rbac.ResourceVictimTag); err != nil {
		return err
	}
	l, err := s.repo.DetachTag(ctx, victimID, tagID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("tag %d is not linked to victim %d", tagID, victimID)
	}
	if err != nil {
		return err
	}
	s.record(ctx, actor, audit.ActionDelete, rbac.ResourceVictimTag, l.ID, l.Fields())
	return nil
}

func (s *Service) CreateSource(ctx context.Context, actor auth.Actor, in SourceInput) (Source, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpCreate, rbac.ResourceSource); err != nil {
		return Source{}, err
	}
	var src Source
	if err := in.apply(&src); err != nil {
		return Source{}, err
	}
	created, err := s.repo.InsertSource(ctx, src)
	if err != nil {
		return Source{}, notFound(err, "victim", src.VictimID)
	}
	s.record(ctx, actor, audit.ActionCreate, rbac.ResourceSource, created.ID, created.Fields())
	return created, nil
}

func (s *Service) UpdateSource(ctx context.Context, actor auth.Actor, id int64, in SourceInput) (Source, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpUpdate, rbac.ResourceSource); err != nil {
		return Source{}, err
	}
	prior, updated, err := s.repo.UpdateSource(ctx, id, func(next Source) (Source, error) {
		err := in.apply(&next)
		return next, err
	})
	if err != nil {
		return Source{}, notFound(err, "source or victim", id)
	}
	s.record(ctx, actor, audit.ActionUpdate, rbac.ResourceSource, id, diff(prior.Fields(), updated.Fields()))
	return updated, nil
}

func (s *Service) DeleteSource(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.guard.Authorize(actor.Role, rbac.OpDelete, rbac.ResourceSource); err != nil {
		return err
	}
	prior, err := s.repo.GetSource(ctx, id)
	if err != nil {
		return notFound(err, "source", id)
	}
	if err := s.repo.DeleteSource(ctx, id); err != nil {
		return notFound(err, "source", id)
	}
	s.record(ctx, actor, audit.ActionDelete, rbac.ResourceSource, id, prior.Fields())
	return nil
}

func (s *Service) CreatePhoto(ctx context.Context, actor auth.Actor, in PhotoInput) (Photo, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpCreate, rbac.ResourcePhoto); err != nil {
		return Photo{}, err
	}
	var p Photo
	if err := in.apply(&p); err != nil {
		return Photo{}, err
	}
	created, err := s.repo.InsertPhoto(ctx, p)
	if err != nil {
		return Photo{}, notFound(err, "victim", p.VictimID)
	}
	s.record(ctx, actor, audit.ActionCreate, rbac.ResourcePhoto, created.ID, created.Fields())
	return created, nil
}

func (s *Service) UpdatePhoto(ctx context.Context, actor auth.Actor, id int64, in PhotoInput) (Photo, error) {
	if err := s.guard.Authorize(actor.Role, rbac.OpUpdate, rbac.ResourcePhoto); err != nil {
		return Photo{}, err
	}
	prior, updated, err := s.repo.UpdatePhoto(ctx, id, func(next Photo) (Photo, error) {
		err := in.apply(&next)
		return next, err
	})
	if err != nil {
		return Photo{}, notFound(err, "photo or victim", id)
	}
	s.record(ctx, actor, audit.ActionUpdate, rbac.ResourcePhoto, id, diff(prior.Fields(), updated.Fields()))
	return updated, nil
}

func (s *Service) DeletePhoto(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.guard.Authorize(actor.Role, rbac.OpDelete, rbac.ResourcePhoto); err != nil {
		return err
	}
	prior, err := s.repo.GetPhoto(ctx, id)
	if err != nil {
		return notFound(err, "photo", id)
	}
	if err := s.repo.DeletePhoto(ctx, id); err != nil {
		return notFound(err, "photo", id)
	}
	s.record(ctx, actor, audit.ActionDelete, rbac.ResourcePhoto, id, prior.Fields())
	return nil
}

// reindex pushes v's search document. A failure leaves the committed write in
// place; the caller still audits and then returns the error.
func (s *Service) reindex(ctx context.Context, v Victim) error {
	if err := s.index.Reindex(ctx, v.Document()); err != nil {
		metrics.ReindexFailuresTotal.Inc()
		logger.From(ctx).Error("search reindex failed", "victim_id", v.ID, "err", err)
		return fmt.Errorf("victim %d saved but search index update failed: %w", v.ID, err)
	}
	return nil
}

// record writes the audit entry for a committed mutation. Failures are logged
// and counted; they never fail the request.
func (s *Service) record(ctx context.Context, actor auth.Actor, action audit.Action, res rbac.Resource, id int64, changes map[string]any) {
	metrics.MutationsTotal.WithLabelValues(string(action), string(res)).Inc()
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, actor, action, string(res), audit.ID(id), changes); err != nil {
		metrics.AuditWriteFailuresTotal.WithLabelValues(string(action), string(res)).Inc()
		logger.From(ctx).Warn("audit write failed",
			"action", action,
			"target_model", res,
			"target_id", id,
			"err", err,
		)
	}
}

// diff returns the fields of after that differ from before.
func diff(before, after map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range after {
		if !reflect.DeepEqual(before[k], v) {
			out[k] = v
		}
	}
	return out
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("%s %d", what, id)
	}
	return err
}

func tagErr(err error, name string) error {
	if errors.Is(err, ErrTagNameTaken) {
		return apperr.Conflict("tag name %q is already in use", name)
	}
	return err
}

func tagSlugs(tags []Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Slug)
	}
	return out
}
