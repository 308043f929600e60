package rbac

import "memorial-registry/internal/apperr"

// Operation is what a caller attempts on a resource.
type Operation string

const (
	OpView   Operation = "view"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpSubmit Operation = "submit"
	OpReview Operation = "review"
	OpPurge  Operation = "purge"
)

// Resource names double as audit target_model values.
type Resource string

const (
	ResourceVictim     Resource = "Victim"
	ResourcePhoto      Resource = "Photo"
	ResourceSource     Resource = "Source"
	ResourceTag        Resource = "Tag"
	ResourceVictimTag  Resource = "VictimTag"
	ResourceSubmission Resource = "Submission"
	ResourceAuditLog   Resource = "AuditLog"
)

// Guard is the single authorization strategy queried before every mutation.
// It holds no state; the policy is the table in Authorize.
type Guard struct{}

func NewGuard() Guard { return Guard{} }

// Authorize returns nil when role may perform op on res, otherwise an
// apperr.ErrForbidden error. It must be called before any state is touched.
func (Guard) Authorize(role string, op Operation, res Resource) error {
	r, known := Normalize(role)
	if !known {
		return apperr.Forbidden("unknown role %q", role)
	}
	if allowed(r, op, res) {
		return nil
	}
	return apperr.Forbidden("role %s may not %s %s", r, op, res)
}

func allowed(role string, op Operation, res Resource) bool {
	switch res {
	case ResourceVictim, ResourcePhoto, ResourceSource, ResourceTag, ResourceVictimTag:
		switch op {
		case OpView:
			return true
		case OpCreate, OpUpdate:
			return IsStaff(role)
		case OpDelete:
			return IsSuperuser(role)
		}
	case ResourceSubmission:
		switch op {
		case OpSubmit:
			return true
		case OpView, OpReview:
			return IsStaff(role)
		}
		// Submissions are append-only: no role edits or deletes them directly.
	case ResourceAuditLog:
		switch op {
		case OpView:
			return IsStaff(role)
		case OpDelete, OpPurge:
			return IsSuperuser(role)
		}
		// Only the system writes audit entries.
	}
	return false
}
