package rbac

import "memorial-registry/internal/auth"

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAnonymous = auth.Anonymous
	RoleModerator = "moderator"
	RoleSuperuser = "superuser"
)

func IsSuperuser(role string) bool { return role == RoleSuperuser }

// IsStaff reports whether role may use the staff surfaces at all.
func IsStaff(role string) bool { return role == RoleModerator || role == RoleSuperuser }

// Normalize maps the empty role to anonymous and reports whether role is known.
func Normalize(role string) (string, bool) {
	switch role {
	case "", RoleAnonymous:
		return RoleAnonymous, true
	case RoleModerator, RoleSuperuser:
		return role, true
	default:
		return role, false
	}
}
