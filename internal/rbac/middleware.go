package rbac

import (
	"net/http"

	"memorial-registry/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole allows access if the caller has any of the provided roles.
// Rules:
// - superuser bypasses all checks
// - anonymous callers get 401, authenticated callers without a listed role get 403
//
// This is an outer gate for route groups; services still ask the Guard.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" || role == RoleAnonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}

		if IsSuperuser(role) {
			c.Next()
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireStaff is RequireAnyRole for the moderation/admin surfaces.
func RequireStaff() gin.HandlerFunc { return RequireAnyRole(RoleModerator, RoleSuperuser) }
