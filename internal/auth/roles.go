package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebyviral/irms-backend/internal/domain"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// Staff is every role allowed to manage interns.
var Staff = []domain.Role{domain.RoleAdmin, domain.RoleHR, domain.RoleHRHead}

// RequireRoles ensures the principal has one of the allowed roles. No roles
// means any authenticated caller.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// HasRole reports whether the principal holds one of roles.
func (p *Principal) HasRole(roles ...domain.Role) bool {
	if p == nil {
		return false
	}
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
