package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/care-access/internal/domain"
	apperrors "github.com/spec-kit/care-access/pkg/util/errorutil"
)

// RoleChecker resolves the caller's current, expiry-checked role.
type RoleChecker interface {
	RequireRole(ctx context.Context, principal string, min domain.Role) (domain.Role, error)
}

// RequireAuthenticated ensures a principal was stored by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}

// RequireRole rejects callers ranked below min before the handler runs. The
// services repeat the check inside their own unit of work.
func RequireRole(checker RoleChecker, min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if _, err := checker.RequireRole(c.UserContext(), principal, min); err != nil {
			return err
		}
		return c.Next()
	}
}
