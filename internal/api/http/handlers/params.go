package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/care-access/internal/auth"
	apperrors "github.com/spec-kit/care-access/pkg/util/errorutil"
)

func callerPrincipal(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthenticated("authentication required")
	}
	return principal, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}

func pathParam(c *fiber.Ctx, name string) (string, error) {
	val := strings.TrimSpace(c.Params(name))
	if val == "" {
		return "", apperrors.NewValidationError(name+" required", nil)
	}
	return val, nil
}

func parseInt(c *fiber.Ctx, key string, def int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, apperrors.NewValidationError(key+" must be an integer", map[string]any{key: val})
	}
	return parsed, nil
}

func parseID(c *fiber.Ctx, name string) (int64, error) {
	parsed, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || parsed <= 0 {
		return 0, apperrors.NewValidationError(name+" must be a positive integer", map[string]any{name: c.Params(name)})
	}
	return parsed, nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}
