package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-access/internal/domain"
	apperrors "github.com/spec-kit/care-access/pkg/util/errorutil"
)

type staticRoles map[string]domain.Role

func (s staticRoles) RequireRole(_ context.Context, principal string, min domain.Role) (domain.Role, error) {
	role, ok := s[principal]
	if !ok || !role.AtLeast(min) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnauthorized, principal)
	}
	return role, nil
}

func newTestApp(tm *TokenManager, roles staticRoles) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm)
	app.Get("/me", mw.Handle, RequireAuthenticated(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal)
	})
	app.Get("/admin", mw.Handle, RequireRole(roles, domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", "care-access", time.Hour)
	app := newTestApp(tm, staticRoles{"boss": domain.RoleAdmin, "pat": domain.RolePatient})

	token := func(principal string) string {
		raw, _, err := tm.GenerateToken(principal)
		require.NoError(t, err)
		return "Bearer " + raw
	}

	cases := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"valid token", "/me", token("pat"), http.StatusOK, "pat"},
		{"role too low", "/admin", token("pat"), http.StatusForbidden, "UNAUTHORIZED"},
		{"admin", "/admin", token("boss"), http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tc.body, string(body))
		})
	}
}
