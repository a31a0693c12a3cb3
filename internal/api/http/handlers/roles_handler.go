package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/care-access/internal/api/dto"
	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/service"
	apperrors "github.com/spec-kit/care-access/pkg/util/errorutil"
)

// RolesHandler exposes the role and admin lifecycle.
type RolesHandler struct {
	lifecycle *service.LifecycleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(lifecycle *service.LifecycleService) *RolesHandler {
	return &RolesHandler{lifecycle: lifecycle}
}

// GetOwnRole handles GET /v1/me/role.
func (h *RolesHandler) GetOwnRole(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	info, err := h.lifecycle.GetRoleInfo(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RoleInfoFromDomain(info)})
}

// CheckExpiration handles POST /v1/me/role/expiration-check.
func (h *RolesHandler) CheckExpiration(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	reverted, err := h.lifecycle.CheckAdminExpiration(c.UserContext(), principal)
	if err != nil {
		return err
	}
	info, err := h.lifecycle.GetRoleInfo(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ExpirationCheckResponse{Reverted: reverted, RoleInfo: dto.RoleInfoFromDomain(info)}})
}

// IsAdmin handles GET /v1/me/admin.
func (h *RolesHandler) IsAdmin(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	ok, err := h.lifecycle.IsCallerAdmin(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FlagResponse{Value: ok}})
}

// RequestAdminAccess handles POST /v1/me/admin-access-requests.
func (h *RolesHandler) RequestAdminAccess(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.RequestAdminAccess(c.UserContext(), principal); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// AdminSession handles GET /v1/users/:principal/admin-session.
func (h *RolesHandler) AdminSession(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	active, err := h.lifecycle.IsActiveAdminSession(c.UserContext(), principal, target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FlagResponse{Value: active}})
}

// AssignRole handles PUT /v1/users/:principal/role.
func (h *RolesHandler) AssignRole(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	var req dto.AssignRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}
	if err := h.lifecycle.AssignRole(c.UserContext(), principal, target, role); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Promote handles POST /v1/admins/:principal/promote.
func (h *RolesHandler) Promote(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.PromoteToAdmin(c.UserContext(), principal, target); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// GrantTemporary handles POST /v1/admins/:principal/temporary.
func (h *RolesHandler) GrantTemporary(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	expiresAt, err := parseExpiry(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.GrantTemporaryAdmin(c.UserContext(), principal, target, expiresAt); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ExtendExpiry handles PATCH /v1/admins/:principal/expiry.
func (h *RolesHandler) ExtendExpiry(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	expiresAt, err := parseExpiry(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.ExtendAdminExpiry(c.UserContext(), principal, target, expiresAt); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Revoke handles DELETE /v1/admins/:principal.
func (h *RolesHandler) Revoke(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.RevokeAdmin(c.UserContext(), principal, target); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListAdmins handles GET /v1/admins.
func (h *RolesHandler) ListAdmins(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	admins, err := h.lifecycle.GetAllAdmins(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminsFromDomain(admins)})
}

func callerAndTarget(c *fiber.Ctx) (string, string, error) {
	principal, err := callerPrincipal(c)
	if err != nil {
		return "", "", err
	}
	target, err := pathParam(c, "principal")
	if err != nil {
		return "", "", err
	}
	return principal, target, nil
}

func parseExpiry(c *fiber.Ctx) (time.Time, error) {
	var req dto.AdminExpiryRequest
	if err := parseBody(c, &req); err != nil {
		return time.Time{}, err
	}
	if req.ExpiresAt == nil {
		return time.Time{}, apperrors.NewValidationError("expires_at required", nil)
	}
	return *req.ExpiresAt, nil
}
