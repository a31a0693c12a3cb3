package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/care-access/internal/api/dto"
	"github.com/spec-kit/care-access/internal/service"
)

// UsersHandler exposes profile endpoints.
type UsersHandler struct {
	identity *service.IdentityService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(identity *service.IdentityService) *UsersHandler {
	return &UsersHandler{identity: identity}
}

// GetOwnProfile handles GET /v1/me/profile.
func (h *UsersHandler) GetOwnProfile(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	profile, err := h.identity.GetCallerProfile(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProfileFromDomain(profile)})
}

// SaveOwnProfile handles PUT /v1/me/profile.
func (h *UsersHandler) SaveOwnProfile(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SaveProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.identity.SaveCallerProfile(c.UserContext(), principal, service.ProfileInput{
		Name:        req.Name,
		BaseRole:    req.BaseRole,
		MedicalRole: req.MedicalRole,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProfileFromDomain(profile)})
}

// GetUserProfile handles GET /v1/users/:principal/profile.
func (h *UsersHandler) GetUserProfile(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	target, err := pathParam(c, "principal")
	if err != nil {
		return err
	}
	profile, err := h.identity.GetUserProfile(c.UserContext(), principal, target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProfileFromDomain(profile)})
}
