package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/care-access/internal/api/dto"
	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/service"
)

// AuditHandler serves the audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /v1/audit-logs?offset=&limit=&action=&target=.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	offset, err := parseInt(c, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := parseInt(c, "limit", 0)
	if err != nil {
		return err
	}
	query := service.AuditQuery{Offset: offset, Limit: limit, TargetUser: optionalQuery(c, "target")}
	if action := optionalQuery(c, "action"); action != nil {
		a := domain.AuditAction(*action)
		query.Action = &a
	}

	page, err := h.audit.Query(c.UserContext(), principal, query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.AuditLogsFromDomain(page.Entries),
		"meta": dto.PageMeta{Offset: page.Offset, Limit: page.Limit, Total: page.Total},
	})
}
