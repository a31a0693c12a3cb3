package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/care-access/internal/api/dto"
	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/service"
)

// ApprovalsHandler exposes the approval gate and doctor registry.
type ApprovalsHandler struct {
	approvals *service.ApprovalService
}

// NewApprovalsHandler constructs handler.
func NewApprovalsHandler(approvals *service.ApprovalService) *ApprovalsHandler {
	return &ApprovalsHandler{approvals: approvals}
}

// RequestApproval handles POST /v1/me/approval.
func (h *ApprovalsHandler) RequestApproval(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	record, err := h.approvals.RequestApproval(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.ApprovalFromDomain(*record)})
}

// IsApproved handles GET /v1/me/approval.
func (h *ApprovalsHandler) IsApproved(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	approved, err := h.approvals.IsApproved(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FlagResponse{Value: approved}})
}

// List handles GET /v1/approvals.
func (h *ApprovalsHandler) List(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	records, err := h.approvals.ListApprovals(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ApprovalsFromDomain(records)})
}

// Set handles PUT /v1/approvals/:principal.
func (h *ApprovalsHandler) Set(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	var req dto.SetApprovalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseApprovalStatus(req.Status)
	if err != nil {
		return err
	}
	record, err := h.approvals.SetApproval(c.UserContext(), principal, target, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ApprovalFromDomain(*record)})
}

// RegisterDoctor handles POST /v1/doctors.
func (h *ApprovalsHandler) RegisterDoctor(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RegisterDoctorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	doctor, err := h.approvals.RegisterDoctor(c.UserContext(), principal, service.DoctorInput{Name: req.Name, Specialty: req.Specialty})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.DoctorFromDomain(*doctor)})
}

// ListDoctors handles GET /v1/doctors.
func (h *ApprovalsHandler) ListDoctors(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	doctors, err := h.approvals.ListDoctors(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DoctorsFromDomain(doctors)})
}

// GetDoctor handles GET /v1/doctors/:principal.
func (h *ApprovalsHandler) GetDoctor(c *fiber.Ctx) error {
	target, err := pathParam(c, "principal")
	if err != nil {
		return err
	}
	doctor, err := h.approvals.GetDoctorProfile(c.UserContext(), target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DoctorFromDomain(*doctor)})
}

// VerifyDoctor handles POST /v1/doctors/:principal/verify.
func (h *ApprovalsHandler) VerifyDoctor(c *fiber.Ctx) error {
	principal, target, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	doctor, err := h.approvals.VerifyDoctor(c.UserContext(), principal, target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DoctorFromDomain(*doctor)})
}
