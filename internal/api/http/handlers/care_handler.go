package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/care-access/internal/api/dto"
	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/service"
)

// CareHandler exposes facilities, devices, appointments and patient records.
type CareHandler struct {
	facilities   *service.FacilityService
	devices      *service.DeviceService
	appointments *service.AppointmentService
	records      *service.RecordService
}

// NewCareHandler constructs handler.
func NewCareHandler(facilities *service.FacilityService, devices *service.DeviceService, appointments *service.AppointmentService, records *service.RecordService) *CareHandler {
	return &CareHandler{facilities: facilities, devices: devices, appointments: appointments, records: records}
}

// ListFacilities handles GET /v1/facilities.
func (h *CareHandler) ListFacilities(c *fiber.Ctx) error {
	facilities, err := h.facilities.ListFacilities(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FacilitiesFromDomain(facilities)})
}

// AddFacility handles POST /v1/facilities.
func (h *CareHandler) AddFacility(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateFacilityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	facility, err := h.facilities.AddFacility(c.UserContext(), principal, service.FacilityInput{
		Name:         req.Name,
		FacilityType: req.FacilityType,
		Address:      req.Address,
		Phone:        req.Phone,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FacilityFromDomain(*facility)})
}

// ListDevices handles GET /v1/devices.
func (h *CareHandler) ListDevices(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	devices, err := h.devices.ListDevices(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DevicesFromDomain(devices)})
}

// CreateDevice handles POST /v1/devices.
func (h *CareHandler) CreateDevice(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateDeviceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	device, err := h.devices.CreateDevice(c.UserContext(), principal, req.DeviceID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.DeviceFromDomain(*device)})
}

// LinkDevice handles PUT /v1/devices/:id/link.
func (h *CareHandler) LinkDevice(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	deviceID, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.LinkDeviceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	device, err := h.devices.LinkDevice(c.UserContext(), principal, deviceID, req.Patient)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DeviceFromDomain(*device)})
}

// UnlinkDevice handles DELETE /v1/devices/:id/link.
func (h *CareHandler) UnlinkDevice(c *fiber.Ctx) error {
	return h.deviceAction(c, h.devices.UnlinkDevice)
}

// ToggleDevice handles POST /v1/devices/:id/toggle.
func (h *CareHandler) ToggleDevice(c *fiber.Ctx) error {
	return h.deviceAction(c, h.devices.ToggleDeviceStatus)
}

func (h *CareHandler) deviceAction(c *fiber.Ctx, action func(ctx context.Context, principal, deviceID string) (*domain.Device, error)) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	deviceID, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	device, err := action(c.UserContext(), principal, deviceID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DeviceFromDomain(*device)})
}

// PatientDevices handles GET /v1/patients/:principal/devices.
func (h *CareHandler) PatientDevices(c *fiber.Ctx) error {
	principal, patient, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	devices, err := h.devices.DevicesByPatient(c.UserContext(), principal, patient)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DevicesFromDomain(devices)})
}

// ListAppointments handles GET /v1/appointments.
func (h *CareHandler) ListAppointments(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	appts, err := h.appointments.ListAppointments(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AppointmentsFromDomain(appts)})
}

// BookAppointment handles POST /v1/appointments.
func (h *CareHandler) BookAppointment(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BookAppointmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	appt, err := h.appointments.BookAppointment(c.UserContext(), principal, service.AppointmentInput{
		Doctor:      req.Doctor,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AppointmentFromDomain(*appt)})
}

// OverrideAppointmentStatus handles PUT /v1/appointments/:id/status.
func (h *CareHandler) OverrideAppointmentStatus(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AppointmentStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseAppointmentStatus(req.Status)
	if err != nil {
		return err
	}
	appt, err := h.appointments.OverrideAppointmentStatus(c.UserContext(), principal, id, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AppointmentFromDomain(*appt)})
}

// OwnRecords handles GET /v1/me/records.
func (h *CareHandler) OwnRecords(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	record, err := h.records.OwnRecords(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PatientRecordFromDomain(record)})
}

// PatientRecords handles GET /v1/patients/:principal/records.
func (h *CareHandler) PatientRecords(c *fiber.Ctx) error {
	principal, patient, err := callerAndTarget(c)
	if err != nil {
		return err
	}
	record, err := h.records.RecordsByPatient(c.UserContext(), principal, patient)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PatientRecordFromDomain(record)})
}

// LogVitals handles POST /v1/me/records/vitals.
func (h *CareHandler) LogVitals(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.VitalsPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	vitals, err := h.records.LogVitals(c.UserContext(), principal, req.ToVitals())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.VitalsFromDomain(*vitals)})
}

// LogSymptom handles POST /v1/me/records/symptoms.
func (h *CareHandler) LogSymptom(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SymptomPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	symptom, err := h.records.LogSymptom(c.UserContext(), principal, req.ToSymptom())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SymptomFromDomain(*symptom)})
}
