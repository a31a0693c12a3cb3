package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
)

// DeviceService manages remote monitoring devices and their patient links.
type DeviceService struct {
	*core
}

// NewDeviceService constructs the service.
func NewDeviceService(deps Dependencies) *DeviceService {
	return &DeviceService{core: newCore(deps)}
}

// CreateDevice registers an active, unlinked device.
func (s *DeviceService) CreateDevice(ctx context.Context, principal, deviceID string) (*domain.Device, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", domain.ErrInvalidInput)
	}

	var device *domain.Device
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		device = &domain.Device{DeviceID: deviceID, Status: domain.DeviceActive, LastSync: u.now}
		if err := u.Devices().Create(ctx, device); err != nil {
			return err
		}
		return s.audit(ctx, u, domain.AuditCreateDevice, principal, nil, "device "+deviceID)
	})
	return device, err
}

// LinkDevice attaches a device to patient, moving it off any other patient.
func (s *DeviceService) LinkDevice(ctx context.Context, principal, deviceID, patient string) (*domain.Device, error) {
	var device *domain.Device
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		if _, err := u.Profiles().Get(ctx, patient); err != nil {
			return fmt.Errorf("patient %s: %w", patient, err)
		}
		var err error
		device, err = s.loadDevice(ctx, u, deviceID)
		if err != nil {
			return err
		}
		from := device.LinkedPatient
		if from != nil && *from == patient {
			return nil
		}

		device.LinkedPatient = ptr(patient)
		device.LastSync = u.now
		if err := u.Devices().Update(ctx, device); err != nil {
			return err
		}
		action, metadata := domain.AuditLinkDevice, fmt.Sprintf("device %s linked", deviceID)
		if from != nil {
			action, metadata = domain.AuditReassignDevice, fmt.Sprintf("device %s moved from %s", deviceID, *from)
		}
		if err := s.audit(ctx, u, action, principal, ptr(patient), metadata); err != nil {
			return err
		}
		u.emit(events.EventDeviceReassigned, patient, principal, events.DeviceReassignedPayload{
			DeviceID:    deviceID,
			FromPatient: from,
			ToPatient:   ptr(patient),
		})
		return nil
	})
	return device, err
}

// UnlinkDevice detaches a device from its patient.
func (s *DeviceService) UnlinkDevice(ctx context.Context, principal, deviceID string) (*domain.Device, error) {
	var device *domain.Device
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		var err error
		device, err = s.loadDevice(ctx, u, deviceID)
		if err != nil {
			return err
		}
		from := device.LinkedPatient
		if from == nil {
			return nil
		}

		device.LinkedPatient = nil
		if err := u.Devices().Update(ctx, device); err != nil {
			return err
		}
		if err := s.audit(ctx, u, domain.AuditUnlinkDevice, principal, from, "device "+deviceID); err != nil {
			return err
		}
		u.emit(events.EventDeviceReassigned, *from, principal, events.DeviceReassignedPayload{
			DeviceID:    deviceID,
			FromPatient: from,
		})
		return nil
	})
	return device, err
}

// ToggleDeviceStatus flips a device between active and inactive.
func (s *DeviceService) ToggleDeviceStatus(ctx context.Context, principal, deviceID string) (*domain.Device, error) {
	var device *domain.Device
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		var err error
		device, err = s.loadDevice(ctx, u, deviceID)
		if err != nil {
			return err
		}
		old := device.Status
		if old == domain.DeviceActive {
			device.Status = domain.DeviceInactive
		} else {
			device.Status = domain.DeviceActive
		}
		if err := u.Devices().Update(ctx, device); err != nil {
			return err
		}
		return s.audit(ctx, u, domain.AuditToggleDevice, principal, device.LinkedPatient,
			fmt.Sprintf("device %s %s -> %s", deviceID, old, device.Status))
	})
	return device, err
}

// ListDevices returns every device to an admin.
func (s *DeviceService) ListDevices(ctx context.Context, principal string) ([]domain.Device, error) {
	var devices []domain.Device
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		var err error
		devices, err = u.Devices().List(ctx)
		return err
	})
	return devices, err
}

// DevicesByPatient lists a patient's devices to the patient or an admin.
func (s *DeviceService) DevicesByPatient(ctx context.Context, principal, patient string) ([]domain.Device, error) {
	var devices []domain.Device
	err := s.atomically(ctx, func(u *unit) error {
		if principal != patient {
			if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
				return err
			}
		}
		var err error
		devices, err = u.Devices().ListByPatient(ctx, patient)
		return err
	})
	return devices, err
}

func (s *DeviceService) loadDevice(ctx context.Context, u *unit, deviceID string) (*domain.Device, error) {
	device, err := u.Devices().Get(ctx, deviceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("device %s: %w", deviceID, err)
	}
	return device, err
}
