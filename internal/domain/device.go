package domain

import "time"

// DeviceStatus is the operational state of a monitoring device.
type DeviceStatus string

const (
	DeviceActive   DeviceStatus = "active"
	DeviceInactive DeviceStatus = "inactive"
)

// Device is a remote monitoring device optionally linked to a patient.
type Device struct {
	DeviceID      string
	Status        DeviceStatus
	LinkedPatient *string
	LastSync      time.Time
}

// Clone returns a copy that does not share the patient pointer.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	cp := *d
	if d.LinkedPatient != nil {
		p := *d.LinkedPatient
		cp.LinkedPatient = &p
	}
	return &cp
}
