package dto

import (
	"time"

	"github.com/spec-kit/care-access/internal/domain"
)

// CreateFacilityRequest payload.
type CreateFacilityRequest struct {
	Name         string  `json:"name"`
	FacilityType string  `json:"facility_type"`
	Address      string  `json:"address"`
	Phone        string  `json:"phone"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// FacilityResponse describes a facility.
type FacilityResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	FacilityType string    `json:"facility_type"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateDeviceRequest payload.
type CreateDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

// LinkDeviceRequest payload.
type LinkDeviceRequest struct {
	Patient string `json:"patient"`
}

// DeviceResponse describes a device.
type DeviceResponse struct {
	DeviceID      string              `json:"device_id"`
	Status        domain.DeviceStatus `json:"status"`
	LinkedPatient *string             `json:"linked_patient"`
	LastSync      time.Time           `json:"last_sync"`
}

// BookAppointmentRequest payload.
type BookAppointmentRequest struct {
	Doctor      string    `json:"doctor"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
}

// AppointmentStatusRequest payload.
type AppointmentStatusRequest struct {
	Status string `json:"status"`
}

// AppointmentResponse describes an appointment.
type AppointmentResponse struct {
	ID          int64                    `json:"id"`
	Patient     string                   `json:"patient"`
	Doctor      string                   `json:"doctor"`
	StartTime   time.Time                `json:"start_time"`
	EndTime     time.Time                `json:"end_time"`
	Description string                   `json:"description"`
	Status      domain.AppointmentStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// VitalsPayload is used for both requests and responses.
type VitalsPayload struct {
	Temperature      float64   `json:"temperature"`
	BloodPressure    string    `json:"blood_pressure"`
	OxygenSaturation int       `json:"oxygen_saturation"`
	HeartRate        int       `json:"heart_rate"`
	Timestamp        time.Time `json:"timestamp"`
}

// SymptomPayload is used for both requests and responses.
type SymptomPayload struct {
	Description string    `json:"description"`
	Severity    int       `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
}

// PatientRecordResponse aggregates a patient's log.
type PatientRecordResponse struct {
	Patient  string           `json:"patient"`
	Vitals   []VitalsPayload  `json:"vitals"`
	Symptoms []SymptomPayload `json:"symptoms"`
}

// FacilityFromDomain maps a facility.
func FacilityFromDomain(f domain.MedicalFacility) FacilityResponse {
	return FacilityResponse{
		ID:           f.ID,
		Name:         f.Name,
		FacilityType: f.FacilityType,
		Address:      f.Address,
		Phone:        f.Phone,
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
		CreatedAt:    f.CreatedAt,
	}
}

// FacilitiesFromDomain maps facilities.
func FacilitiesFromDomain(facilities []domain.MedicalFacility) []FacilityResponse {
	out := make([]FacilityResponse, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, FacilityFromDomain(f))
	}
	return out
}

// DeviceFromDomain maps a device.
func DeviceFromDomain(d domain.Device) DeviceResponse {
	return DeviceResponse{DeviceID: d.DeviceID, Status: d.Status, LinkedPatient: d.LinkedPatient, LastSync: d.LastSync}
}

// DevicesFromDomain maps devices.
func DevicesFromDomain(devices []domain.Device) []DeviceResponse {
	out := make([]DeviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, DeviceFromDomain(d))
	}
	return out
}

// AppointmentFromDomain maps an appointment.
func AppointmentFromDomain(a domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		Patient:     a.Patient,
		Doctor:      a.Doctor,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Description: a.Description,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AppointmentsFromDomain maps appointments.
func AppointmentsFromDomain(appts []domain.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, AppointmentFromDomain(a))
	}
	return out
}

// ToVitals maps a request payload.
func (v VitalsPayload) ToVitals() domain.VitalSigns {
	return domain.VitalSigns{
		Temperature:      v.Temperature,
		BloodPressure:    v.BloodPressure,
		OxygenSaturation: v.OxygenSaturation,
		HeartRate:        v.HeartRate,
		Timestamp:        v.Timestamp,
	}
}

// ToSymptom maps a request payload.
func (s SymptomPayload) ToSymptom() domain.Symptom {
	return domain.Symptom{Description: s.Description, Severity: s.Severity, Timestamp: s.Timestamp}
}

// VitalsFromDomain maps a vitals sample.
func VitalsFromDomain(v domain.VitalSigns) VitalsPayload {
	return VitalsPayload{
		Temperature:      v.Temperature,
		BloodPressure:    v.BloodPressure,
		OxygenSaturation: v.OxygenSaturation,
		HeartRate:        v.HeartRate,
		Timestamp:        v.Timestamp,
	}
}

// SymptomFromDomain maps a symptom.
func SymptomFromDomain(s domain.Symptom) SymptomPayload {
	return SymptomPayload{Description: s.Description, Severity: s.Severity, Timestamp: s.Timestamp}
}

// PatientRecordFromDomain maps a patient record.
func PatientRecordFromDomain(r *domain.PatientRecord) PatientRecordResponse {
	out := PatientRecordResponse{
		Patient:  r.Patient,
		Vitals:   make([]VitalsPayload, 0, len(r.Vitals)),
		Symptoms: make([]SymptomPayload, 0, len(r.Symptoms)),
	}
	for _, v := range r.Vitals {
		out.Vitals = append(out.Vitals, VitalsFromDomain(v))
	}
	for _, s := range r.Symptoms {
		out.Symptoms = append(out.Symptoms, SymptomFromDomain(s))
	}
	return out
}
