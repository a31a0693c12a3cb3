package domain

import "time"

// MedicalFacility is a clinic, hospital or pharmacy listed in the locator.
type MedicalFacility struct {
	ID           int64
	Name         string
	FacilityType string
	Address      string
	Phone        string
	Latitude     float64
	Longitude    float64
	CreatedAt    time.Time
}
