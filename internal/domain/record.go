package domain

import "time"

// VitalSigns is one self-reported vitals sample.
type VitalSigns struct {
	Temperature      float64
	BloodPressure    string
	OxygenSaturation int
	HeartRate        int
	Timestamp        time.Time
}

// Symptom is one self-reported symptom.
type Symptom struct {
	Description string
	Severity    int
	Timestamp   time.Time
}

// PatientRecord aggregates the health log of a patient.
type PatientRecord struct {
	Patient  string
	Vitals   []VitalSigns
	Symptoms []Symptom
}
