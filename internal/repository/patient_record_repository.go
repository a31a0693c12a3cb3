package repository

import (
	"context"

	"github.com/spec-kit/care-access/internal/domain"
)

// PatientRecordRepository stores self-reported vitals and symptoms.
type PatientRecordRepository interface {
	AppendVitals(ctx context.Context, patient string, vitals domain.VitalSigns) error
	AppendSymptom(ctx context.Context, patient string, symptom domain.Symptom) error
	// Get returns an empty record when nothing was logged yet.
	Get(ctx context.Context, patient string) (*domain.PatientRecord, error)
}

type patientRecordRepository struct {
	db querier
}

func (r *patientRecordRepository) AppendVitals(ctx context.Context, patient string, v domain.VitalSigns) error {
	const query = `
        INSERT INTO patient_vitals (patient, temperature, blood_pressure, oxygen_saturation, heart_rate, recorded_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.Exec(ctx, query, patient, v.Temperature, v.BloodPressure, v.OxygenSaturation, v.HeartRate, v.Timestamp)
	return err
}

func (r *patientRecordRepository) AppendSymptom(ctx context.Context, patient string, s domain.Symptom) error {
	const query = `
        INSERT INTO patient_symptoms (patient, description, severity, recorded_at)
        VALUES ($1,$2,$3,$4)`
	_, err := r.db.Exec(ctx, query, patient, s.Description, s.Severity, s.Timestamp)
	return err
}

func (r *patientRecordRepository) Get(ctx context.Context, patient string) (*domain.PatientRecord, error) {
	record := &domain.PatientRecord{Patient: patient}

	vitalsRows, err := r.db.Query(ctx, `
        SELECT temperature, blood_pressure, oxygen_saturation, heart_rate, recorded_at
        FROM patient_vitals WHERE patient=$1 ORDER BY recorded_at ASC, id ASC`, patient)
	if err != nil {
		return nil, err
	}
	for vitalsRows.Next() {
		var v domain.VitalSigns
		if err := vitalsRows.Scan(&v.Temperature, &v.BloodPressure, &v.OxygenSaturation, &v.HeartRate, &v.Timestamp); err != nil {
			vitalsRows.Close()
			return nil, err
		}
		record.Vitals = append(record.Vitals, v)
	}
	vitalsRows.Close()
	if err := vitalsRows.Err(); err != nil {
		return nil, err
	}

	symptomRows, err := r.db.Query(ctx, `
        SELECT description, severity, recorded_at
        FROM patient_symptoms WHERE patient=$1 ORDER BY recorded_at ASC, id ASC`, patient)
	if err != nil {
		return nil, err
	}
	defer symptomRows.Close()
	for symptomRows.Next() {
		var s domain.Symptom
		if err := symptomRows.Scan(&s.Description, &s.Severity, &s.Timestamp); err != nil {
			return nil, err
		}
		record.Symptoms = append(record.Symptoms, s)
	}
	return record, symptomRows.Err()
}
