// Package records exposes read-only access to clinical sub-records. The
// front desk aggregates these for visit summaries and lab reports but never
// mutates them; they are written by clinical systems outside this service.
package records

import (
	"context"
	"time"
)

type Medication struct {
	Name      string     `json:"name"`
	Dosage    string     `json:"dosage"`
	Frequency string     `json:"frequency"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type Diagnosis struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type Vital struct {
	Temperature      float64   `json:"temperature"`
	HeartRate        int       `json:"heart_rate"`
	BloodPressure    string    `json:"blood_pressure"`
	OxygenSaturation int       `json:"oxygen_saturation"`
	RecordedAt       time.Time `json:"recorded_at"`
}

type LabResult struct {
	TestName       string    `json:"test_name"`
	ResultValue    string    `json:"result_value"`
	ResultUnit     string    `json:"result_unit"`
	ReferenceRange string    `json:"reference_range"`
	TestDate       time.Time `json:"test_date"`
}

// Reader aggregates clinical records per encounter or patient. Absent data
// yields empty slices, never errors.
type Reader interface {
	MedicationsByEncounter(ctx context.Context, encounterID string) ([]Medication, error)
	DiagnosesByEncounter(ctx context.Context, encounterID string) ([]Diagnosis, error)
	VitalsByEncounter(ctx context.Context, encounterID string) ([]Vital, error)
	LabResultsByEncounter(ctx context.Context, encounterID string) ([]LabResult, error)
	// LabResultsByPatient returns results newest first.
	LabResultsByPatient(ctx context.Context, patientID string) ([]LabResult, error)
}
