package records

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads clinical records from the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("records: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB allows injecting mocks for tests.
func NewPostgresStoreWithDB(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) MedicationsByEncounter(ctx context.Context, encounterID string) ([]Medication, error) {
	query := `
		SELECT name, dosage, frequency, start_date, end_date
		FROM medications WHERE encounter_id = $1 ORDER BY start_date
	`
	rows, err := s.db.Query(ctx, query, encounterID)
	if err != nil {
		return nil, fmt.Errorf("records: medications query: %w", err)
	}
	defer rows.Close()

	out := []Medication{}
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.Name, &m.Dosage, &m.Frequency, &m.StartDate, &m.EndDate); err != nil {
			return nil, fmt.Errorf("records: medications scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DiagnosesByEncounter(ctx context.Context, encounterID string) ([]Diagnosis, error) {
	query := `SELECT diagnosis_code, description FROM diagnoses WHERE encounter_id = $1`
	rows, err := s.db.Query(ctx, query, encounterID)
	if err != nil {
		return nil, fmt.Errorf("records: diagnoses query: %w", err)
	}
	defer rows.Close()

	out := []Diagnosis{}
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.Code, &d.Description); err != nil {
			return nil, fmt.Errorf("records: diagnoses scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) VitalsByEncounter(ctx context.Context, encounterID string) ([]Vital, error) {
	query := `
		SELECT temperature, heart_rate, blood_pressure, oxygen_saturation, recorded_at
		FROM vitals WHERE encounter_id = $1 ORDER BY recorded_at
	`
	rows, err := s.db.Query(ctx, query, encounterID)
	if err != nil {
		return nil, fmt.Errorf("records: vitals query: %w", err)
	}
	defer rows.Close()

	out := []Vital{}
	for rows.Next() {
		var v Vital
		if err := rows.Scan(&v.Temperature, &v.HeartRate, &v.BloodPressure, &v.OxygenSaturation, &v.RecordedAt); err != nil {
			return nil, fmt.Errorf("records: vitals scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const labColumns = `test_name, result_value, result_unit, reference_range, test_date`

func (s *PostgresStore) LabResultsByEncounter(ctx context.Context, encounterID string) ([]LabResult, error) {
	query := `SELECT ` + labColumns + ` FROM lab_results WHERE encounter_id = $1 ORDER BY test_date`
	return s.queryLabs(ctx, query, encounterID)
}

func (s *PostgresStore) LabResultsByPatient(ctx context.Context, patientID string) ([]LabResult, error) {
	query := `SELECT ` + labColumns + ` FROM lab_results WHERE patient_id = $1 ORDER BY test_date DESC`
	return s.queryLabs(ctx, query, patientID)
}

func (s *PostgresStore) queryLabs(ctx context.Context, query string, arg any) ([]LabResult, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("records: lab results query: %w", err)
	}
	defer rows.Close()

	out := []LabResult{}
	for rows.Next() {
		var l LabResult
		if err := rows.Scan(&l.TestName, &l.ResultValue, &l.ResultUnit, &l.ReferenceRange, &l.TestDate); err != nil {
			return nil, fmt.Errorf("records: lab results scan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

var _ Reader = (*PostgresStore)(nil)
