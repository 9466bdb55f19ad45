package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new patient row.
func (r *PostgresRepository) Create(ctx context.Context, req *RegisterPatientRequest) (*Patient, error) {
	dob, err := req.Validate()
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO patients (id, first_name, last_name, dob, gender, email, phone, address, blood_group, allergies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.FirstName,
		req.LastName,
		dob,
		req.Gender,
		req.Email,
		req.Phone,
		req.Address,
		req.BloodGroup,
		req.Allergies,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("patients: insert failed: %w", err)
	}

	return &Patient{
		ID:         id.String(),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		DOB:        dob,
		Gender:     req.Gender,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		BloodGroup: req.BloodGroup,
		Allergies:  req.Allergies,
		CreatedAt:  createdAt,
	}, nil
}

const patientColumns = `id, first_name, last_name, dob, gender, email, phone, address, blood_group, allergies, created_at`

// GetByID fetches a patient by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByPhone fetches the earliest-registered patient with the phone number.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE phone = $1 ORDER BY created_at LIMIT 1`
	return r.scanOne(r.db.QueryRow(ctx, query, phone))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.DOB,
		&p.Gender,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.BloodGroup,
		&p.Allergies,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return &p, nil
}

var _ Repository = (*PostgresRepository)(nil)
var _ Repository = (*InMemoryRepository)(nil)
