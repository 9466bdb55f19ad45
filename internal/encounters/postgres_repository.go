package encounters

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

// PostgresRepository stores encounters, reminders and feedback in the
// relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("encounters: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const encounterColumns = `id, patient_id, doctor_id, visit_type, visit_date, status, reason, payment_status, created_at`

// uniqueViolation is the Postgres error code raised by the
// encounters(doctor_id, visit_date) unique constraint.
const uniqueViolation = "23505"

// Create inserts an encounter. A unique-constraint violation on the doctor
// slot comes back as ErrSlotConflict.
func (r *PostgresRepository) Create(ctx context.Context, e *Encounter) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = StatusBooked
	}
	if e.PaymentStatus == "" {
		e.PaymentStatus = PaymentPending
	}

	query := `
		INSERT INTO encounters (id, patient_id, doctor_id, visit_type, visit_date, status, reason, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		e.ID, e.PatientID, e.DoctorID, e.VisitType, e.VisitDate, e.Status, e.Reason, e.PaymentStatus,
	).Scan(&e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotConflict
		}
		return fmt.Errorf("encounters: insert failed: %w", err)
	}
	return nil
}

// Get retrieves an encounter by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Encounter, error) {
	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// ListByPatient returns the patient's encounters newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]*Encounter, error) {
	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE patient_id = $1 ORDER BY visit_date DESC`
	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("encounters: list by patient failed: %w", err)
	}
	defer rows.Close()
	return scanEncounters(rows)
}

// SlotTaken reports whether the doctor has an encounter at the exact time.
func (r *PostgresRepository) SlotTaken(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM encounters WHERE doctor_id = $1 AND visit_date = $2)`
	var taken bool
	if err := r.db.QueryRow(ctx, query, doctorID, at).Scan(&taken); err != nil {
		return false, fmt.Errorf("encounters: slot check failed: %w", err)
	}
	return taken, nil
}

// UpdatePaymentStatus overwrites the encounter's payment status.
func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE encounters SET payment_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("encounters: payment update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEncounterNotFound
	}
	return nil
}

// ListFollowUpsBetween returns booked FU encounters in [from, to).
func (r *PostgresRepository) ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]*Encounter, error) {
	query := `
		SELECT ` + encounterColumns + `
		FROM encounters
		WHERE visit_type = $1 AND status = $2 AND visit_date >= $3 AND visit_date < $4
		ORDER BY visit_date
	`
	rows, err := r.db.Query(ctx, query, VisitFU, StatusBooked, from, to)
	if err != nil {
		return nil, fmt.Errorf("encounters: follow-up list failed: %w", err)
	}
	defer rows.Close()
	return scanEncounters(rows)
}

// ListUpcomingFollowUps returns the patient's booked FU encounters with
// visit dates at or after now, soonest first.
func (r *PostgresRepository) ListUpcomingFollowUps(ctx context.Context, patientID string, now time.Time) ([]*Encounter, error) {
	query := `
		SELECT ` + encounterColumns + `
		FROM encounters
		WHERE patient_id = $1 AND visit_type = $2 AND status = $3 AND visit_date >= $4
		ORDER BY visit_date
	`
	rows, err := r.db.Query(ctx, query, patientID, VisitFU, StatusBooked, now)
	if err != nil {
		return nil, fmt.Errorf("encounters: upcoming follow-ups failed: %w", err)
	}
	defer rows.Close()
	return scanEncounters(rows)
}

// CreateReminder inserts a reminder row.
func (r *PostgresRepository) CreateReminder(ctx context.Context, rem *Reminder) error {
	if rem.ID == "" {
		rem.ID = uuid.New().String()
	}
	if rem.Method == "" {
		rem.Method = MethodCall
	}
	query := `
		INSERT INTO reminders (id, encounter_id, remind_at, method, health_check_required, health_check_done)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		rem.ID, rem.EncounterID, rem.RemindAt, rem.Method, rem.HealthCheckRequired, rem.HealthCheckDone,
	).Scan(&rem.CreatedAt)
	if err != nil {
		return fmt.Errorf("encounters: reminder insert failed: %w", err)
	}
	return nil
}

// ListDueReminders returns reminders due at or before now whose health check
// is still pending.
func (r *PostgresRepository) ListDueReminders(ctx context.Context, now time.Time) ([]*Reminder, error) {
	query := `
		SELECT id, encounter_id, remind_at, method, health_check_required, health_check_done, created_at
		FROM reminders
		WHERE remind_at <= $1 AND health_check_done = FALSE
		ORDER BY remind_at
	`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("encounters: due reminders query failed: %w", err)
	}
	defer rows.Close()

	out := []*Reminder{}
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.EncounterID, &rem.RemindAt, &rem.Method, &rem.HealthCheckRequired, &rem.HealthCheckDone, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("encounters: reminder scan failed: %w", err)
		}
		out = append(out, &rem)
	}
	return out, rows.Err()
}

// MarkHealthCheckDone flags a reminder's health check as completed.
func (r *PostgresRepository) MarkHealthCheckDone(ctx context.Context, reminderID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE reminders SET health_check_done = TRUE WHERE id = $1`, reminderID)
	if err != nil {
		return fmt.Errorf("encounters: health check update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEncounterNotFound
	}
	return nil
}

// CreateFeedback inserts a feedback row.
func (r *PostgresRepository) CreateFeedback(ctx context.Context, f *Feedback) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	query := `
		INSERT INTO feedback (id, encounter_id, rating, comments, follow_up_required)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		f.ID, f.EncounterID, f.Rating, f.Comments, f.FollowUpRequired,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("encounters: feedback insert failed: %w", err)
	}
	return nil
}

// FeedbackByEncounter returns the newest feedback row, or nil when absent.
func (r *PostgresRepository) FeedbackByEncounter(ctx context.Context, encounterID string) (*Feedback, error) {
	query := `
		SELECT id, encounter_id, rating, comments, follow_up_required, created_at
		FROM feedback
		WHERE encounter_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var f Feedback
	err := r.db.QueryRow(ctx, query, encounterID).Scan(
		&f.ID, &f.EncounterID, &f.Rating, &f.Comments, &f.FollowUpRequired, &f.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("encounters: feedback query failed: %w", err)
	}
	return &f, nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.PatientID, &e.DoctorID, &e.VisitType, &e.VisitDate, &e.Status, &e.Reason, &e.PaymentStatus, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEncounterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("encounters: scan failed: %w", err)
	}
	return &e, nil
}

func scanEncounters(rows pgx.Rows) ([]*Encounter, error) {
	out := []*Encounter{}
	for rows.Next() {
		var e Encounter
		if err := rows.Scan(&e.ID, &e.PatientID, &e.DoctorID, &e.VisitType, &e.VisitDate, &e.Status, &e.Reason, &e.PaymentStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("encounters: scan failed: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)
