// Package doctors holds the read-mostly doctor roster.
package doctors

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDoctorNotFound is returned when a doctor is not found
var ErrDoctorNotFound = errors.New("doctor not found")

// Doctor is reference data: identity plus a specialization.
type Doctor struct {
	ID             string    `json:"doctor_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Specialization string    `json:"specialization"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisplayName renders the doctor's name for notifications.
func (d *Doctor) DisplayName() string {
	return "Dr. " + strings.TrimSpace(d.FirstName+" "+d.LastName)
}

// Repository defines the interface for doctor storage
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id string) (*Doctor, error)
	// FirstBySpecialization returns the earliest-registered doctor with the
	// given specialization (case-insensitive), or ErrDoctorNotFound.
	FirstBySpecialization(ctx context.Context, spec string) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
}

// InMemoryRepository keeps the roster in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	doctors []*Doctor
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Create adds a doctor to the roster, assigning an id when absent.
func (r *InMemoryRepository) Create(ctx context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	r.doctors = append(r.doctors, d)
	return nil
}

// GetByID retrieves a doctor by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.doctors {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, ErrDoctorNotFound
}

// FirstBySpecialization finds the first doctor matching the specialization.
func (r *InMemoryRepository) FirstBySpecialization(ctx context.Context, spec string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.doctors {
		if strings.EqualFold(d.Specialization, spec) {
			return d, nil
		}
	}
	return nil, ErrDoctorNotFound
}

// List returns the full roster in registration order.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Doctor, len(r.doctors))
	copy(out, r.doctors)
	return out, nil
}
