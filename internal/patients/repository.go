package patients

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for patient storage
type Repository interface {
	Create(ctx context.Context, req *RegisterPatientRequest) (*Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
	GetByPhone(ctx context.Context, phone string) (*Patient, error)
}

// InMemoryRepository is a Repository backed by process memory, used in tests
// and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	patients map[string]*Patient
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{patients: make(map[string]*Patient)}
}

// Create registers a new patient in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *RegisterPatientRequest) (*Patient, error) {
	dob, err := req.Validate()
	if err != nil {
		return nil, err
	}

	p := &Patient{
		ID:         uuid.New().String(),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		DOB:        dob,
		Gender:     req.Gender,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		BloodGroup: req.BloodGroup,
		Allergies:  req.Allergies,
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.patients[p.ID] = p
	r.mu.Unlock()

	return p, nil
}

// GetByID retrieves a patient by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

// GetByPhone retrieves a patient by phone number.
func (r *InMemoryRepository) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var match *Patient
	for _, p := range r.patients {
		if p.Phone == phone {
			if match == nil || p.CreatedAt.Before(match.CreatedAt) {
				match = p
			}
		}
	}
	if match == nil {
		return nil, ErrPatientNotFound
	}
	return match, nil
}
