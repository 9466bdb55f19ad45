package encounters

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps encounters in memory for tests and local dev.
// It enforces the same one-encounter-per-doctor-per-timestamp invariant as
// the database unique constraint.
type InMemoryRepository struct {
	mu         sync.RWMutex
	encounters []*Encounter
	reminders  []*Reminder
	feedback   []*Feedback
	slots      map[string]string // doctorID+unix -> encounterID
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{slots: make(map[string]string)}
}

func slotKey(doctorID string, at time.Time) string {
	return doctorID + "@" + at.UTC().Format(time.RFC3339)
}

// Create stores an encounter, rejecting doctor slot collisions.
func (r *InMemoryRepository) Create(ctx context.Context, e *Encounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusBooked
	}
	if e.PaymentStatus == "" {
		e.PaymentStatus = PaymentPending
	}
	if e.DoctorID != nil {
		key := slotKey(*e.DoctorID, e.VisitDate)
		if _, exists := r.slots[key]; exists {
			return ErrSlotConflict
		}
		r.slots[key] = e.ID
	}
	r.encounters = append(r.encounters, e)
	return nil
}

// Get retrieves an encounter by id.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.encounters {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrEncounterNotFound
}

// ListByPatient returns the patient's encounters newest first.
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID string) ([]*Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Encounter{}
	for _, e := range r.encounters {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	return out, nil
}

// SlotTaken reports whether the doctor holds the exact timestamp.
func (r *InMemoryRepository) SlotTaken(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.slots[slotKey(doctorID, at)]
	return taken, nil
}

// UpdatePaymentStatus overwrites the encounter's payment status.
func (r *InMemoryRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.encounters {
		if e.ID == id {
			e.PaymentStatus = status
			return nil
		}
	}
	return ErrEncounterNotFound
}

// ListFollowUpsBetween returns booked FU encounters in [from, to).
func (r *InMemoryRepository) ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]*Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Encounter{}
	for _, e := range r.encounters {
		if e.VisitType != VisitFU || e.Status != StatusBooked {
			continue
		}
		if e.VisitDate.Before(from) || !e.VisitDate.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.Before(out[j].VisitDate) })
	return out, nil
}

// ListUpcomingFollowUps returns the patient's booked FU encounters with
// visit dates at or after now, soonest first.
func (r *InMemoryRepository) ListUpcomingFollowUps(ctx context.Context, patientID string, now time.Time) ([]*Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Encounter{}
	for _, e := range r.encounters {
		if e.PatientID != patientID || e.VisitType != VisitFU || e.Status != StatusBooked {
			continue
		}
		if e.VisitDate.Before(now) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.Before(out[j].VisitDate) })
	return out, nil
}

// CreateReminder stores a reminder.
func (r *InMemoryRepository) CreateReminder(ctx context.Context, rem *Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rem.ID == "" {
		rem.ID = uuid.New().String()
	}
	if rem.CreatedAt.IsZero() {
		rem.CreatedAt = time.Now().UTC()
	}
	if rem.Method == "" {
		rem.Method = MethodCall
	}
	r.reminders = append(r.reminders, rem)
	return nil
}

// ListDueReminders returns reminders due at or before now with the health
// check still pending.
func (r *InMemoryRepository) ListDueReminders(ctx context.Context, now time.Time) ([]*Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Reminder{}
	for _, rem := range r.reminders {
		if rem.HealthCheckDone || rem.RemindAt.After(now) {
			continue
		}
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

// MarkHealthCheckDone flags a reminder's health check as completed.
func (r *InMemoryRepository) MarkHealthCheckDone(ctx context.Context, reminderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rem := range r.reminders {
		if rem.ID == reminderID {
			rem.HealthCheckDone = true
			return nil
		}
	}
	return ErrEncounterNotFound
}

// CreateFeedback stores feedback for an encounter.
func (r *InMemoryRepository) CreateFeedback(ctx context.Context, f *Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	r.feedback = append(r.feedback, f)
	return nil
}

// FeedbackByEncounter returns the newest feedback row, or nil when absent.
func (r *InMemoryRepository) FeedbackByEncounter(ctx context.Context, encounterID string) (*Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Feedback
	for _, f := range r.feedback {
		if f.EncounterID != encounterID {
			continue
		}
		if latest == nil || f.CreatedAt.After(latest.CreatedAt) {
			latest = f
		}
	}
	return latest, nil
}

var _ Repository = (*InMemoryRepository)(nil)
