package encounters

import (
	"context"
	"time"
)

// Repository persists encounters and their reminders and feedback.
// Create returns ErrSlotConflict when the doctor already holds the slot.
type Repository interface {
	Create(ctx context.Context, e *Encounter) error
	Get(ctx context.Context, id string) (*Encounter, error)
	// ListByPatient returns the patient's encounters newest first.
	ListByPatient(ctx context.Context, patientID string) ([]*Encounter, error)
	// SlotTaken reports whether the doctor has any encounter at the exact
	// timestamp.
	SlotTaken(ctx context.Context, doctorID string, at time.Time) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) error
	// ListFollowUpsBetween returns booked FU encounters with visit dates in
	// [from, to).
	ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]*Encounter, error)
	// ListUpcomingFollowUps returns the patient's booked FU encounters with
	// visit dates at or after now, soonest first.
	ListUpcomingFollowUps(ctx context.Context, patientID string, now time.Time) ([]*Encounter, error)

	CreateReminder(ctx context.Context, r *Reminder) error
	// ListDueReminders returns reminders with remind_at at or before now
	// whose health check is still pending.
	ListDueReminders(ctx context.Context, now time.Time) ([]*Reminder, error)
	MarkHealthCheckDone(ctx context.Context, reminderID string) error

	CreateFeedback(ctx context.Context, f *Feedback) error
	// FeedbackByEncounter returns nil, nil when no feedback exists.
	FeedbackByEncounter(ctx context.Context, encounterID string) (*Feedback, error)
}
