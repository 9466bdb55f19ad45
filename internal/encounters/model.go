// Package encounters orchestrates the visit lifecycle: booking, reminders,
// payment status, feedback and follow-ups.
package encounters

import "time"

// Visit types carried on an encounter.
const (
	VisitOPD  = "OPD"
	VisitIPD  = "IPD"
	VisitER   = "ER"
	VisitFU   = "FU"
	VisitTele = "TELE"
)

// Encounter statuses.
const (
	StatusBooked     = "BOOKED"
	StatusCheckedIn  = "CHECKED_IN"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// Payment statuses. Free-form overwrites are allowed; these are the values
// the system itself writes.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
)

// Reminder delivery methods.
const (
	MethodCall  = "CALL"
	MethodEmail = "EMAIL"
	MethodSMS   = "SMS"
)

// Encounter is a scheduled or completed visit. DoctorID is nil when no
// doctor was assigned at booking time.
type Encounter struct {
	ID            string    `json:"encounter_id"`
	PatientID     string    `json:"patient_id"`
	DoctorID      *string   `json:"doctor_id"`
	VisitType     string    `json:"visit_type"`
	VisitDate     time.Time `json:"visit_date"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Reminder is a scheduled pre-visit contact attempt.
type Reminder struct {
	ID                  string    `json:"reminder_id"`
	EncounterID         string    `json:"encounter_id"`
	RemindAt            time.Time `json:"remind_at"`
	Method              string    `json:"method"`
	HealthCheckRequired bool      `json:"health_check_required"`
	HealthCheckDone     bool      `json:"health_check_done"`
	CreatedAt           time.Time `json:"created_at"`
}

// Feedback is the post-visit patient response. Rating and Comments are
// nullable; absence is meaningful.
type Feedback struct {
	ID               string    `json:"feedback_id"`
	EncounterID      string    `json:"encounter_id"`
	Rating           *int      `json:"rating"`
	Comments         *string   `json:"comments"`
	FollowUpRequired bool      `json:"follow_up_required"`
	CreatedAt        time.Time `json:"created_at"`
}
