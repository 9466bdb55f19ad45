// Package reminders is the batch side of the visit lifecycle: it works off
// due reminders and upcoming follow-ups. Designed to run once per invocation
// under cron.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/encounters"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/patients"
	"github.com/careloop/frontdesk/pkg/logging"
)

// followUpWindow is how far ahead the follow-up pass looks.
const followUpWindow = 7 * 24 * time.Hour

// Worker processes due reminders and upcoming follow-up nudges.
type Worker struct {
	repo     encounters.Repository
	patients patients.Repository
	doctors  doctors.Repository
	notifier *notify.Service
	logger   *logging.Logger
	now      func() time.Time
}

// NewWorker creates a reminder worker.
func NewWorker(repo encounters.Repository, patientRepo patients.Repository, doctorRepo doctors.Repository, notifier *notify.Service, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = notify.NewService(nil, nil, logger)
	}
	return &Worker{
		repo:     repo,
		patients: patientRepo,
		doctors:  doctorRepo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now() },
	}
}

// ProcessDue handles every reminder due at or before now: the health check
// is marked done and the patient is contacted. One failing reminder does not
// stop the batch. Returns the number processed.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	due, err := w.repo.ListDueReminders(ctx, w.now())
	if err != nil {
		return 0, fmt.Errorf("reminders worker: list due: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}
	w.logger.Info("reminders worker: processing due reminders", "count", len(due))

	processed := 0
	for _, rem := range due {
		if err := w.processOne(ctx, rem); err != nil {
			w.logger.Error("reminders worker: failed to process reminder", "id", rem.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (w *Worker) processOne(ctx context.Context, rem *encounters.Reminder) error {
	if err := w.repo.MarkHealthCheckDone(ctx, rem.ID); err != nil {
		return fmt.Errorf("mark health check done: %w", err)
	}

	enc, err := w.repo.Get(ctx, rem.EncounterID)
	if err != nil {
		return fmt.Errorf("load encounter: %w", err)
	}
	patient, err := w.patients.GetByID(ctx, enc.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}

	msg := notify.HealthCheckReminder{
		EncounterID:  enc.ID,
		PatientName:  patient.FullName(),
		PatientEmail: patient.Email,
		PatientPhone: patient.Phone,
		DoctorName:   "your doctor",
		VisitDate:    enc.VisitDate,
		Method:       rem.Method,
	}
	if enc.DoctorID != nil {
		if doc, derr := w.doctors.GetByID(ctx, *enc.DoctorID); derr == nil {
			msg.DoctorName = doc.DisplayName()
		}
	}
	if err := w.notifier.SendHealthCheckReminder(ctx, msg); err != nil {
		w.logger.Warn("reminders worker: delivery failed", "id", rem.ID, "error", err)
	}

	w.logger.Info("reminders worker: reminder processed", "id", rem.ID, "encounter_id", enc.ID, "method", rem.Method)
	return nil
}

// ProcessUpcomingFollowUps nudges patients about booked follow-up visits in
// the next seven days. Returns the number of encounters handled.
func (w *Worker) ProcessUpcomingFollowUps(ctx context.Context) (int, error) {
	now := w.now()
	upcoming, err := w.repo.ListFollowUpsBetween(ctx, now, now.Add(followUpWindow))
	if err != nil {
		return 0, fmt.Errorf("reminders worker: list follow-ups: %w", err)
	}
	if len(upcoming) == 0 {
		return 0, nil
	}
	w.logger.Info("reminders worker: processing upcoming follow-ups", "count", len(upcoming))

	processed := 0
	for _, enc := range upcoming {
		if err := w.remindFollowUp(ctx, enc); err != nil {
			w.logger.Error("reminders worker: follow-up nudge failed", "encounter_id", enc.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (w *Worker) remindFollowUp(ctx context.Context, enc *encounters.Encounter) error {
	patient, err := w.patients.GetByID(ctx, enc.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}

	msg := notify.FollowUpReminder{
		EncounterID:  enc.ID,
		PatientName:  patient.FullName(),
		PatientEmail: patient.Email,
		VisitDate:    enc.VisitDate,
		Reason:       enc.Reason,
	}
	if enc.DoctorID != nil {
		if doc, derr := w.doctors.GetByID(ctx, *enc.DoctorID); derr == nil {
			msg.DoctorName = doc.DisplayName()
			msg.Specialization = doc.Specialization
		}
	}
	if err := w.notifier.SendFollowUpReminder(ctx, msg); err != nil {
		return fmt.Errorf("send follow-up reminder: %w", err)
	}
	return nil
}

// SetClock overrides the worker time source.
func (w *Worker) SetClock(now func() time.Time) { w.now = now }
