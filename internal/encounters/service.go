package encounters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/patients"
	"github.com/careloop/frontdesk/internal/records"
	"github.com/careloop/frontdesk/internal/scheduling"
	"github.com/careloop/frontdesk/pkg/logging"
)

var encountersTracer = otel.Tracer("frontdesk.internal.encounters")

// Notifier delivers best-effort patient emails. Failures are logged by the
// service and never propagated.
type Notifier interface {
	SendFollowUpConfirmation(ctx context.Context, m notify.FollowUpConfirmation) error
	SendFeedbackSummary(ctx context.Context, m notify.FeedbackSummary) error
}

// defaultReminderLead is how far before the visit the pre-visit call
// reminder fires when no override is configured.
const defaultReminderLead = 24 * time.Hour

// Service orchestrates the encounter lifecycle.
type Service struct {
	repo         Repository
	patients     patients.Repository
	doctors      doctors.Repository
	records      records.Reader
	allocator    *scheduling.Allocator
	notifier     Notifier
	logger       *logging.Logger
	reminderLead time.Duration
	now          func() time.Time
}

// NewService constructs an encounter service. notifier may be nil; emails
// are then skipped.
func NewService(repo Repository, patientRepo patients.Repository, doctorRepo doctors.Repository, recordReader records.Reader, allocator *scheduling.Allocator, notifier Notifier, logger *logging.Logger) *Service {
	if repo == nil {
		panic("encounters: repository required")
	}
	if allocator == nil {
		allocator = scheduling.NewAllocator(repo)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:         repo,
		patients:     patientRepo,
		doctors:      doctorRepo,
		records:      recordReader,
		allocator:    allocator,
		notifier:     notifier,
		logger:       logger,
		reminderLead: defaultReminderLead,
		now:          func() time.Time { return time.Now() },
	}
}

// SetReminderLead overrides how far before the visit the pre-visit reminder
// is scheduled. Non-positive values keep the default.
func (s *Service) SetReminderLead(d time.Duration) {
	if d > 0 {
		s.reminderLead = d
	}
}

// slot timestamps accepted from callers.
var slotLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func parseSlot(raw string) (time.Time, error) {
	for _, layout := range slotLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidSlot
}

// BookRequest carries the inputs for booking an encounter. DoctorID, Slot,
// VisitType and PreviousEncounterID are optional.
type BookRequest struct {
	PatientID           string
	DoctorID            string
	Slot                string
	Reason              string
	VisitType           string
	PreviousEncounterID string
}

// Book creates an encounter. An explicit slot is used verbatim; otherwise
// the next default slot for the doctor is taken. A reminder 24 hours before
// the visit is always scheduled; its failure does not undo the booking.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Encounter, error) {
	ctx, span := encountersTracer.Start(ctx, "encounters.book")
	defer span.End()
	span.SetAttributes(attribute.String("frontdesk.patient_id", req.PatientID))

	if _, err := s.patients.GetByID(ctx, req.PatientID); err != nil {
		return nil, err
	}

	var doctorID *string
	if req.DoctorID != "" {
		if _, err := s.doctors.GetByID(ctx, req.DoctorID); err != nil {
			return nil, err
		}
		doctorID = &req.DoctorID
	}

	var visitDate time.Time
	if req.Slot != "" {
		parsed, err := parseSlot(req.Slot)
		if err != nil {
			return nil, err
		}
		visitDate = parsed
	} else {
		slot, err := s.allocator.NextDefaultSlot(ctx, req.DoctorID, s.now())
		if err != nil {
			return nil, fmt.Errorf("encounters: default slot: %w", err)
		}
		visitDate = slot
	}

	visitType := strings.ToUpper(strings.TrimSpace(req.VisitType))
	if visitType == "" {
		visitType = VisitOPD
		if req.PreviousEncounterID != "" {
			visitType = VisitFU
		}
	}

	enc := &Encounter{
		PatientID:     req.PatientID,
		DoctorID:      doctorID,
		VisitType:     visitType,
		VisitDate:     visitDate,
		Status:        StatusBooked,
		Reason:        req.Reason,
		PaymentStatus: PaymentPending,
	}
	if err := s.repo.Create(ctx, enc); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.scheduleVisitReminder(ctx, enc)
	s.logger.Info("encounter booked",
		"encounter_id", enc.ID,
		"patient_id", enc.PatientID,
		"visit_type", enc.VisitType,
		"visit_date", enc.VisitDate,
	)
	return enc, nil
}

// scheduleVisitReminder attaches the standard pre-visit call reminder.
func (s *Service) scheduleVisitReminder(ctx context.Context, enc *Encounter) {
	rem := &Reminder{
		EncounterID:         enc.ID,
		RemindAt:            enc.VisitDate.Add(-s.reminderLead),
		Method:              MethodCall,
		HealthCheckRequired: true,
	}
	if err := s.repo.CreateReminder(ctx, rem); err != nil {
		s.logger.Error("reminder creation failed", "encounter_id", enc.ID, "error", err)
	}
}

// ScheduleFollowUp books a follow-up visit off a completed encounter. The
// origin encounter must carry a doctor. days is recorded as intent only;
// the slot comes from the default allocator.
func (s *Service) ScheduleFollowUp(ctx context.Context, originEncounterID string, days int, reason string) (*Encounter, error) {
	ctx, span := encountersTracer.Start(ctx, "encounters.schedule_follow_up")
	defer span.End()
	span.SetAttributes(attribute.String("frontdesk.origin_encounter_id", originEncounterID))

	origin, err := s.repo.Get(ctx, originEncounterID)
	if err != nil {
		return nil, err
	}
	if origin.DoctorID == nil {
		return nil, ErrNoDoctor
	}

	slot, err := s.allocator.NextDefaultSlot(ctx, *origin.DoctorID, s.now())
	if err != nil {
		return nil, fmt.Errorf("encounters: follow-up slot: %w", err)
	}

	if reason == "" {
		reason = "Follow-up consultation"
	}
	fu := &Encounter{
		PatientID:     origin.PatientID,
		DoctorID:      origin.DoctorID,
		VisitType:     VisitFU,
		VisitDate:     slot,
		Status:        StatusBooked,
		Reason:        reason,
		PaymentStatus: PaymentPending,
	}
	if err := s.repo.Create(ctx, fu); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.scheduleVisitReminder(ctx, fu)

	s.notifyFollowUp(ctx, fu)
	s.logger.Info("follow-up scheduled",
		"encounter_id", fu.ID,
		"origin_encounter_id", originEncounterID,
		"visit_date", fu.VisitDate,
	)
	return fu, nil
}

func (s *Service) notifyFollowUp(ctx context.Context, fu *Encounter) {
	if s.notifier == nil {
		return
	}
	patient, err := s.patients.GetByID(ctx, fu.PatientID)
	if err != nil || patient.Email == "" {
		return
	}
	msg := notify.FollowUpConfirmation{
		EncounterID:  fu.ID,
		PatientName:  patient.FullName(),
		PatientEmail: patient.Email,
		VisitDate:    fu.VisitDate,
		Reason:       fu.Reason,
	}
	if fu.DoctorID != nil {
		if doc, derr := s.doctors.GetByID(ctx, *fu.DoctorID); derr == nil {
			msg.DoctorName = doc.DisplayName()
			msg.Specialization = doc.Specialization
		}
	}
	if err := s.notifier.SendFollowUpConfirmation(ctx, msg); err != nil {
		s.logger.Warn("follow-up email failed", "encounter_id", fu.ID, "error", err)
	}
}

// ScheduleReminder attaches an extra reminder to an encounter. remindAt may
// be in the past; method defaults to CALL.
func (s *Service) ScheduleReminder(ctx context.Context, encounterID, remindAt, method string) (*Reminder, error) {
	ctx, span := encountersTracer.Start(ctx, "encounters.schedule_reminder")
	defer span.End()

	if _, err := s.repo.Get(ctx, encounterID); err != nil {
		return nil, err
	}
	at, err := parseSlot(remindAt)
	if err != nil {
		return nil, err
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = MethodCall
	}
	rem := &Reminder{
		EncounterID: encounterID,
		RemindAt:    at,
		Method:      method,
	}
	if err := s.repo.CreateReminder(ctx, rem); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rem, nil
}

// RecordFeedback stores post-visit feedback and best-effort mails the
// patient a visit summary.
func (s *Service) RecordFeedback(ctx context.Context, encounterID string, rating *int, comments *string, followUpRequired bool) (*Feedback, error) {
	ctx, span := encountersTracer.Start(ctx, "encounters.record_feedback")
	defer span.End()

	enc, err := s.repo.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	fb := &Feedback{
		EncounterID:      encounterID,
		Rating:           rating,
		Comments:         comments,
		FollowUpRequired: followUpRequired,
	}
	if err := s.repo.CreateFeedback(ctx, fb); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.notifier != nil {
		if patient, perr := s.patients.GetByID(ctx, enc.PatientID); perr == nil && patient.Email != "" {
			msg := notify.FeedbackSummary{
				EncounterID:  enc.ID,
				PatientName:  patient.FullName(),
				PatientEmail: patient.Email,
				VisitDate:    enc.VisitDate,
				Concern:      enc.Reason,
				Rating:       rating,
				Comments:     comments,
			}
			if enc.DoctorID != nil {
				if doc, derr := s.doctors.GetByID(ctx, *enc.DoctorID); derr == nil {
					msg.DoctorName = doc.DisplayName()
					msg.Specialization = doc.Specialization
				}
			}
			if serr := s.notifier.SendFeedbackSummary(ctx, msg); serr != nil {
				s.logger.Warn("feedback summary email failed", "encounter_id", encounterID, "error", serr)
			}
		}
	}
	return fb, nil
}

// UpdatePaymentStatus overwrites the encounter's payment status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, encounterID, status string) error {
	ctx, span := encountersTracer.Start(ctx, "encounters.update_payment_status")
	defer span.End()

	status = strings.TrimSpace(status)
	if status == "" {
		return ErrInvalidPaymentStatus
	}
	if err := s.repo.UpdatePaymentStatus(ctx, encounterID, status); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("payment status updated", "encounter_id", encounterID, "status", status)
	return nil
}

// Summary aggregates everything known about a visit.
type Summary struct {
	Encounter   *Encounter           `json:"encounter"`
	Patient     *patients.Patient    `json:"patient"`
	Doctor      *doctors.Doctor      `json:"doctor"`
	Medications []records.Medication `json:"medications"`
	Diagnoses   []records.Diagnosis  `json:"diagnoses"`
	Vitals      []records.Vital      `json:"vitals"`
	LabResults  []records.LabResult  `json:"lab_results"`
	Feedback    *Feedback            `json:"feedback"`
}

// VisitSummary collects the visit, its people and its clinical records.
// Missing sub-records are empty lists, never errors.
func (s *Service) VisitSummary(ctx context.Context, encounterID string) (*Summary, error) {
	ctx, span := encountersTracer.Start(ctx, "encounters.visit_summary")
	defer span.End()

	enc, err := s.repo.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	patient, err := s.patients.GetByID(ctx, enc.PatientID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Encounter:   enc,
		Patient:     patient,
		Medications: []records.Medication{},
		Diagnoses:   []records.Diagnosis{},
		Vitals:      []records.Vital{},
		LabResults:  []records.LabResult{},
	}
	if enc.DoctorID != nil {
		if doc, derr := s.doctors.GetByID(ctx, *enc.DoctorID); derr == nil {
			summary.Doctor = doc
		}
	}

	if s.records != nil {
		if meds, rerr := s.records.MedicationsByEncounter(ctx, encounterID); rerr == nil {
			summary.Medications = meds
		}
		if diags, rerr := s.records.DiagnosesByEncounter(ctx, encounterID); rerr == nil {
			summary.Diagnoses = diags
		}
		if vitals, rerr := s.records.VitalsByEncounter(ctx, encounterID); rerr == nil {
			summary.Vitals = vitals
		}
		if labs, rerr := s.records.LabResultsByEncounter(ctx, encounterID); rerr == nil {
			summary.LabResults = labs
		}
	}

	fb, ferr := s.repo.FeedbackByEncounter(ctx, encounterID)
	if ferr == nil {
		summary.Feedback = fb
	}
	return summary, nil
}

// Get exposes single-encounter lookup for callers outside the service.
func (s *Service) Get(ctx context.Context, encounterID string) (*Encounter, error) {
	return s.repo.Get(ctx, encounterID)
}

// UpcomingFollowUps returns the patient's booked follow-ups from now on,
// soonest first.
func (s *Service) UpcomingFollowUps(ctx context.Context, patientID string) ([]*Encounter, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListUpcomingFollowUps(ctx, patientID, s.now())
}

// History returns the patient's encounters newest first.
func (s *Service) History(ctx context.Context, patientID string) ([]*Encounter, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// SetClock overrides the time source used for slot math and reminders.
func (s *Service) SetClock(now func() time.Time) { s.now = now }
