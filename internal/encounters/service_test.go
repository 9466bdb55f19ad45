package encounters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/patients"
	"github.com/careloop/frontdesk/internal/records"
	"github.com/careloop/frontdesk/pkg/logging"
)

type stubNotifier struct {
	followUps int
	summaries int
	err       error
}

func (n *stubNotifier) SendFollowUpConfirmation(ctx context.Context, m notify.FollowUpConfirmation) error {
	n.followUps++
	return n.err
}

func (n *stubNotifier) SendFeedbackSummary(ctx context.Context, m notify.FeedbackSummary) error {
	n.summaries++
	return n.err
}

type fixture struct {
	svc      *Service
	repo     *InMemoryRepository
	notifier *stubNotifier
	patient  *patients.Patient
	doctor   *doctors.Doctor
	records  *records.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patientRepo := patients.NewInMemoryRepository()
	patient, err := patientRepo.Create(context.Background(), &patients.RegisterPatientRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		DOB:       "1990-04-12",
		Gender:    "F",
		Phone:     "+91-9000000001",
		Email:     "asha@example.com",
	})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	doctorRepo := doctors.NewInMemoryRepository()
	doctor := &doctors.Doctor{FirstName: "Ravi", LastName: "Iyer", Specialization: "Cardiology"}
	if err := doctorRepo.Create(context.Background(), doctor); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	repo := NewInMemoryRepository()
	notifier := &stubNotifier{}
	store := records.NewInMemoryStore()
	svc := NewService(repo, patientRepo, doctorRepo, store, nil, notifier, logging.New("error"))
	svc.SetClock(func() time.Time {
		return time.Date(2026, time.March, 2, 10, 15, 0, 0, time.UTC) // Monday
	})
	return &fixture{svc: svc, repo: repo, notifier: notifier, patient: patient, doctor: doctor, records: store}
}

func TestBookDefaultSlotAndReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Reason: "chest pain"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	wantSlot := time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC)
	if !enc.VisitDate.Equal(wantSlot) {
		t.Errorf("visit date = %s, want %s", enc.VisitDate, wantSlot)
	}
	if enc.VisitType != VisitOPD {
		t.Errorf("visit type = %s, want OPD", enc.VisitType)
	}
	if enc.Status != StatusBooked || enc.PaymentStatus != PaymentPending {
		t.Errorf("defaults not applied: status=%s payment=%s", enc.Status, enc.PaymentStatus)
	}

	due, err := f.repo.ListDueReminders(ctx, enc.VisitDate)
	if err != nil {
		t.Fatalf("ListDueReminders: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected exactly one reminder, got %d", len(due))
	}
	rem := due[0]
	if !rem.RemindAt.Equal(enc.VisitDate.Add(-24 * time.Hour)) {
		t.Errorf("remind_at = %s, want visit minus 24h", rem.RemindAt)
	}
	if rem.Method != MethodCall || !rem.HealthCheckRequired || rem.HealthCheckDone {
		t.Errorf("reminder defaults wrong: %+v", rem)
	}
}

func TestBookHonorsConfiguredReminderLead(t *testing.T) {
	f := newFixture(t)
	f.svc.SetReminderLead(48 * time.Hour)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Reason: "chest pain"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	due, err := f.repo.ListDueReminders(ctx, enc.VisitDate)
	if err != nil {
		t.Fatalf("ListDueReminders: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected exactly one reminder, got %d", len(due))
	}
	if !due[0].RemindAt.Equal(enc.VisitDate.Add(-48 * time.Hour)) {
		t.Errorf("remind_at = %s, want visit minus 48h", due[0].RemindAt)
	}
}

func TestSetReminderLeadIgnoresNonPositive(t *testing.T) {
	f := newFixture(t)
	f.svc.SetReminderLead(0)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	due, err := f.repo.ListDueReminders(ctx, enc.VisitDate)
	if err != nil {
		t.Fatalf("ListDueReminders: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected exactly one reminder, got %d", len(due))
	}
	if !due[0].RemindAt.Equal(enc.VisitDate.Add(-24 * time.Hour)) {
		t.Errorf("remind_at = %s, want default visit minus 24h", due[0].RemindAt)
	}
}

func TestBookExplicitSlotVerbatim(t *testing.T) {
	f := newFixture(t)

	enc, err := f.svc.Book(context.Background(), BookRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Slot:      "2026-03-10T14:00:00",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	want := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)
	if !enc.VisitDate.Equal(want) {
		t.Errorf("visit date = %s, want explicit slot %s", enc.VisitDate, want)
	}
}

func TestBookMalformedSlot(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), BookRequest{
		PatientID: f.patient.ID,
		Slot:      "next tuesday",
	})
	if !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestBookFollowUpTypeWhenPreviousReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	second, err := f.svc.Book(ctx, BookRequest{
		PatientID:           f.patient.ID,
		DoctorID:            f.doctor.ID,
		Slot:                "2026-03-12T09:00:00",
		PreviousEncounterID: first.ID,
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if second.VisitType != VisitFU {
		t.Errorf("visit type = %s, want FU", second.VisitType)
	}
}

func TestBookSlotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := "2026-03-10T14:00:00"

	if _, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Slot: slot}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Slot: slot})
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}

func TestBookSameSlotDifferentDoctors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &doctors.Doctor{FirstName: "Meera", LastName: "Nair", Specialization: "ENT"}
	doctorRepo := doctors.NewInMemoryRepository()
	if err := doctorRepo.Create(ctx, f.doctor); err != nil {
		t.Fatal(err)
	}
	if err := doctorRepo.Create(ctx, other); err != nil {
		t.Fatal(err)
	}
	f.svc.doctors = doctorRepo

	slot := "2026-03-10T14:00:00"
	if _, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Slot: slot}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: other.ID, Slot: slot}); err != nil {
		t.Fatalf("second doctor same slot should succeed: %v", err)
	}
}

type reminderFailRepo struct {
	*InMemoryRepository
}

func (r *reminderFailRepo) CreateReminder(ctx context.Context, rem *Reminder) error {
	return errors.New("reminders table down")
}

func TestBookSurvivesReminderFailure(t *testing.T) {
	f := newFixture(t)
	failing := &reminderFailRepo{f.repo}
	svc := NewService(failing, f.svc.patients, f.svc.doctors, f.records, nil, f.notifier, logging.New("error"))
	svc.SetClock(f.svc.now)

	enc, err := svc.Book(context.Background(), BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID})
	if err != nil {
		t.Fatalf("Book should survive reminder failure: %v", err)
	}
	if _, err := f.repo.Get(context.Background(), enc.ID); err != nil {
		t.Fatalf("encounter not persisted: %v", err)
	}
}

func TestScheduleFollowUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	origin, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Slot: "2026-02-20T10:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	fu, err := f.svc.ScheduleFollowUp(ctx, origin.ID, 30, "")
	if err != nil {
		t.Fatalf("ScheduleFollowUp: %v", err)
	}
	if fu.VisitType != VisitFU {
		t.Errorf("visit type = %s, want FU", fu.VisitType)
	}
	if fu.DoctorID == nil || *fu.DoctorID != f.doctor.ID {
		t.Errorf("follow-up should inherit the origin doctor")
	}
	// days does not move the slot: the default allocator decides.
	want := time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC)
	if !fu.VisitDate.Equal(want) {
		t.Errorf("follow-up slot = %s, want default %s", fu.VisitDate, want)
	}
	if fu.Reason != "Follow-up consultation" {
		t.Errorf("reason = %q, want default", fu.Reason)
	}
	if f.notifier.followUps != 1 {
		t.Errorf("expected one follow-up confirmation email, got %d", f.notifier.followUps)
	}
}

func TestScheduleFollowUpRequiresDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	origin, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-02-20T10:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	_, err = f.svc.ScheduleFollowUp(ctx, origin.ID, 14, "review")
	if !errors.Is(err, ErrNoDoctor) {
		t.Fatalf("expected ErrNoDoctor, got %v", err)
	}

	history, err := f.svc.History(ctx, f.patient.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("no follow-up should be written, have %d encounters", len(history))
	}
}

func TestScheduleReminderDefaultsMethod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-03-10T14:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	rem, err := f.svc.ScheduleReminder(ctx, enc.ID, "2026-03-09T09:00:00Z", "")
	if err != nil {
		t.Fatalf("ScheduleReminder: %v", err)
	}
	if rem.Method != MethodCall {
		t.Errorf("method = %s, want CALL default", rem.Method)
	}

	if _, err := f.svc.ScheduleReminder(ctx, enc.ID, "soonish", MethodEmail); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot for malformed remind_at, got %v", err)
	}
	if _, err := f.svc.ScheduleReminder(ctx, "missing", "2026-03-09T09:00:00Z", ""); !errors.Is(err, ErrEncounterNotFound) {
		t.Errorf("expected ErrEncounterNotFound, got %v", err)
	}
}

func TestRecordFeedbackSendsSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-03-10T14:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	rating := 4
	comments := "quick and friendly"
	fb, err := f.svc.RecordFeedback(ctx, enc.ID, &rating, &comments, true)
	if err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}
	if fb.Rating == nil || *fb.Rating != 4 || !fb.FollowUpRequired {
		t.Errorf("feedback not stored faithfully: %+v", fb)
	}
	if f.notifier.summaries != 1 {
		t.Errorf("expected one summary email, got %d", f.notifier.summaries)
	}
}

func TestRecordFeedbackSurvivesEmailFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-03-10T14:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := f.svc.RecordFeedback(ctx, enc.ID, nil, nil, false); err != nil {
		t.Fatalf("feedback write must not fail on email error: %v", err)
	}
	fb, err := f.repo.FeedbackByEncounter(ctx, enc.ID)
	if err != nil || fb == nil {
		t.Fatalf("feedback not persisted: fb=%v err=%v", fb, err)
	}
	if fb.Rating != nil || fb.Comments != nil {
		t.Errorf("nil rating and comments should stay nil: %+v", fb)
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-03-10T14:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := f.svc.UpdatePaymentStatus(ctx, enc.ID, PaymentPaid); err != nil {
		t.Fatalf("UpdatePaymentStatus: %v", err)
	}
	got, err := f.svc.Get(ctx, enc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PaymentStatus != PaymentPaid {
		t.Errorf("payment status = %s, want PAID", got.PaymentStatus)
	}

	if err := f.svc.UpdatePaymentStatus(ctx, enc.ID, "  "); !errors.Is(err, ErrInvalidPaymentStatus) {
		t.Errorf("expected ErrInvalidPaymentStatus for blank status, got %v", err)
	}
	if err := f.svc.UpdatePaymentStatus(ctx, "missing", PaymentPaid); !errors.Is(err, ErrEncounterNotFound) {
		t.Errorf("expected ErrEncounterNotFound, got %v", err)
	}
}

func TestVisitSummaryAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Slot: "2026-03-10T14:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	f.records.AddMedication(enc.ID, records.Medication{Name: "Aspirin", Dosage: "75mg", Frequency: "daily"})
	f.records.AddDiagnosis(enc.ID, records.Diagnosis{Code: "I20", Description: "Angina pectoris"})
	rating := 5
	if _, err := f.svc.RecordFeedback(ctx, enc.ID, &rating, nil, false); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}

	summary, err := f.svc.VisitSummary(ctx, enc.ID)
	if err != nil {
		t.Fatalf("VisitSummary: %v", err)
	}
	if summary.Patient.ID != f.patient.ID {
		t.Errorf("summary patient = %s, want %s", summary.Patient.ID, f.patient.ID)
	}
	if summary.Doctor == nil || summary.Doctor.ID != f.doctor.ID {
		t.Errorf("summary doctor missing")
	}
	if len(summary.Medications) != 1 || len(summary.Diagnoses) != 1 {
		t.Errorf("clinical records missing: %+v", summary)
	}
	if summary.Vitals == nil || summary.LabResults == nil {
		t.Errorf("absent record sets must be empty lists, not nil")
	}
	if summary.Feedback == nil || summary.Feedback.Rating == nil || *summary.Feedback.Rating != 5 {
		t.Errorf("summary feedback missing: %+v", summary.Feedback)
	}
}

func TestVisitSummaryWithoutFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-03-10T14:00:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	summary, err := f.svc.VisitSummary(ctx, enc.ID)
	if err != nil {
		t.Fatalf("VisitSummary: %v", err)
	}
	if summary.Feedback != nil {
		t.Errorf("feedback should be null when none recorded")
	}
	if summary.Doctor != nil {
		t.Errorf("doctor should be null when none assigned")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-01-05T10:00:00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-03-01T10:00:00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Book(ctx, BookRequest{PatientID: f.patient.ID, Slot: "2026-02-10T10:00:00"}); err != nil {
		t.Fatal(err)
	}

	history, err := f.svc.History(ctx, f.patient.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d encounters, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i-1].VisitDate.Before(history[i].VisitDate) {
			t.Errorf("history out of order at %d", i)
		}
	}
	if _, err := f.svc.History(ctx, "nobody"); !errors.Is(err, patients.ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}
