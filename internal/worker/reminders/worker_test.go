package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/encounters"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/patients"
	"github.com/careloop/frontdesk/pkg/logging"
)

type captureSender struct {
	sent []notify.EmailMessage
	err  error
}

func (c *captureSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

type fixture struct {
	worker  *Worker
	repo    *encounters.InMemoryRepository
	sender  *captureSender
	patient *patients.Patient
	doctor  *doctors.Doctor
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.New("error")

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

	repo := encounters.NewInMemoryRepository()
	sender := &captureSender{}
	notifier := notify.NewService(sender, nil, logger)

	w := NewWorker(repo, patientRepo, doctorRepo, notifier, logger)
	clock := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	w.SetClock(func() time.Time { return clock })

	return &fixture{worker: w, repo: repo, sender: sender, patient: patient, doctor: doctor, clock: clock}
}

func (f *fixture) seedEncounter(t *testing.T, visitType string, visitDate time.Time) *encounters.Encounter {
	t.Helper()
	enc := &encounters.Encounter{
		PatientID: f.patient.ID,
		DoctorID:  &f.doctor.ID,
		VisitType: visitType,
		VisitDate: visitDate,
		Reason:    "chest pain",
	}
	if err := f.repo.Create(context.Background(), enc); err != nil {
		t.Fatalf("seed encounter: %v", err)
	}
	return enc
}

func TestProcessDueMarksHealthCheckAndSends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc := f.seedEncounter(t, encounters.VisitOPD, f.clock.Add(20*time.Hour))
	if err := f.repo.CreateReminder(ctx, &encounters.Reminder{
		EncounterID:         enc.ID,
		RemindAt:            f.clock.Add(-time.Hour),
		Method:              encounters.MethodCall,
		HealthCheckRequired: true,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := f.worker.ProcessDue(ctx)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected one reminder email, got %d", len(f.sender.sent))
	}
	if f.sender.sent[0].Subject != "Reminder: Upcoming Appointment #"+enc.ID {
		t.Errorf("subject = %q", f.sender.sent[0].Subject)
	}

	due, err := f.repo.ListDueReminders(ctx, f.clock)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("reminder should no longer be due after processing")
	}
}

func TestProcessDueSkipsFutureReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc := f.seedEncounter(t, encounters.VisitOPD, f.clock.Add(72*time.Hour))
	if err := f.repo.CreateReminder(ctx, &encounters.Reminder{
		EncounterID: enc.ID,
		RemindAt:    f.clock.Add(48 * time.Hour),
		Method:      encounters.MethodCall,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := f.worker.ProcessDue(ctx)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 0 {
		t.Fatalf("processed = %d, want 0", n)
	}
}

func TestProcessDueSurvivesDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("smtp down")
	ctx := context.Background()

	enc := f.seedEncounter(t, encounters.VisitOPD, f.clock.Add(20*time.Hour))
	if err := f.repo.CreateReminder(ctx, &encounters.Reminder{
		EncounterID: enc.ID,
		RemindAt:    f.clock.Add(-time.Hour),
		Method:      encounters.MethodCall,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := f.worker.ProcessDue(ctx)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("delivery failure must not fail the batch, processed = %d", n)
	}
}

func TestProcessUpcomingFollowUps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inWindow := f.seedEncounter(t, encounters.VisitFU, f.clock.Add(3*24*time.Hour))
	f.seedEncounter(t, encounters.VisitFU, f.clock.Add(10*24*time.Hour))
	f.seedEncounter(t, encounters.VisitOPD, f.clock.Add(2*24*time.Hour))

	n, err := f.worker.ProcessUpcomingFollowUps(ctx)
	if err != nil {
		t.Fatalf("ProcessUpcomingFollowUps: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want only the follow-up inside the window", n)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.sender.sent))
	}
	want := "Reminder: Upcoming Follow-up Appointment #" + inWindow.ID
	if f.sender.sent[0].Subject != want {
		t.Errorf("subject = %q, want %q", f.sender.sent[0].Subject, want)
	}
}

func TestProcessUpcomingFollowUpsSkipsCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enc := f.seedEncounter(t, encounters.VisitFU, f.clock.Add(3*24*time.Hour))
	enc.Status = encounters.StatusCancelled

	n, err := f.worker.ProcessUpcomingFollowUps(ctx)
	if err != nil {
		t.Fatalf("ProcessUpcomingFollowUps: %v", err)
	}
	if n != 0 {
		t.Fatalf("processed = %d, want 0 for cancelled follow-up", n)
	}
}
