package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careloop/frontdesk/pkg/logging"
)

// BookingConfirmation carries everything the confirmation email mentions.
type BookingConfirmation struct {
	EncounterID    string
	PatientName    string
	PatientEmail   string
	DoctorName     string
	Specialization string
	VisitDate      time.Time
	VisitType      string
	Concern        string
	PaymentStatus  string
}

// FeedbackSummary carries the post-visit summary email fields.
type FeedbackSummary struct {
	EncounterID    string
	PatientName    string
	PatientEmail   string
	DoctorName     string
	Specialization string
	VisitDate      time.Time
	Concern        string
	Rating         *int
	Comments       *string
}

// FollowUpConfirmation carries the follow-up scheduling email fields.
type FollowUpConfirmation struct {
	EncounterID    string
	PatientName    string
	PatientEmail   string
	DoctorName     string
	Specialization string
	VisitDate      time.Time
	Reason         string
}

// HealthCheckReminder is the due-reminder message sent by the batch worker.
type HealthCheckReminder struct {
	EncounterID  string
	PatientName  string
	PatientEmail string
	PatientPhone string
	DoctorName   string
	VisitDate    time.Time
	Method       string
}

// FollowUpReminder is the upcoming-follow-up message sent by the batch worker.
type FollowUpReminder struct {
	EncounterID    string
	PatientName    string
	PatientEmail   string
	DoctorName     string
	Specialization string
	VisitDate      time.Time
	Reason         string
}

// Service composes and delivers all patient-facing messages.
type Service struct {
	email  EmailSender
	dialer CallDialer
	logger *logging.Logger
}

// NewService creates a notification service. A nil sender falls back to the
// stub so sends never panic.
func NewService(email EmailSender, dialer CallDialer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	if dialer == nil {
		dialer = NewLogCallDialer(logger)
	}
	return &Service{email: email, dialer: dialer, logger: logger}
}

const visitTimeLayout = "2006-01-02 15:04"

func visitTypeLabel(visitType string) string {
	if visitType == "FU" {
		return "Follow-up Visit"
	}
	return "New Outpatient Visit"
}

// SendBookingConfirmation mails the appointment confirmation.
func (s *Service) SendBookingConfirmation(ctx context.Context, m BookingConfirmation) error {
	body := strings.TrimSpace(fmt.Sprintf(`
Dear %s,

Your appointment has been confirmed with the following details:

Appointment ID: %s
Doctor: %s (%s)
Date & Time: %s
Type: %s
Concern: %s

Please arrive 15 minutes early for registration.

Payment Status: %s

If you need to reschedule or cancel, please contact us at least 24 hours in advance.

Thank you for choosing our hospital.

Best regards,
Hospital Administration`,
		m.PatientName, m.EncounterID, m.DoctorName, m.Specialization,
		m.VisitDate.Format(visitTimeLayout), visitTypeLabel(m.VisitType),
		m.Concern, m.PaymentStatus))

	return s.email.Send(ctx, EmailMessage{
		To:      m.PatientEmail,
		ToName:  m.PatientName,
		Subject: fmt.Sprintf("Hospital Appointment Confirmation - OP#%s", m.EncounterID),
		Body:    body,
	})
}

// SendFeedbackSummary mails the post-visit summary with the patient's own
// feedback echoed back.
func (s *Service) SendFeedbackSummary(ctx context.Context, m FeedbackSummary) error {
	rating := "None provided"
	if m.Rating != nil {
		rating = fmt.Sprintf("%d/5", *m.Rating)
	}
	comments := "None provided"
	if m.Comments != nil && *m.Comments != "" {
		comments = *m.Comments
	}

	body := strings.TrimSpace(fmt.Sprintf(`
Dear %s,

Thank you for visiting our hospital. Here's a summary of your visit:

Appointment ID: %s
Doctor: %s (%s)
Date & Time: %s
Concern: %s

Your Feedback:
Rating: %s
Comments: %s

We'll follow up with you shortly if needed.

Best regards,
Hospital Administration`,
		m.PatientName, m.EncounterID, m.DoctorName, m.Specialization,
		m.VisitDate.Format(visitTimeLayout), m.Concern, rating, comments))

	return s.email.Send(ctx, EmailMessage{
		To:      m.PatientEmail,
		ToName:  m.PatientName,
		Subject: fmt.Sprintf("Visit Summary - Appointment #%s", m.EncounterID),
		Body:    body,
	})
}

// SendFollowUpConfirmation mails the follow-up scheduling notice.
func (s *Service) SendFollowUpConfirmation(ctx context.Context, m FollowUpConfirmation) error {
	body := strings.TrimSpace(fmt.Sprintf(`
Dear %s,

A follow-up appointment has been scheduled for you:

Appointment ID: %s
Doctor: %s (%s)
Date & Time: %s
Reason: %s

Please confirm your attendance.

Best regards,
Hospital Administration`,
		m.PatientName, m.EncounterID, m.DoctorName, m.Specialization,
		m.VisitDate.Format(visitTimeLayout), m.Reason))

	return s.email.Send(ctx, EmailMessage{
		To:      m.PatientEmail,
		ToName:  m.PatientName,
		Subject: fmt.Sprintf("Follow-up Appointment Scheduled - #%s", m.EncounterID),
		Body:    body,
	})
}

// SendHealthCheckReminder delivers a due reminder. CALL reminders go through
// the dialer; an email copy goes out whenever the patient has an address.
func (s *Service) SendHealthCheckReminder(ctx context.Context, m HealthCheckReminder) error {
	body := strings.TrimSpace(fmt.Sprintf(`
Health Check Reminder

Dear %s,

This is a reminder for your upcoming appointment:

Appointment ID: %s
Doctor: %s
Date & Time: %s

Please confirm your attendance and let us know if you have any health concerns before the visit.

Contact us if you need to reschedule.

Best regards,
Hospital Administration`,
		m.PatientName, m.EncounterID, m.DoctorName, m.VisitDate.Format(visitTimeLayout)))

	if m.Method == "CALL" && m.PatientPhone != "" {
		if err := s.dialer.Dial(ctx, m.PatientPhone, body); err != nil {
			s.logger.Warn("reminder call failed", "encounter_id", m.EncounterID, "error", err)
		}
	}
	if m.PatientEmail == "" {
		return nil
	}
	return s.email.Send(ctx, EmailMessage{
		To:      m.PatientEmail,
		ToName:  m.PatientName,
		Subject: fmt.Sprintf("Reminder: Upcoming Appointment #%s", m.EncounterID),
		Body:    body,
	})
}

// SendFollowUpReminder nudges the patient about a booked follow-up visit.
func (s *Service) SendFollowUpReminder(ctx context.Context, m FollowUpReminder) error {
	reason := m.Reason
	if reason == "" {
		reason = "Follow-up consultation"
	}
	body := strings.TrimSpace(fmt.Sprintf(`
Follow-up Appointment Reminder

Dear %s,

This is a reminder for your upcoming follow-up appointment:

Appointment ID: %s
Doctor: %s (%s)
Date & Time: %s
Reason: %s

Please confirm your attendance and let us know if you need to reschedule.

Contact us if you have any questions.

Best regards,
Hospital Administration`,
		m.PatientName, m.EncounterID, m.DoctorName, m.Specialization,
		m.VisitDate.Format(visitTimeLayout), reason))

	if m.PatientEmail == "" {
		return nil
	}
	return s.email.Send(ctx, EmailMessage{
		To:      m.PatientEmail,
		ToName:  m.PatientName,
		Subject: fmt.Sprintf("Reminder: Upcoming Follow-up Appointment #%s", m.EncounterID),
		Body:    body,
	})
}
