package actions

import (
	"context"
	"errors"
	"time"

	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/encounters"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/patients"
)

func (d *Dispatcher) registerPatient(ctx context.Context, data map[string]any) (Response, error) {
	req := &patients.RegisterPatientRequest{
		FirstName:  stringField(data, "first_name"),
		LastName:   stringField(data, "last_name"),
		DOB:        stringField(data, "dob"),
		Gender:     stringField(data, "gender"),
		Email:      stringField(data, "email"),
		Phone:      stringField(data, "phone"),
		Address:    stringField(data, "address"),
		BloodGroup: stringField(data, "blood_group"),
		Allergies:  stringField(data, "allergies"),
	}
	p, err := d.patients.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return Response{"patient_id": p.ID}, nil
}

func (d *Dispatcher) validatePatient(ctx context.Context, data map[string]any) (Response, error) {
	var patient *patients.Patient
	var err error
	if pid := stringField(data, "patient_id"); pid != "" {
		patient, err = d.patients.GetByID(ctx, pid)
	} else if phone := stringField(data, "phone"); phone != "" {
		patient, err = d.patients.GetByPhone(ctx, phone)
	}
	if err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			return Response{"valid": false}, nil
		}
		// Infrastructure failure, not a missing patient.
		return nil, err
	}
	if patient == nil {
		// Neither patient_id nor phone supplied.
		return Response{"valid": false}, nil
	}

	history, err := d.encounters.History(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	return Response{
		"valid": true,
		"patient": map[string]any{
			"patient_id": patient.ID,
			"first_name": patient.FirstName,
			"last_name":  patient.LastName,
			"phone":      patient.Phone,
		},
		"previous_encounters": d.encounterBriefs(ctx, history),
	}, nil
}

func (d *Dispatcher) assignDoctor(ctx context.Context, data map[string]any) (Response, error) {
	problem := stringField(data, "problem")
	result := d.classifier.Classify(ctx, problem)
	spec := string(result.Specialization)

	doc, err := d.doctors.FirstBySpecialization(ctx, spec)
	if errors.Is(err, doctors.ErrDoctorNotFound) {
		return Response{
			"assigned":       false,
			"specialization": spec,
			"source":         string(result.Source),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	slots, err := d.allocator.AvailableSlots(ctx, doc.ID, d.now(), d.cfg.SlotDaysAhead, d.cfg.SlotLimit)
	if err != nil {
		return nil, err
	}
	options := []map[string]any{}
	for i, slot := range slots {
		if i >= 5 {
			break
		}
		options = append(options, map[string]any{
			"id":       i + 1,
			"datetime": slot.Format(time.RFC3339),
			"date":     slot.Format("2006-01-02"),
			"time":     slot.Format("15:04"),
		})
	}
	return Response{
		"assigned": true,
		"doctor": map[string]any{
			"doctor_id":      doc.ID,
			"first_name":     doc.FirstName,
			"last_name":      doc.LastName,
			"specialization": doc.Specialization,
		},
		"available_slots": options,
		"source":          string(result.Source),
	}, nil
}

func (d *Dispatcher) createEncounter(ctx context.Context, data map[string]any) (Response, error) {
	enc, err := d.encounters.Book(ctx, encounters.BookRequest{
		PatientID:           stringField(data, "patient_id"),
		DoctorID:            stringField(data, "doctor_id"),
		Slot:                stringField(data, "slot_choice"),
		Reason:              stringField(data, "problem"),
		PreviousEncounterID: stringField(data, "previous_encounter_id"),
	})
	if err != nil {
		return nil, err
	}
	return Response{
		"encounter": map[string]any{
			"encounter_id":     enc.ID,
			"appointment_date": enc.VisitDate.Format(time.RFC3339),
			"appointment_time": enc.VisitDate.Format("15:04:05"),
			"status":           enc.Status,
			"visit_type":       enc.VisitType,
		},
	}, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, data map[string]any) (Response, error) {
	enc, err := d.encounters.Get(ctx, stringField(data, "encounter_id"))
	if err != nil {
		return nil, err
	}
	patient, err := d.patients.GetByID(ctx, enc.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.Email == "" {
		return Response{
			"sent":          false,
			"patient_email": "N/A",
			"error":         "No email address provided for patient",
		}, nil
	}

	msg := notify.BookingConfirmation{
		EncounterID:   enc.ID,
		PatientName:   patient.FullName(),
		PatientEmail:  patient.Email,
		DoctorName:    "Unknown",
		VisitDate:     enc.VisitDate,
		VisitType:     enc.VisitType,
		Concern:       enc.Reason,
		PaymentStatus: enc.PaymentStatus,
	}
	if enc.DoctorID != nil {
		if doc, derr := d.doctors.GetByID(ctx, *enc.DoctorID); derr == nil {
			msg.DoctorName = doc.DisplayName()
			msg.Specialization = doc.Specialization
		}
	}
	if err := d.notifier.SendBookingConfirmation(ctx, msg); err != nil {
		return Response{
			"sent":          false,
			"patient_email": patient.Email,
			"error":         err.Error(),
		}, nil
	}
	return Response{"sent": true, "patient_email": patient.Email}, nil
}

func (d *Dispatcher) scheduleReminder(ctx context.Context, data map[string]any) (Response, error) {
	_, err := d.encounters.ScheduleReminder(ctx,
		stringField(data, "encounter_id"),
		stringField(data, "remind_at"),
		stringField(data, "method"),
	)
	if err != nil {
		return nil, err
	}
	return Response{"scheduled": true}, nil
}

func (d *Dispatcher) postVisitFeedback(ctx context.Context, data map[string]any) (Response, error) {
	fb, err := d.encounters.RecordFeedback(ctx,
		stringField(data, "encounter_id"),
		intPtrField(data, "rating"),
		stringPtrField(data, "comments"),
		boolField(data, "follow_up_required"),
	)
	if err != nil {
		return nil, err
	}
	return Response{"feedback_id": fb.ID}, nil
}

func (d *Dispatcher) getVisitSummary(ctx context.Context, data map[string]any) (Response, error) {
	s, err := d.encounters.VisitSummary(ctx, stringField(data, "encounter_id"))
	if err != nil {
		return nil, err
	}

	var doctor map[string]any
	if s.Doctor != nil {
		doctor = map[string]any{
			"doctor_id":      s.Doctor.ID,
			"first_name":     s.Doctor.FirstName,
			"last_name":      s.Doctor.LastName,
			"specialization": s.Doctor.Specialization,
		}
	}
	var feedback map[string]any
	if s.Feedback != nil {
		feedback = map[string]any{
			"rating":             s.Feedback.Rating,
			"comments":           s.Feedback.Comments,
			"follow_up_required": s.Feedback.FollowUpRequired,
		}
	}

	summary := map[string]any{
		"encounter_id": s.Encounter.ID,
		"patient": map[string]any{
			"patient_id":  s.Patient.ID,
			"first_name":  s.Patient.FirstName,
			"last_name":   s.Patient.LastName,
			"dob":         s.Patient.DOB.Format("2006-01-02"),
			"gender":      s.Patient.Gender,
			"email":       s.Patient.Email,
			"phone":       s.Patient.Phone,
			"blood_group": s.Patient.BloodGroup,
		},
		"doctor": doctor,
		"visit_details": map[string]any{
			"visit_type":     s.Encounter.VisitType,
			"visit_date":     s.Encounter.VisitDate.Format(time.RFC3339),
			"problem":        s.Encounter.Reason,
			"notes":          s.Encounter.Reason,
			"status":         s.Encounter.Status,
			"payment_status": s.Encounter.PaymentStatus,
		},
		"medications": s.Medications,
		"diagnoses":   s.Diagnoses,
		"vitals":      s.Vitals,
		"lab_results": s.LabResults,
		"feedback":    feedback,
	}
	return Response{"summary": summary}, nil
}

func (d *Dispatcher) updatePaymentStatus(ctx context.Context, data map[string]any) (Response, error) {
	err := d.encounters.UpdatePaymentStatus(ctx,
		stringField(data, "encounter_id"),
		stringField(data, "payment_status"),
	)
	if err != nil {
		return nil, err
	}
	return Response{"updated": true}, nil
}

func (d *Dispatcher) scheduleFollowUp(ctx context.Context, data map[string]any) (Response, error) {
	fu, err := d.encounters.ScheduleFollowUp(ctx,
		stringField(data, "encounter_id"),
		intField(data, "follow_up_days", 7),
		stringField(data, "reason"),
	)
	if err != nil {
		return nil, err
	}
	return Response{
		"follow_up_encounter_id": fu.ID,
		"appointment_date":       fu.VisitDate.Format(time.RFC3339),
	}, nil
}

func (d *Dispatcher) checkFollowUpStatus(ctx context.Context, data map[string]any) (Response, error) {
	followUps, err := d.encounters.UpcomingFollowUps(ctx, stringField(data, "patient_id"))
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for _, enc := range followUps {
		name, spec := d.doctorLabel(ctx, enc)
		out = append(out, map[string]any{
			"encounter_id":   enc.ID,
			"doctor_name":    name,
			"specialization": spec,
			"visit_date":     enc.VisitDate.Format(time.RFC3339),
			"reason":         enc.Reason,
		})
	}
	return Response{"follow_ups": out}, nil
}

func (d *Dispatcher) listDoctors(ctx context.Context, data map[string]any) (Response, error) {
	all, err := d.doctors.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for _, doc := range all {
		out = append(out, map[string]any{
			"doctor_id":      doc.ID,
			"first_name":     doc.FirstName,
			"last_name":      doc.LastName,
			"specialization": doc.Specialization,
		})
	}
	return Response{"doctors": out}, nil
}

func (d *Dispatcher) getPatientHistory(ctx context.Context, data map[string]any) (Response, error) {
	history, err := d.encounters.History(ctx, stringField(data, "patient_id"))
	if err != nil {
		return nil, err
	}
	return Response{"history": d.encounterBriefs(ctx, history)}, nil
}

func (d *Dispatcher) getLabReports(ctx context.Context, data map[string]any) (Response, error) {
	if _, err := d.patients.GetByID(ctx, stringField(data, "patient_id")); err != nil {
		return nil, err
	}
	reports, err := d.records.LabResultsByPatient(ctx, stringField(data, "patient_id"))
	if err != nil {
		return nil, err
	}
	return Response{"reports": reports}, nil
}

func (d *Dispatcher) doctorLabel(ctx context.Context, enc *encounters.Encounter) (string, string) {
	if enc.DoctorID == nil {
		return "Unknown", "Unknown"
	}
	doc, err := d.doctors.GetByID(ctx, *enc.DoctorID)
	if err != nil {
		return "Unknown", "Unknown"
	}
	return doc.DisplayName(), doc.Specialization
}

func (d *Dispatcher) encounterBriefs(ctx context.Context, encs []*encounters.Encounter) []map[string]any {
	out := []map[string]any{}
	for _, enc := range encs {
		name, spec := d.doctorLabel(ctx, enc)
		out = append(out, map[string]any{
			"encounter_id":   enc.ID,
			"doctor_name":    name,
			"specialization": spec,
			"visit_date":     enc.VisitDate.Format(time.RFC3339),
			"problem":        enc.Reason,
			"status":         enc.Status,
		})
	}
	return out
}
