// Package actions exposes the assistant's operation catalogue behind a
// single dispatch endpoint.
package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/encounters"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/observability/metrics"
	"github.com/careloop/frontdesk/internal/patients"
	"github.com/careloop/frontdesk/internal/records"
	"github.com/careloop/frontdesk/internal/scheduling"
	"github.com/careloop/frontdesk/internal/triage"
	"github.com/careloop/frontdesk/pkg/logging"
)

// Request is the dispatch envelope: an action name plus its payload.
type Request struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// Response is the JSON body paired with an HTTP status class.
type Response map[string]any

type handlerFunc func(ctx context.Context, data map[string]any) (Response, error)

// registration binds a handler to its declared required fields. Missing
// fields are reported one at a time, in declared order.
type registration struct {
	required []string
	handle   handlerFunc
}

// Config bounds the slot options offered by ASSIGN_DOCTOR.
type Config struct {
	SlotDaysAhead int
	SlotLimit     int
}

// Dispatcher routes action requests to their handlers.
type Dispatcher struct {
	registry   map[string]registration
	patients   patients.Repository
	doctors    doctors.Repository
	classifier *triage.Classifier
	allocator  *scheduling.Allocator
	encounters *encounters.Service
	notifier   *notify.Service
	records    records.Reader
	metrics    *metrics.ActionMetrics
	logger     *logging.Logger
	tracer     trace.Tracer
	cfg        Config
	now        func() time.Time
}

// NewDispatcher wires the action catalogue.
func NewDispatcher(
	patientRepo patients.Repository,
	doctorRepo doctors.Repository,
	classifier *triage.Classifier,
	allocator *scheduling.Allocator,
	encounterSvc *encounters.Service,
	notifier *notify.Service,
	recordReader records.Reader,
	m *metrics.ActionMetrics,
	cfg Config,
	logger *logging.Logger,
) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SlotDaysAhead <= 0 {
		cfg.SlotDaysAhead = 7
	}
	if cfg.SlotLimit <= 0 {
		cfg.SlotLimit = 10
	}
	d := &Dispatcher{
		patients:   patientRepo,
		doctors:    doctorRepo,
		classifier: classifier,
		allocator:  allocator,
		encounters: encounterSvc,
		notifier:   notifier,
		records:    recordReader,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("frontdesk.internal.actions"),
		cfg:        cfg,
		now:        func() time.Time { return time.Now() },
	}
	d.registry = map[string]registration{
		"REGISTER_PATIENT":       {required: []string{"first_name", "last_name", "dob", "gender", "phone", "blood_group"}, handle: d.registerPatient},
		"VALIDATE_PATIENT":       {handle: d.validatePatient},
		"ASSIGN_DOCTOR":          {required: []string{"problem"}, handle: d.assignDoctor},
		"CREATE_ENCOUNTER":       {required: []string{"patient_id", "doctor_id", "problem"}, handle: d.createEncounter},
		"BOOK_APPOINTMENT":       {required: []string{"patient_id", "doctor_id", "problem"}, handle: d.createEncounter},
		"SEND_EMAIL":             {required: []string{"encounter_id"}, handle: d.sendEmail},
		"SCHEDULE_REMINDER":      {required: []string{"encounter_id", "remind_at"}, handle: d.scheduleReminder},
		"POST_VISIT_FEEDBACK":    {required: []string{"encounter_id"}, handle: d.postVisitFeedback},
		"GET_VISIT_SUMMARY":      {required: []string{"encounter_id"}, handle: d.getVisitSummary},
		"UPDATE_PAYMENT_STATUS":  {required: []string{"encounter_id", "payment_status"}, handle: d.updatePaymentStatus},
		"SCHEDULE_FOLLOW_UP":     {required: []string{"encounter_id"}, handle: d.scheduleFollowUp},
		"CHECK_FOLLOW_UP_STATUS": {required: []string{"patient_id"}, handle: d.checkFollowUpStatus},
		"LIST_DOCTORS":           {handle: d.listDoctors},
		"GET_PATIENT_HISTORY":    {required: []string{"patient_id"}, handle: d.getPatientHistory},
		"GET_LAB_REPORTS":        {required: []string{"patient_id"}, handle: d.getLabReports},
	}
	return d
}

// Dispatch runs an action and returns the JSON body plus HTTP status.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Response, int) {
	ctx, span := d.tracer.Start(ctx, "actions.Dispatch",
		trace.WithAttributes(attribute.String("action", req.Action)))
	defer span.End()

	start := d.now()
	reg, ok := d.registry[req.Action]
	if !ok {
		d.metrics.ObserveDispatch(req.Action, "unknown")
		return Response{"error": "unknown action"}, http.StatusBadRequest
	}

	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	for _, field := range reg.required {
		if stringField(data, field) == "" {
			d.metrics.ObserveDispatch(req.Action, "bad_request")
			return Response{"error": fmt.Sprintf("Missing field %s", field)}, http.StatusBadRequest
		}
	}

	resp, err := reg.handle(ctx, data)
	status := http.StatusOK
	if err != nil {
		status = statusForError(err)
		resp = Response{"error": err.Error()}
		if status >= 500 {
			span.RecordError(err)
			d.logger.Error("action failed", "action", req.Action, "error", err)
		}
	} else {
		resp["action"] = req.Action
	}

	span.SetAttributes(attribute.Int("http.status", status))
	d.metrics.ObserveDispatch(req.Action, statusLabel(status))
	d.metrics.ObserveLatency(req.Action, d.now().Sub(start).Seconds())
	return resp, status
}

// SetClock overrides the dispatcher time source.
func (d *Dispatcher) SetClock(now func() time.Time) { d.now = now }

func statusForError(err error) int {
	switch {
	case errors.Is(err, encounters.ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, patients.ErrPatientNotFound),
		errors.Is(err, doctors.ErrDoctorNotFound),
		errors.Is(err, encounters.ErrEncounterNotFound):
		return http.StatusNotFound
	case errors.Is(err, patients.ErrInvalidName),
		errors.Is(err, patients.ErrMissingPhone),
		errors.Is(err, patients.ErrInvalidDOB),
		errors.Is(err, encounters.ErrInvalidSlot),
		errors.Is(err, encounters.ErrNoDoctor),
		errors.Is(err, encounters.ErrInvalidPaymentStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func statusLabel(status int) string {
	switch {
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 500:
		return "error"
	case status >= 400:
		return "bad_request"
	default:
		return "ok"
	}
}

// stringField reads a string payload value; absent or non-string is "".
func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// intField reads a numeric payload value, tolerating JSON's float64.
func intField(data map[string]any, key string, def int) int {
	v, ok := data[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func intPtrField(data map[string]any, key string) *int {
	v, ok := data[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		i := n
		return &i
	default:
		return nil
	}
}

func stringPtrField(data map[string]any, key string) *string {
	v, ok := data[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func boolField(data map[string]any, key string) bool {
	v, ok := data[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
