package encounters

import "errors"

var (
	// ErrEncounterNotFound is returned when no encounter matches the id.
	ErrEncounterNotFound = errors.New("encounters: encounter not found")

	// ErrSlotConflict is returned when the doctor already has an encounter
	// at the requested visit timestamp.
	ErrSlotConflict = errors.New("encounters: doctor slot already booked")

	// ErrNoDoctor is returned when an operation needs the origin encounter
	// to carry a doctor and it does not.
	ErrNoDoctor = errors.New("encounters: encounter has no assigned doctor")

	// ErrInvalidSlot is returned when a caller-supplied timestamp does not
	// parse.
	ErrInvalidSlot = errors.New("encounters: invalid slot timestamp")

	// ErrInvalidPaymentStatus rejects empty payment status updates.
	ErrInvalidPaymentStatus = errors.New("encounters: payment status required")
)
