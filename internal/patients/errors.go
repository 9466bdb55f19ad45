package patients

import "errors"

var (
	// ErrInvalidName is returned when a name part is missing
	ErrInvalidName = errors.New("first and last name are required")

	// ErrMissingPhone is returned when the phone number is missing
	ErrMissingPhone = errors.New("phone is required")

	// ErrInvalidDOB is returned when the date of birth does not parse
	ErrInvalidDOB = errors.New("dob must be YYYY-MM-DD")

	// ErrPatientNotFound is returned when a patient is not found
	ErrPatientNotFound = errors.New("patient not found")
)
