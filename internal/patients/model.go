// Package patients owns patient identity records.
package patients

import (
	"strings"
	"time"
)

// Patient represents a registered patient. Identity fields are immutable
// after creation; only contact details and blood group may be corrected.
type Patient struct {
	ID         string    `json:"patient_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DOB        time.Time `json:"dob"`
	Gender     string    `json:"gender"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address,omitempty"`
	BloodGroup string    `json:"blood_group,omitempty"`
	Allergies  string    `json:"allergies,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName joins the name parts for notifications.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// RegisterPatientRequest carries the fields needed to register a patient.
type RegisterPatientRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DOB        string `json:"dob"` // YYYY-MM-DD
	Gender     string `json:"gender"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	BloodGroup string `json:"blood_group"`
	Allergies  string `json:"allergies"`
}

// Validate checks required fields and the date-of-birth format.
func (r *RegisterPatientRequest) Validate() (time.Time, error) {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return time.Time{}, ErrInvalidName
	}
	if strings.TrimSpace(r.Phone) == "" {
		return time.Time{}, ErrMissingPhone
	}
	dob, err := time.Parse("2006-01-02", r.DOB)
	if err != nil {
		return time.Time{}, ErrInvalidDOB
	}
	return dob, nil
}
