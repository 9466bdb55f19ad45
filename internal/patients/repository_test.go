package patients

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryCreateAndLookup(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, &RegisterPatientRequest{
		FirstName:  "Asha",
		LastName:   "Rao",
		DOB:        "1988-04-12",
		Gender:     "F",
		Phone:      "5550100",
		BloodGroup: "O+",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated patient id")
	}

	byID, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.FullName() != "Asha Rao" {
		t.Fatalf("FullName = %q", byID.FullName())
	}

	byPhone, err := repo.GetByPhone(ctx, "5550100")
	if err != nil {
		t.Fatalf("GetByPhone: %v", err)
	}
	if byPhone.ID != p.ID {
		t.Fatalf("phone lookup returned %s, want %s", byPhone.ID, p.ID)
	}
}

func TestInMemoryNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("GetByID error = %v, want ErrPatientNotFound", err)
	}
	if _, err := repo.GetByPhone(ctx, "5559999"); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("GetByPhone error = %v, want ErrPatientNotFound", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterPatientRequest
		want error
	}{
		{"missing name", RegisterPatientRequest{DOB: "1990-01-01", Phone: "1"}, ErrInvalidName},
		{"missing phone", RegisterPatientRequest{FirstName: "A", LastName: "B", DOB: "1990-01-01"}, ErrMissingPhone},
		{"bad dob", RegisterPatientRequest{FirstName: "A", LastName: "B", DOB: "01/02/1990", Phone: "1"}, ErrInvalidDOB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Create(ctx, &tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("Create error = %v, want %v", err, tt.want)
			}
		})
	}
}
