package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

// CreateInput is the new-patient form payload.
type CreateInput struct {
	Name   string `json:"name"`
	Age    *int   `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

func (s *Service) Create(ctx context.Context, doctorID uuid.UUID, in CreateInput) (*Patient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 150 {
		return nil, fmt.Errorf("name must be between 1 and 150 characters")
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > 150) {
		return nil, fmt.Errorf("age must be between 0 and 150")
	}

	p := &Patient{
		DoctorID: doctorID,
		Name:     name,
		Age:      in.Age,
	}

	gender := strings.TrimSpace(in.Gender)
	if gender != "" {
		if !validGenders[gender] {
			return nil, fmt.Errorf("invalid gender: %s", gender)
		}
		p.Gender = &gender
	}

	phone := strings.TrimSpace(in.Phone)
	if len(phone) > 20 {
		return nil, fmt.Errorf("phone must be at most 20 characters")
	}
	if phone != "" {
		p.Phone = &phone
	}

	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, doctorID uuid.UUID) ([]*Patient, error) {
	return s.patients.ListByDoctor(ctx, doctorID)
}

// GetOwned returns the patient only if it belongs to the given doctor.
func (s *Service) GetOwned(ctx context.Context, id, doctorID uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	return p, nil
}
