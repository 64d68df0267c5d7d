package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	doctorID := uuid.New()
	age := 34

	p, err := svc.Create(context.Background(), doctorID, CreateInput{
		Name:   "  A. Kumar ",
		Age:    &age,
		Gender: "male",
		Phone:  "9876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "A. Kumar" {
		t.Errorf("name should be trimmed, got %q", p.Name)
	}
	if p.DoctorID != doctorID {
		t.Errorf("doctor not recorded: %+v", p)
	}
	if p.Gender == nil || *p.Gender != "male" {
		t.Errorf("gender not stored: %+v", p)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	doctorID := uuid.New()
	badAge := 200

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "  "}},
		{"bad age", CreateInput{Name: "X", Age: &badAge}},
		{"bad gender", CreateInput{Name: "X", Gender: "unknown"}},
		{"long phone", CreateInput{Name: "X", Phone: "123456789012345678901"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, doctorID, tt.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreate_OptionalFieldsAbsent(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Create(context.Background(), uuid.New(), CreateInput{Name: "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Age != nil || p.Gender != nil || p.Phone != nil {
		t.Errorf("optional fields should be nil, got %+v", p)
	}
}

func TestGetOwned(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	p, err := svc.Create(ctx, owner, CreateInput{Name: "X"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetOwned(ctx, p.ID, owner); err != nil {
		t.Errorf("owner should see the patient: %v", err)
	}
	if _, err := svc.GetOwned(ctx, p.ID, other); err != ErrNotFound {
		t.Errorf("other doctor should get ErrNotFound, got %v", err)
	}
}
