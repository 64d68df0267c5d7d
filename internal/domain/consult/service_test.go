package consult

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediscript/mediscript/internal/domain/patient"
	"github.com/mediscript/mediscript/internal/domain/prescribing"
	"github.com/mediscript/mediscript/internal/platform/structured"
	"github.com/mediscript/mediscript/pkg/pagination"
)

// -- Mocks --

type mockConvRepo struct {
	conversations map[uuid.UUID]*Conversation
}

func newMockConvRepo() *mockConvRepo {
	return &mockConvRepo{conversations: make(map[uuid.UUID]*Conversation)}
}

func (m *mockConvRepo) Create(_ context.Context, conv *Conversation) error {
	conv.ID = uuid.New()
	conv.CreatedAt = time.Now()
	m.conversations[conv.ID] = conv
	return nil
}

func (m *mockConvRepo) GetByID(_ context.Context, id uuid.UUID) (*Conversation, error) {
	conv, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return conv, nil
}

func (m *mockConvRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, p pagination.Params) ([]ListItem, int, error) {
	var items []ListItem
	for _, conv := range m.conversations {
		if conv.DoctorID == doctorID {
			items = append(items, ListItem{
				ID:        conv.ID,
				PatientID: conv.PatientID,
				Summary:   conv.Summary,
				CreatedAt: conv.CreatedAt,
			})
		}
	}
	total := len(items)
	if p.Offset < len(items) {
		items = items[p.Offset:]
	} else {
		items = nil
	}
	if len(items) > p.Limit {
		items = items[:p.Limit]
	}
	return items, total, nil
}

type mockPatients struct {
	owned map[uuid.UUID]uuid.UUID // patient -> doctor
}

func (m *mockPatients) GetOwned(_ context.Context, id, doctorID uuid.UUID) (*patient.Patient, error) {
	if m.owned[id] != doctorID {
		return nil, patient.ErrNotFound
	}
	return &patient.Patient{ID: id, DoctorID: doctorID, Name: "Asha Verma"}, nil
}

type mockPrescriber struct {
	drafts map[uuid.UUID]*prescribing.Prescription // by conversation
}

func newMockPrescriber() *mockPrescriber {
	return &mockPrescriber{drafts: make(map[uuid.UUID]*prescribing.Prescription)}
}

func (m *mockPrescriber) CreateDraft(_ context.Context, conversationID uuid.UUID, rec *structured.Record) (*prescribing.Prescription, error) {
	p := &prescribing.Prescription{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Structured:     rec,
		Status:         prescribing.StatusDraft,
	}
	m.drafts[conversationID] = p
	return p, nil
}

func (m *mockPrescriber) GetByConversation(_ context.Context, _, conversationID uuid.UUID) (*prescribing.Detail, error) {
	p, ok := m.drafts[conversationID]
	if !ok {
		return nil, prescribing.ErrNotFound
	}
	return &prescribing.Detail{Prescription: p}, nil
}

type mockGenerator struct {
	transcript   string
	generated    string
	summary      string
	summaryErr   error
	transcribeFn func(audio []byte, filename string) (string, error)
}

func (m *mockGenerator) Transcribe(_ context.Context, audio []byte, filename string) (string, error) {
	if m.transcribeFn != nil {
		return m.transcribeFn(audio, filename)
	}
	return m.transcript, nil
}

func (m *mockGenerator) StructuredPrescription(_ context.Context, _ string) (string, error) {
	return m.generated, nil
}

func (m *mockGenerator) Summarize(_ context.Context, _ string) (string, error) {
	return m.summary, m.summaryErr
}

const validGenerated = `{
	"presenting_complaint": {"summary": "Sore throat", "duration": "3 days", "associated_symptoms": ["fever"]},
	"diagnosis": {"primary": "Acute pharyngitis", "differential": []},
	"medications": [{"name": "Amoxicillin", "dosage": "500mg", "frequency": "TDS", "duration": "5d", "instructions": "After food"}],
	"investigations": [],
	"advice_and_followup": null
}`

type fixture struct {
	svc       *Service
	repo      *mockConvRepo
	gen       *mockGenerator
	doctorID  uuid.UUID
	patientID uuid.UUID
}

func newFixture() *fixture {
	doctorID := uuid.New()
	patientID := uuid.New()
	repo := newMockConvRepo()
	gen := &mockGenerator{
		transcript: "Patient reports sore throat for three days.",
		generated:  validGenerated,
		summary:    "Sore throat, likely pharyngitis. Amoxicillin prescribed.",
	}
	svc := NewService(repo,
		&mockPatients{owned: map[uuid.UUID]uuid.UUID{patientID: doctorID}},
		newMockPrescriber(), gen, zerolog.Nop())
	return &fixture{svc: svc, repo: repo, gen: gen, doctorID: doctorID, patientID: patientID}
}

func TestRecordConsultation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.RecordConsultation(ctx, f.doctorID, f.patientID, []byte("audio"), "visit.webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Conversation.Transcript != "Patient reports sore throat for three days." {
		t.Errorf("unexpected transcript: %q", res.Conversation.Transcript)
	}
	if res.Conversation.Summary == nil {
		t.Error("summary should be stored")
	}
	if res.Prescription == nil || res.Prescription.Status != prescribing.StatusDraft {
		t.Errorf("expected a draft prescription, got %+v", res.Prescription)
	}

	rec := res.Prescription.Structured
	if len(rec.Medications) != 1 {
		t.Fatalf("expected 1 medication, got %d", len(rec.Medications))
	}
	if rec.Medications[0].Frequency != "Three times daily" {
		t.Errorf("frequency should be normalized, got %q", rec.Medications[0].Frequency)
	}
	if rec.Medications[0].Duration != "5 days" {
		t.Errorf("duration should be normalized, got %q", rec.Medications[0].Duration)
	}
}

func TestRecordConsultation_SanitizesTranscript(t *testing.T) {
	f := newFixture()
	f.gen.transcript = "  Patient says <script>alert(1)</script> done \x00 "

	res, err := f.svc.RecordConsultation(context.Background(), f.doctorID, f.patientID, []byte("a"), "v.webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsAny(res.Conversation.Transcript, "<>\x00") {
		t.Errorf("transcript not sanitized: %q", res.Conversation.Transcript)
	}
}

func TestRecordConsultation_EmptyTranscript(t *testing.T) {
	f := newFixture()
	f.gen.transcript = "   "

	_, err := f.svc.RecordConsultation(context.Background(), f.doctorID, f.patientID, []byte("a"), "v.webm")
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestRecordConsultation_InvalidGeneration(t *testing.T) {
	f := newFixture()
	f.gen.generated = `{"medications": "not an array"}`

	_, err := f.svc.RecordConsultation(context.Background(), f.doctorID, f.patientID, []byte("a"), "v.webm")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if len(f.repo.conversations) != 0 {
		t.Error("invalid generation must not persist a conversation")
	}
}

func TestRecordConsultation_SummaryFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.gen.summaryErr = errors.New("model overloaded")

	res, err := f.svc.RecordConsultation(context.Background(), f.doctorID, f.patientID, []byte("a"), "v.webm")
	if err != nil {
		t.Fatalf("summary failure should not abort the consultation: %v", err)
	}
	if res.Conversation.Summary != nil {
		t.Error("failed summary should be stored as null")
	}
}

func TestRecordConsultation_UnownedPatient(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RecordConsultation(context.Background(), uuid.New(), f.patientID, []byte("a"), "v.webm")
	if !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected patient.ErrNotFound, got %v", err)
	}
}

func TestGet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.RecordConsultation(ctx, f.doctorID, f.patientID, []byte("a"), "v.webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := f.svc.Get(ctx, f.doctorID, res.Conversation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Prescription == nil {
		t.Error("detail should include the prescription")
	}

	if _, err := f.svc.Get(ctx, uuid.New(), res.Conversation.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other doctor, got %v", err)
	}
}
