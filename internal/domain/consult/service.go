package consult

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediscript/mediscript/internal/domain/patient"
	"github.com/mediscript/mediscript/internal/domain/prescribing"
	"github.com/mediscript/mediscript/internal/platform/structured"
	"github.com/mediscript/mediscript/pkg/pagination"
)

var ErrEmptyTranscript = errors.New("transcript is empty")

// Generator produces transcripts, structured prescriptions and summaries
// from consultation audio. Satisfied by genai.Client.
type Generator interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	StructuredPrescription(ctx context.Context, transcript string) (string, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}

// PatientDirectory checks that a patient exists and belongs to the doctor.
type PatientDirectory interface {
	GetOwned(ctx context.Context, id, doctorID uuid.UUID) (*patient.Patient, error)
}

// Prescriber creates and reads the draft attached to a conversation.
type Prescriber interface {
	CreateDraft(ctx context.Context, conversationID uuid.UUID, rec *structured.Record) (*prescribing.Prescription, error)
	GetByConversation(ctx context.Context, doctorID, conversationID uuid.UUID) (*prescribing.Detail, error)
}

// GenerationError wraps a failure to turn the model's raw output into a
// valid structured prescription. The transcript itself was fine; the
// generated document was not.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("structured prescription generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Service struct {
	conversations Repository
	patients      PatientDirectory
	prescriber    Prescriber
	gen           Generator
	log           zerolog.Logger
}

func NewService(conversations Repository, patients PatientDirectory, prescriber Prescriber, gen Generator, log zerolog.Logger) *Service {
	return &Service{
		conversations: conversations,
		patients:      patients,
		prescriber:    prescriber,
		gen:           gen,
		log:           log,
	}
}

// Result is a completed consultation: the stored conversation and the
// draft prescription generated from it.
type Result struct {
	Conversation *Conversation             `json:"conversation"`
	Prescription *prescribing.Prescription `json:"prescription"`
}

// RecordConsultation runs the full pipeline for one uploaded recording:
// transcribe, sanitize, generate the structured prescription, summarize,
// then persist the conversation with its draft.
func (s *Service) RecordConsultation(ctx context.Context, doctorID, patientID uuid.UUID, audio []byte, filename string) (*Result, error) {
	if _, err := s.patients.GetOwned(ctx, patientID, doctorID); err != nil {
		return nil, err
	}

	raw, err := s.gen.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	transcript := SanitizeTranscript(raw)
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}

	generated, err := s.gen.StructuredPrescription(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("generate prescription: %w", err)
	}
	rec, err := structured.Parse(generated)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	// A consultation without a usable summary is still worth keeping.
	var summary *string
	if text, err := s.gen.Summarize(ctx, transcript); err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID.String()).
			Msg("consultation summary generation failed")
	} else if text != "" {
		text = SanitizeTranscript(text)
		summary = &text
	}

	conv := &Conversation{
		DoctorID:   doctorID,
		PatientID:  patientID,
		Transcript: transcript,
		Summary:    summary,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	p, err := s.prescriber.CreateDraft(ctx, conv.ID, rec)
	if err != nil {
		return nil, err
	}
	return &Result{Conversation: conv, Prescription: p}, nil
}

// List returns a page of the doctor's consultation history, newest first,
// with the total count.
func (s *Service) List(ctx context.Context, doctorID uuid.UUID, p pagination.Params) ([]ListItem, int, error) {
	return s.conversations.ListByDoctor(ctx, doctorID, p)
}

// Detail is one conversation with its prescription, if any.
type Detail struct {
	Conversation *Conversation       `json:"conversation"`
	Prescription *prescribing.Detail `json:"prescription"`
}

// Get returns a conversation owned by the doctor.
func (s *Service) Get(ctx context.Context, doctorID, id uuid.UUID) (*Detail, error) {
	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	d := &Detail{Conversation: conv}
	p, err := s.prescriber.GetByConversation(ctx, doctorID, id)
	if err == nil {
		d.Prescription = p
	} else if !errors.Is(err, prescribing.ErrNotFound) {
		return nil, err
	}
	return d, nil
}
