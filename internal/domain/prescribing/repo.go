package prescribing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mediscript/mediscript/internal/platform/structured"
)

var (
	ErrNotFound = errors.New("prescription not found")
	ErrNotDraft = errors.New("prescription is not a draft")
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	GetByConversation(ctx context.Context, conversationID uuid.UUID) (*Prescription, error)
	UpdateStructured(ctx context.Context, id uuid.UUID, rec *structured.Record) error
	Approve(ctx context.Context, id, approvedBy uuid.UUID) error

	ReplaceMedications(ctx context.Context, prescriptionID uuid.UUID, meds []MedicationRow) error
	ListMedications(ctx context.Context, prescriptionID uuid.UUID) ([]MedicationRow, error)
	ReplaceInvestigations(ctx context.Context, prescriptionID uuid.UUID, invs []InvestigationRow) error
	ListInvestigations(ctx context.Context, prescriptionID uuid.UUID) ([]InvestigationRow, error)

	AddAuditLog(ctx context.Context, log *AuditLog) error
	ListAuditLogs(ctx context.Context, prescriptionID uuid.UUID) ([]AuditLog, error)

	GetPrintData(ctx context.Context, prescriptionID uuid.UUID) (*PrintData, error)
}
