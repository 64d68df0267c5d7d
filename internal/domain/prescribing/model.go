package prescribing

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediscript/mediscript/internal/platform/structured"
)

// Prescription statuses.
const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
)

// Prescription maps to the prescriptions table. DoctorID comes from the
// owning conversation and is populated on reads.
type Prescription struct {
	ID             uuid.UUID          `db:"id" json:"id"`
	ConversationID uuid.UUID          `db:"conversation_id" json:"conversation_id"`
	DoctorID       uuid.UUID          `db:"doctor_id" json:"-"`
	Structured     *structured.Record `db:"structured_json" json:"structured"`
	Status         string             `db:"status" json:"status"`
	ApprovedBy     *uuid.UUID         `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time         `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// MedicationRow maps to the medications table. Rows mirror the structured
// record at creation time and carry the doctor's edits afterwards.
type MedicationRow struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	Name           string    `db:"name" json:"name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Duration       string    `db:"duration" json:"duration"`
	Instructions   string    `db:"instructions" json:"instructions"`
	Position       int       `db:"position" json:"position"`
}

// InvestigationRow maps to the investigations table.
type InvestigationRow struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	TestName       string    `db:"test_name" json:"test_name"`
	Reason         string    `db:"reason" json:"reason"`
	Position       int       `db:"position" json:"position"`
}

// AuditLog maps to the audit_logs table. Every edit and approval of a
// prescription leaves an entry.
type AuditLog struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PrescriptionID    uuid.UUID `db:"prescription_id" json:"prescription_id"`
	EditedBy          uuid.UUID `db:"edited_by" json:"edited_by"`
	ChangeDescription string    `db:"change_description" json:"change_description"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Detail is a prescription together with its editable rows.
type Detail struct {
	Prescription   *Prescription      `json:"prescription"`
	Medications    []MedicationRow    `json:"medications"`
	Investigations []InvestigationRow `json:"investigations"`
}

// PrintData is everything the PDF needs beyond the prescription itself.
type PrintData struct {
	PatientName   string
	PatientMRN    string
	PatientAge    *int
	PatientGender *string
	PatientPhone  *string
	DoctorName    string
}
