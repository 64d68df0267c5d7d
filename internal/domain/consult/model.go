package consult

import (
	"time"

	"github.com/google/uuid"
)

// Conversation maps to the conversations table: one recorded consultation
// between a doctor and a patient.
type Conversation struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Transcript string    `db:"transcript" json:"transcript"`
	Summary    *string   `db:"summary" json:"summary"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ListItem is a conversation row for the doctor's history view, with the
// patient name joined in and the transcript left out.
type ListItem struct {
	ID             uuid.UUID  `json:"id"`
	PatientID      uuid.UUID  `json:"patient_id"`
	PatientName    string     `json:"patient_name"`
	Summary        *string    `json:"summary"`
	PrescriptionID *uuid.UUID `json:"prescription_id"`
	CreatedAt      time.Time  `json:"created_at"`
}
