package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. Patients belong to the doctor who
// registered them.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Name      string    `db:"name" json:"name"`
	Age       *int      `db:"age" json:"age,omitempty"`
	Gender    *string   `db:"gender" json:"gender,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MRN derives the display medical record number from the patient id.
func (p *Patient) MRN() string {
	return "MRN-" + p.ID.String()[:8]
}
