package prescribing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mediscript/mediscript/internal/platform/pdf"
	"github.com/mediscript/mediscript/internal/platform/structured"
)

type Service struct {
	repo       Repository
	clinicName string
}

func NewService(repo Repository, clinicName string) *Service {
	return &Service{repo: repo, clinicName: clinicName}
}

// CreateDraft stores a new draft prescription for a consultation and seeds
// the editable medication and investigation rows from the structured record.
func (s *Service) CreateDraft(ctx context.Context, conversationID uuid.UUID, rec *structured.Record) (*Prescription, error) {
	p := &Prescription{
		ConversationID: conversationID,
		Structured:     rec,
		Status:         StatusDraft,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if rec != nil {
		var meds []MedicationRow
		for _, m := range rec.Medications {
			meds = append(meds, MedicationRow{
				Name:         sanitizeField(m.Name, maxNameLen),
				Dosage:       sanitizeField(m.Dosage, maxDosageLen),
				Frequency:    sanitizeField(m.Frequency, maxFrequencyLen),
				Duration:     sanitizeField(m.Duration, maxDurationLen),
				Instructions: sanitizeField(m.Instructions, maxInstructionsLen),
			})
		}
		if len(meds) > 0 {
			if err := s.repo.ReplaceMedications(ctx, p.ID, meds); err != nil {
				return nil, err
			}
		}

		var invs []InvestigationRow
		for _, inv := range rec.Investigations {
			invs = append(invs, InvestigationRow{
				TestName: sanitizeField(inv.TestName, maxTestNameLen),
				Reason:   sanitizeField(inv.Reason, maxReasonLen),
			})
		}
		if len(invs) > 0 {
			if err := s.repo.ReplaceInvestigations(ctx, p.ID, invs); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// Get returns the prescription with its editable rows. Prescriptions are
// only visible to the doctor who owns the conversation.
func (s *Service) Get(ctx context.Context, doctorID, id uuid.UUID) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	return s.detail(ctx, p)
}

// GetByConversation returns the prescription attached to a conversation.
func (s *Service) GetByConversation(ctx context.Context, doctorID, conversationID uuid.UUID) (*Detail, error) {
	p, err := s.repo.GetByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	return s.detail(ctx, p)
}

func (s *Service) detail(ctx context.Context, p *Prescription) (*Detail, error) {
	meds, err := s.repo.ListMedications(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	invs, err := s.repo.ListInvestigations(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Prescription: p, Medications: meds, Investigations: invs}, nil
}

// MedicationInput is one edited medication row.
type MedicationInput struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

// InvestigationInput is one edited investigation row.
type InvestigationInput struct {
	TestName string `json:"test_name"`
	Reason   string `json:"reason"`
}

// DraftUpdate carries a doctor's edits. Nil fields are left unchanged;
// an empty non-nil slice clears the rows.
type DraftUpdate struct {
	Medications    *[]MedicationInput    `json:"medications"`
	Investigations *[]InvestigationInput `json:"investigations"`
	Advice         *[]string             `json:"advice"`
	FollowUp       *string               `json:"follow_up"`
}

// UpdateDraft applies edits to a draft prescription. Rows with an empty
// name are dropped, every field is sanitized, and an audit entry records
// the change. Approved prescriptions are immutable.
func (s *Service) UpdateDraft(ctx context.Context, doctorID, id uuid.UUID, in DraftUpdate) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	if p.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	var changes []string

	if in.Medications != nil {
		var meds []MedicationRow
		for _, m := range *in.Medications {
			name := sanitizeField(m.Name, maxNameLen)
			if name == "" {
				continue
			}
			meds = append(meds, MedicationRow{
				Name:         name,
				Dosage:       sanitizeField(m.Dosage, maxDosageLen),
				Frequency:    sanitizeField(m.Frequency, maxFrequencyLen),
				Duration:     sanitizeField(m.Duration, maxDurationLen),
				Instructions: sanitizeField(m.Instructions, maxInstructionsLen),
			})
		}
		if err := s.repo.ReplaceMedications(ctx, p.ID, meds); err != nil {
			return nil, err
		}
		changes = append(changes, "medications ("+strconv.Itoa(len(meds))+" rows)")
	}

	if in.Investigations != nil {
		var invs []InvestigationRow
		for _, inv := range *in.Investigations {
			name := sanitizeField(inv.TestName, maxTestNameLen)
			if name == "" {
				continue
			}
			invs = append(invs, InvestigationRow{
				TestName: name,
				Reason:   sanitizeField(inv.Reason, maxReasonLen),
			})
		}
		if err := s.repo.ReplaceInvestigations(ctx, p.ID, invs); err != nil {
			return nil, err
		}
		changes = append(changes, "investigations ("+strconv.Itoa(len(invs))+" rows)")
	}

	if in.Advice != nil || in.FollowUp != nil {
		rec := p.Structured
		if rec == nil {
			rec = &structured.Record{}
		}
		af := rec.AdviceAndFollowup
		if af == nil {
			af = &structured.AdviceAndFollowup{}
		}
		if in.Advice != nil {
			var advice []string
			for _, a := range *in.Advice {
				if a = sanitizeField(a, maxAdviceLen); a != "" {
					advice = append(advice, a)
				}
			}
			af.Advice = advice
			changes = append(changes, "advice")
		}
		if in.FollowUp != nil {
			af.FollowUp = sanitizeField(*in.FollowUp, maxFollowUpLen)
			changes = append(changes, "follow-up")
		}
		if len(af.Advice) == 0 && af.FollowUp == "" {
			rec.AdviceAndFollowup = nil
		} else {
			rec.AdviceAndFollowup = af
		}
		if err := s.repo.UpdateStructured(ctx, p.ID, rec); err != nil {
			return nil, err
		}
		p.Structured = rec
	}

	if len(changes) > 0 {
		log := &AuditLog{
			PrescriptionID:    p.ID,
			EditedBy:          doctorID,
			ChangeDescription: "Updated " + strings.Join(changes, ", "),
		}
		if err := s.repo.AddAuditLog(ctx, log); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, p)
}

// Approve finalizes a draft. Once approved the prescription can no longer
// be edited.
func (s *Service) Approve(ctx context.Context, doctorID, id uuid.UUID) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	if err := s.repo.Approve(ctx, p.ID, doctorID); err != nil {
		return nil, err
	}
	log := &AuditLog{
		PrescriptionID:    p.ID,
		EditedBy:          doctorID,
		ChangeDescription: "Prescription approved",
	}
	if err := s.repo.AddAuditLog(ctx, log); err != nil {
		return nil, err
	}
	p, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, p)
}

// AuditTrail returns the edit history of a prescription.
func (s *Service) AuditTrail(ctx context.Context, doctorID, id uuid.UUID) ([]AuditLog, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	return s.repo.ListAuditLogs(ctx, p.ID)
}

// RenderPDF produces the printable prescription. The edited medication and
// investigation rows take precedence over the generated structured record.
func (s *Service) RenderPDF(ctx context.Context, doctorID, id uuid.UUID) ([]byte, error) {
	d, err := s.Get(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	pd, err := s.repo.GetPrintData(ctx, id)
	if err != nil {
		return nil, err
	}

	var rec structured.Record
	if d.Prescription.Structured != nil {
		rec = *d.Prescription.Structured
	}
	rec.Medications = nil
	for _, m := range d.Medications {
		rec.Medications = append(rec.Medications, structured.Medication{
			Name:         m.Name,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			Duration:     m.Duration,
			Instructions: m.Instructions,
		})
	}
	rec.Investigations = nil
	for _, inv := range d.Investigations {
		rec.Investigations = append(rec.Investigations, structured.Investigation{
			TestName: inv.TestName,
			Reason:   inv.Reason,
		})
	}

	patient := pdf.PatientDetails{
		Name: pd.PatientName,
		MRN:  pd.PatientMRN,
	}
	if pd.PatientAge != nil {
		patient.Age = fmt.Sprintf("%d years", *pd.PatientAge)
	}
	if pd.PatientGender != nil {
		patient.Gender = *pd.PatientGender
	}
	if pd.PatientPhone != nil {
		patient.Phone = *pd.PatientPhone
	}

	return pdf.Render(pdf.Prescription{
		ClinicName: s.clinicName,
		DoctorName: pd.DoctorName,
		Patient:    patient,
		Record:     &rec,
	})
}
