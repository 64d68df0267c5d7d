package prescribing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediscript/mediscript/internal/platform/structured"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const prescriptionCols = `p.id, p.conversation_id, c.doctor_id, p.structured_json,
	p.status, p.approved_by, p.approved_at, p.created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var doc []byte
	err := row.Scan(&p.ID, &p.ConversationID, &p.DoctorID, &doc,
		&p.Status, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(doc) > 0 {
		var rec structured.Record
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode structured prescription: %w", err)
		}
		p.Structured = &rec
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	if p.Status == "" {
		p.Status = StatusDraft
	}
	doc, err := json.Marshal(p.Structured)
	if err != nil {
		return fmt.Errorf("encode structured prescription: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO prescriptions (id, conversation_id, structured_json, status)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.ConversationID, doc, p.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.pool.QueryRow(ctx, `
		SELECT `+prescriptionCols+`
		FROM prescriptions p
		JOIN conversations c ON c.id = p.conversation_id
		WHERE p.id = $1`, id))
}

func (r *repoPG) GetByConversation(ctx context.Context, conversationID uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.pool.QueryRow(ctx, `
		SELECT `+prescriptionCols+`
		FROM prescriptions p
		JOIN conversations c ON c.id = p.conversation_id
		WHERE p.conversation_id = $1`, conversationID))
}

func (r *repoPG) UpdateStructured(ctx context.Context, id uuid.UUID, rec *structured.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode structured prescription: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE prescriptions SET structured_json = $2 WHERE id = $1`, id, doc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Approve(ctx context.Context, id, approvedBy uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE prescriptions
		SET status = $2, approved_by = $3, approved_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, StatusApproved, approvedBy, StatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotDraft
	}
	return nil
}

func (r *repoPG) ReplaceMedications(ctx context.Context, prescriptionID uuid.UUID, meds []MedicationRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM medications WHERE prescription_id = $1`, prescriptionID); err != nil {
		return err
	}
	for i := range meds {
		meds[i].ID = uuid.New()
		meds[i].PrescriptionID = prescriptionID
		meds[i].Position = i
		if _, err := tx.Exec(ctx, `
			INSERT INTO medications (id, prescription_id, name, dosage, frequency, duration, instructions, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			meds[i].ID, prescriptionID, meds[i].Name, meds[i].Dosage,
			meds[i].Frequency, meds[i].Duration, meds[i].Instructions, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repoPG) ListMedications(ctx context.Context, prescriptionID uuid.UUID) ([]MedicationRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prescription_id, name, dosage, frequency, duration, instructions, position
		FROM medications WHERE prescription_id = $1 ORDER BY position`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []MedicationRow
	for rows.Next() {
		var m MedicationRow
		if err := rows.Scan(&m.ID, &m.PrescriptionID, &m.Name, &m.Dosage,
			&m.Frequency, &m.Duration, &m.Instructions, &m.Position); err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (r *repoPG) ReplaceInvestigations(ctx context.Context, prescriptionID uuid.UUID, invs []InvestigationRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM investigations WHERE prescription_id = $1`, prescriptionID); err != nil {
		return err
	}
	for i := range invs {
		invs[i].ID = uuid.New()
		invs[i].PrescriptionID = prescriptionID
		invs[i].Position = i
		if _, err := tx.Exec(ctx, `
			INSERT INTO investigations (id, prescription_id, test_name, reason, position)
			VALUES ($1, $2, $3, $4, $5)`,
			invs[i].ID, prescriptionID, invs[i].TestName, invs[i].Reason, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repoPG) ListInvestigations(ctx context.Context, prescriptionID uuid.UUID) ([]InvestigationRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prescription_id, test_name, reason, position
		FROM investigations WHERE prescription_id = $1 ORDER BY position`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []InvestigationRow
	for rows.Next() {
		var inv InvestigationRow
		if err := rows.Scan(&inv.ID, &inv.PrescriptionID, &inv.TestName, &inv.Reason, &inv.Position); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *repoPG) AddAuditLog(ctx context.Context, log *AuditLog) error {
	log.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, prescription_id, edited_by, change_description)
		VALUES ($1, $2, $3, $4)`,
		log.ID, log.PrescriptionID, log.EditedBy, log.ChangeDescription)
	return err
}

func (r *repoPG) ListAuditLogs(ctx context.Context, prescriptionID uuid.UUID) ([]AuditLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prescription_id, edited_by, change_description, created_at
		FROM audit_logs WHERE prescription_id = $1 ORDER BY created_at`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var l AuditLog
		if err := rows.Scan(&l.ID, &l.PrescriptionID, &l.EditedBy, &l.ChangeDescription, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *repoPG) GetPrintData(ctx context.Context, prescriptionID uuid.UUID) (*PrintData, error) {
	var pd PrintData
	var patientID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT pt.id, pt.name, pt.age, pt.gender, pt.phone, u.name
		FROM prescriptions p
		JOIN conversations c ON c.id = p.conversation_id
		JOIN patients pt ON pt.id = c.patient_id
		JOIN users u ON u.id = c.doctor_id
		WHERE p.id = $1`, prescriptionID).
		Scan(&patientID, &pd.PatientName, &pd.PatientAge, &pd.PatientGender, &pd.PatientPhone, &pd.DoctorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pd.PatientMRN = "MRN-" + patientID.String()[:8]
	return &pd, nil
}
