package consult

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediscript/mediscript/pkg/pagination"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, conv *Conversation) error {
	conv.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, doctor_id, patient_id, transcript, summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		conv.ID, conv.DoctorID, conv.PatientID, conv.Transcript, conv.Summary).
		Scan(&conv.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	var conv Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, transcript, summary, created_at
		FROM conversations WHERE id = $1`, id).
		Scan(&conv.ID, &conv.DoctorID, &conv.PatientID, &conv.Transcript, &conv.Summary, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, p pagination.Params) ([]ListItem, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversations WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.patient_id, pt.name, c.summary, p.id, c.created_at
		FROM conversations c
		JOIN patients pt ON pt.id = c.patient_id
		LEFT JOIN prescriptions p ON p.conversation_id = c.id
		WHERE c.doctor_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`, doctorID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.PatientID, &it.PatientName, &it.Summary, &it.PrescriptionID, &it.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}
