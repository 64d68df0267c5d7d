package consult

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mediscript/mediscript/pkg/pagination"
)

var ErrNotFound = errors.New("conversation not found")

type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, p pagination.Params) ([]ListItem, int, error)
}
