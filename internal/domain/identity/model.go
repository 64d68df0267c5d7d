package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user account can hold.
const (
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// User maps to the users table.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
