package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/mediscript/mediscript/internal/platform/auth"
)

// ErrInvalidCredentials is returned on a failed login. The cause (unknown
// email vs wrong password) is deliberately not distinguished.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password")

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

var validRoles = map[string]bool{
	RoleDoctor: true, RoleAdmin: true,
}

// Signup registers a new user. The email is normalized to lower case and
// the password is stored as a bcrypt hash.
func (s *Service) Signup(ctx context.Context, name, email, password, role string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 150 {
		return nil, fmt.Errorf("name must be between 1 and 150 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) > 150 {
		return nil, fmt.Errorf("email must be at most 150 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(password) < 8 || len(password) > 100 {
		return nil, fmt.Errorf("password must be between 8 and 100 characters")
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}
