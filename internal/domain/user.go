package domain

import (
	"context"
	"time"
)

// User represents a registered account. New accounts start inactive and
// must be activated via the emailed token before they can log in.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns an inactive User. ID is typically set by the repository
// on create.
func NewUser(email, name, passwordHash, passwordSalt string, now time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// Token purposes. A token is only valid for the purpose it was issued with.
const (
	TokenPurposeSession  = "session"
	TokenPurposeActivate = "activate"
)

// TokenIssuer issues signed tokens (e.g. JWT) bound to a purpose.
type TokenIssuer interface {
	Issue(userID, email, purpose string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token for a purpose and returns the user ID.
type TokenVerifier interface {
	Verify(token, purpose string) (userID string, err error)
}

// UserRepository defines storage operations for users. Email matching is
// case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	SetActive(ctx context.Context, id string, updatedAt time.Time) error
}

// UserService defines registration, activation, and login.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Activate(ctx context.Context, token string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}
