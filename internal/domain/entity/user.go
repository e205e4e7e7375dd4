package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns categories, series and entries.
// User lifecycle is managed outside this service; the engine only needs the
// identity for ownership scoping and reference checks.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

// NewUser creates a new User entity.
func NewUser(email, name string) *User {
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
