package users

import (
	"time"

	"docvault-backend/internal/policy"
)

// User is the storage representation of an account. PasswordHash never leaves
// the service boundary; outward responses go through dto.go.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         policy.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
