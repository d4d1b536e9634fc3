package users

import (
	"time"

	"docvault-backend/internal/policy"
)

// UserResponse is the sanitized outward-facing representation of a user.
// The password hash is stripped here, at the boundary, not in the service.
type UserResponse struct {
	ID        string      `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      policy.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ToResponse sanitizes a user for the API boundary.
func ToResponse(user User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ListResponse is the paginated users payload.
type ListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
	Pages int            `json:"pages"`
}

type createUserRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=admin editor viewer"`
}

type updateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin editor viewer"`
}
