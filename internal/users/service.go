package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/auth"
	"docvault-backend/internal/shared/pagination"
)

// Service contains the user-administration business logic. Every operation is
// gated on the access policy with the explicit actor threaded in by the caller.
type Service struct {
	Repo       Repo
	BcryptCost int
}

// NewService constructs a Service.
func NewService(repo Repo, bcryptCost int) *Service {
	return &Service{Repo: repo, BcryptCost: bcryptCost}
}

// CreateInput carries the fields for account creation.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      policy.Role
}

// UpdateInput is a partial patch; nil fields are left unchanged.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Create provisions a new account. Role defaults to viewer. The repo's
// uniqueness constraint is the authoritative duplicate guard; the pre-check
// only gives a friendlier fast path.
func (s *Service) Create(ctx context.Context, actor policy.Actor, in CreateInput) (User, error) {
	if err := s.authorize(actor); err != nil {
		return User{}, err
	}
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return User{}, fmt.Errorf("%w: user with this email already exists", apperr.ErrConflict)
	}

	role := in.Role
	if role == "" {
		role = policy.RoleViewer
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", apperr.ErrInvalidInput, in.Role)
	}

	hash, err := auth.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// List returns a page of accounts ordered newest-first.
func (s *Service) List(ctx context.Context, actor policy.Actor, page, limit int) ([]User, int, int, error) {
	if err := s.authorize(actor); err != nil {
		return nil, 0, 0, err
	}
	list, total, err := s.Repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	return list, total, pagination.PageCount(total, limit), nil
}

// Update applies a partial patch. An email change is checked for uniqueness;
// an unchanged email skips the check.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id string, in UpdateInput) (User, error) {
	if err := s.authorize(actor); err != nil {
		return User{}, err
	}
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.Email != nil && *in.Email != user.Email {
		if _, err := s.Repo.GetByEmail(ctx, *in.Email); err == nil {
			return User{}, fmt.Errorf("%w: user with this email already exists", apperr.ErrConflict)
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateRole replaces the account's role.
func (s *Service) UpdateRole(ctx context.Context, actor policy.Actor, id string, role policy.Role) (User, error) {
	if err := s.authorize(actor); err != nil {
		return User{}, err
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", apperr.ErrInvalidInput, role)
	}
	return s.setField(ctx, id, func(user *User) { user.Role = role })
}

// Activate enables the account for login.
func (s *Service) Activate(ctx context.Context, actor policy.Actor, id string) (User, error) {
	if err := s.authorize(actor); err != nil {
		return User{}, err
	}
	return s.setField(ctx, id, func(user *User) { user.IsActive = true })
}

// Deactivate disables the account; deactivated users fail login.
func (s *Service) Deactivate(ctx context.Context, actor policy.Actor, id string) (User, error) {
	if err := s.authorize(actor); err != nil {
		return User{}, err
	}
	return s.setField(ctx, id, func(user *User) { user.IsActive = false })
}

// Remove permanently deletes the account.
func (s *Service) Remove(ctx context.Context, actor policy.Actor, id string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) setField(ctx context.Context, id string, mutate func(*User)) (User, error) {
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	mutate(&user)
	user.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) authorize(actor policy.Actor) error {
	if d := policy.Decide(actor, "", policy.OpUserAdmin); !d.Allowed {
		return fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}
	return nil
}
