// Package auth implements registration, login, and token issuance on top of
// the users repository.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/apperr"
	sharedauth "docvault-backend/internal/shared/auth"
	"docvault-backend/internal/users"
)

// Service wraps the credential/issuance flow.
type Service struct {
	Repo       users.Repo
	BcryptCost int
	TokenTTL   time.Duration
}

// NewService constructs a Service.
func NewService(repo users.Repo, bcryptCost int, tokenTTL time.Duration) *Service {
	return &Service{Repo: repo, BcryptCost: bcryptCost, TokenTTL: tokenTTL}
}

// RegisterInput carries the self-registration fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      policy.Role
}

// Register creates an account and issues a token for it. The repo's email
// uniqueness constraint remains authoritative under concurrent registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (users.User, string, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return users.User{}, "", fmt.Errorf("%w: user with this email already exists", apperr.ErrConflict)
	}

	role := in.Role
	if role == "" {
		role = policy.RoleViewer
	}
	if !role.Valid() {
		return users.User{}, "", fmt.Errorf("%w: unknown role %q", apperr.ErrInvalidInput, in.Role)
	}

	hash, err := sharedauth.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return users.User{}, "", err
	}

	now := time.Now().UTC()
	user := users.User{
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
		return users.User{}, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return users.User{}, "", err
	}
	return user, token, nil
}

// Login validates credentials and issues a token. Unknown email, wrong
// password, and deactivated account all fail with the same error so callers
// cannot probe which emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (users.User, string, error) {
	user, err := s.validateCredentials(ctx, email, password)
	if err != nil {
		return users.User{}, "", err
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return users.User{}, "", err
	}
	return user, token, nil
}

// Profile resolves the persisted account for the authenticated actor.
func (s *Service) Profile(ctx context.Context, actorID string) (users.User, error) {
	return s.Repo.GetByID(ctx, actorID)
}

// IssueToken encodes the user identity into a signed, time-bound token.
func (s *Service) IssueToken(user users.User) (string, error) {
	return sharedauth.SignJWT(sharedauth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}, s.TokenTTL)
}

func (s *Service) validateCredentials(ctx context.Context, email, password string) (users.User, error) {
	invalid := fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		// Burn a hash comparison so missing accounts take as long as
		// wrong passwords.
		_ = sharedauth.VerifyPassword("$2a$12$XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX", password)
		return users.User{}, invalid
	}
	if !user.IsActive {
		return users.User{}, invalid
	}
	if !sharedauth.VerifyPassword(user.PasswordHash, password) {
		return users.User{}, invalid
	}
	return user, nil
}
