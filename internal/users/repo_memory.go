package users

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/pagination"
)

// MemoryRepo is an in-memory implementation of Repo. Email uniqueness is
// enforced under the repo mutex, mirroring the database constraint.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

// Create stores a new user, failing on a duplicate email.
func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: user with this email already exists", apperr.ErrConflict)
		}
	}
	r.users[user.ID] = user
	return nil
}

// GetByID returns a user by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	return user, nil
}

// GetByEmail returns a user by exact email match.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
}

// List returns a page of users ordered newest-first plus the total count.
func (r *MemoryRepo) List(ctx context.Context, page, limit int) ([]User, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	all := make([]User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	offset := pagination.Offset(page, limit)
	if limit <= 0 || offset < 0 || offset >= total {
		return []User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Update replaces the stored user, enforcing email uniqueness.
func (r *MemoryRepo) Update(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Email == user.Email {
			return fmt.Errorf("%w: user with this email already exists", apperr.ErrConflict)
		}
	}
	r.users[user.ID] = user
	return nil
}

// Delete removes the user permanently.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
