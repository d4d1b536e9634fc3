package users

import "context"

// Repo defines persistence operations for user accounts. Create must return
// apperr.ErrConflict on a duplicate email: the store's uniqueness constraint,
// not the service's pre-check, is the race-safe guarantee.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, page, limit int) ([]User, int, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
}
