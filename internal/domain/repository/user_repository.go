package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrInvalidID      = errors.New("invalid id")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create assigns u.ID and persists u. A taken email yields ErrDuplicateEmail.
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	EnsureIndexes(ctx context.Context) error
}
