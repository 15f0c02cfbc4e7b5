package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
)

// FileRepository persists file metadata. Every lookup by id is scoped by owner,
// so a file owned by someone else behaves exactly like a missing one (ErrNotFound).
// Malformed ids yield ErrInvalidID.
type FileRepository interface {
	// Create assigns f.ID and persists f.
	Create(ctx context.Context, f *entity.File) error
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.File, error)
	GetOwned(ctx context.Context, id, ownerID string) (*entity.File, error)
	SetVisibility(ctx context.Context, id, ownerID string, v entity.Visibility, updatedAt time.Time) error
	DeleteOwned(ctx context.Context, id, ownerID string) error
	EnsureIndexes(ctx context.Context) error
}
