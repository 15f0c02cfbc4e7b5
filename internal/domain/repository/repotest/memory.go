// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
	"github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
)

// Users is a concurrency-safe UserRepository keyed by id with a unique email constraint.
type Users struct {
	mu    sync.Mutex
	byID  map[string]*entity.User
	Err   error // returned by every call when set
	Calls int
}

func NewUsers() *Users {
	return &Users{byID: map[string]*entity.User{}}
}

func (r *Users) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID().Hex()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

// Put stores u as-is, bypassing the email check. Useful for legacy records.
func (r *Users) Put(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	cp := *u
	r.byID[u.ID] = &cp
}

func (r *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) EnsureIndexes(context.Context) error { return r.Err }

// Files is a concurrency-safe FileRepository. Ids must be ObjectID hex strings.
type Files struct {
	mu   sync.Mutex
	rows map[string]*entity.File
	// order keeps insertion order for ListByOwner
	order []string

	CreateErr error
	Err       error // returned by every other call when set
}

func NewFiles() *Files {
	return &Files{rows: map[string]*entity.File{}}
}

func (r *Files) Create(_ context.Context, f *entity.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	f.ID = primitive.NewObjectID().Hex()
	cp := *f
	r.rows[f.ID] = &cp
	r.order = append(r.order, f.ID)
	return nil
}

func (r *Files) ListByOwner(_ context.Context, ownerID string) ([]*entity.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []*entity.File{}
	for _, id := range r.order {
		if f, ok := r.rows[id]; ok && f.OwnerID == ownerID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *Files) GetOwned(_ context.Context, id, ownerID string) (*entity.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	cp := *f
	return &cp, nil
}

func (r *Files) SetVisibility(_ context.Context, id, ownerID string, v entity.Visibility, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.owned(id, ownerID)
	if err != nil {
		return err
	}
	f.Visibility = v
	f.UpdatedAt = updatedAt
	return nil
}

func (r *Files) DeleteOwned(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.owned(id, ownerID); err != nil {
		return err
	}
	delete(r.rows, id)
	return nil
}

func (r *Files) EnsureIndexes(context.Context) error { return r.Err }

// Len returns the number of stored rows.
func (r *Files) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *Files) owned(id, ownerID string) (*entity.File, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if !primitive.IsValidObjectID(id) {
		return nil, repository.ErrInvalidID
	}
	f, ok := r.rows[id]
	if !ok || f.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return f, nil
}

var (
	_ repository.UserRepository = (*Users)(nil)
	_ repository.FileRepository = (*Files)(nil)
)
