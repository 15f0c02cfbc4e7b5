package repository

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// Object is an open blob. Size is the stored length reported by the backend.
type Object struct {
	io.ReadCloser
	Size int64
}

// BlobStore holds file content addressed by stored name.
type BlobStore interface {
	// Put streams r into the object name and returns the number of bytes written.
	// On failure no object is left behind under name.
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	// Open returns ErrObjectNotFound when the object does not exist.
	Open(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, name string) error
}
