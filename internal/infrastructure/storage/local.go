package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
)

var errBadName = errors.New("invalid object name")

// LocalStore keeps objects as flat files under Root.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", errBadName, name)
	}
	return filepath.Join(s.Root, name), nil
}

// Put writes to a temporary file in Root and renames it into place once fully written.
// The root directory is created on demand.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	dst, err := s.path(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Root, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		cleanup()
		return n, fmt.Errorf("write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("close content: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("move content: %w", err)
	}
	return n, nil
}

func (s *LocalStore) Open(_ context.Context, name string) (*repository.Object, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, repository.ErrObjectNotFound
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &repository.Object{ReadCloser: f, Size: info.Size()}, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repository.ErrObjectNotFound
		}
		return err
	}
	return nil
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

var _ repository.BlobStore = (*LocalStore)(nil)
