package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
)

// GCSStore keeps objects in a Google Cloud Storage bucket under Prefix.
type GCSStore struct {
	client *gcs.Client
	Bucket string
	Prefix string
}

func NewGCSStore(client *gcs.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{client: client, Bucket: bucket, Prefix: prefix}
}

func (s *GCSStore) object(name string) *gcs.ObjectHandle {
	return s.client.Bucket(s.Bucket).Object(s.Prefix + name)
}

// Put uploads r. The object only becomes visible when the writer closes successfully,
// so a failed copy leaves nothing behind.
func (s *GCSStore) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := s.object(name).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	wc.ContentType = "application/octet-stream"
	n, err := io.Copy(wc, r)
	if err != nil {
		cancel()
		_ = wc.Close()
		return n, err
	}
	if err := wc.Close(); err != nil {
		return n, err
	}
	return n, nil
}

func (s *GCSStore) Open(ctx context.Context, name string) (*repository.Object, error) {
	rc, err := s.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &repository.Object{ReadCloser: rc, Size: rc.Attrs.Size}, nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	err := s.object(name).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return repository.ErrObjectNotFound
	}
	return err
}

var _ repository.BlobStore = (*GCSStore)(nil)
