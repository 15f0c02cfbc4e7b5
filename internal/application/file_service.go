package application

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
	"github.com/oksasatya/go-ddd-filevault/pkg/helpers"
)

const defaultMime = "application/octet-stream"

// PartReader yields multipart parts; *multipart.Reader satisfies it.
type PartReader interface {
	NextPart() (*multipart.Part, error)
}

// FileService manages file metadata and content, always scoped to the caller's identity.
type FileService struct {
	Repo   repo.FileRepository
	Blobs  repo.BlobStore
	Logger *logrus.Logger

	now     func() time.Time
	newName func(sanitized string) string
}

func NewFileService(repo repo.FileRepository, blobs repo.BlobStore, logger *logrus.Logger) *FileService {
	return &FileService{Repo: repo, Blobs: blobs, Logger: logger, now: time.Now, newName: storedName}
}

// storedName prefixes the sanitized client name with a fresh uuid.
func storedName(sanitized string) string {
	return uuid.NewString() + "_" + sanitized
}

// Upload stores the first part of mr and ignores anything after it: one file per request.
// Content is written completely before the metadata row is inserted, and removed again
// if the insert fails.
func (s *FileService) Upload(ctx context.Context, id entity.Identity, mr PartReader) (*entity.File, error) {
	part, err := mr.NextPart()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, BadRequest(MsgNoFile)
		}
		return nil, BadRequest(MsgInvalidMultipart)
	}
	defer func() { _ = part.Close() }()

	name := helpers.SanitizeFilename(part.FileName())
	if name == "" {
		name = helpers.DefaultFilename
	}
	mime := strings.TrimSpace(part.Header.Get("Content-Type"))
	if mime == "" {
		mime = defaultMime
	}
	stored := s.newName(name)
	fields := logrus.Fields{"user_id": id.UserID, "stored_name": stored}

	size, err := s.Blobs.Put(ctx, stored, part)
	if err != nil {
		helpers.LogError(s.Logger, "write file content failed", err, fields)
		return nil, internalf("write content", err)
	}

	now := s.clock().UTC()
	f := &entity.File{
		OwnerID:      id.UserID,
		OriginalName: name,
		StoredName:   stored,
		Mime:         mime,
		Size:         size,
		Visibility:   entity.VisibilityPrivate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		helpers.LogError(s.Logger, "insert file failed", err, fields)
		if dErr := s.Blobs.Delete(ctx, stored); dErr != nil {
			helpers.LogError(s.Logger, "rollback file content failed", dErr, fields)
		}
		return nil, internalf("insert file", err)
	}
	return f, nil
}

// List returns the caller's files in storage order.
func (s *FileService) List(ctx context.Context, id entity.Identity) ([]*entity.File, error) {
	files, err := s.Repo.ListByOwner(ctx, id.UserID)
	if err != nil {
		helpers.LogError(s.Logger, "list files failed", err, logrus.Fields{"user_id": id.UserID})
		return nil, internalf("list files", err)
	}
	return files, nil
}

// Download returns the metadata and the open content. The caller closes the content.
// Content size comes from the blob store, not the metadata row.
func (s *FileService) Download(ctx context.Context, id entity.Identity, fileID string) (*entity.File, *repo.Object, error) {
	f, err := s.Repo.GetOwned(ctx, fileID, id.UserID)
	if err != nil {
		return nil, nil, s.lookupErr(err, id, fileID)
	}
	obj, err := s.Blobs.Open(ctx, f.StoredName)
	if err != nil {
		if errors.Is(err, repo.ErrObjectNotFound) {
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{"file_id": f.ID, "stored_name": f.StoredName}).
					Warn("file metadata exists but content is missing")
			}
			return nil, nil, NotFound(MsgContentMissing)
		}
		helpers.LogError(s.Logger, "open file content failed", err, logrus.Fields{"file_id": f.ID})
		return nil, nil, internalf("open content", err)
	}
	if obj.Size != f.Size && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"file_id": f.ID, "stored_size": f.Size, "content_size": obj.Size}).
			Warn("file content size differs from metadata")
	}
	return f, obj, nil
}

// ParseVisibility accepts "public" or "private" in any case, surrounding space ignored.
func ParseVisibility(raw string) (entity.Visibility, bool) {
	v := entity.Visibility(strings.ToLower(strings.TrimSpace(raw)))
	switch v {
	case entity.VisibilityPublic, entity.VisibilityPrivate:
		return v, true
	}
	return "", false
}

// SetVisibility updates the flag and updated_at together.
func (s *FileService) SetVisibility(ctx context.Context, id entity.Identity, fileID, raw string) (entity.Visibility, error) {
	v, ok := ParseVisibility(raw)
	if !ok {
		return "", BadRequest(MsgInvalidVisibility)
	}
	if err := s.Repo.SetVisibility(ctx, fileID, id.UserID, v, s.clock().UTC()); err != nil {
		return "", s.lookupErr(err, id, fileID)
	}
	return v, nil
}

// Delete removes content then metadata. Content removal failures are logged and ignored;
// the metadata row is authoritative.
func (s *FileService) Delete(ctx context.Context, id entity.Identity, fileID string) error {
	f, err := s.Repo.GetOwned(ctx, fileID, id.UserID)
	if err != nil {
		return s.lookupErr(err, id, fileID)
	}
	if err := s.Blobs.Delete(ctx, f.StoredName); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("file_id", f.ID).Warn("remove file content failed")
	}
	if err := s.Repo.DeleteOwned(ctx, fileID, id.UserID); err != nil {
		return s.lookupErr(err, id, fileID)
	}
	return nil
}

func (s *FileService) lookupErr(err error, id entity.Identity, fileID string) error {
	switch {
	case errors.Is(err, repo.ErrInvalidID):
		return BadRequest(MsgInvalidFileID)
	case errors.Is(err, repo.ErrNotFound):
		return NotFound(MsgFileNotFound)
	}
	helpers.LogError(s.Logger, "file lookup failed", err, logrus.Fields{"user_id": id.UserID, "file_id": fileID})
	return internalf("file lookup", err)
}

func (s *FileService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
