package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-filevault/internal/application"
	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
	"github.com/oksasatya/go-ddd-filevault/pkg/response"
)

type FileHandler struct {
	Svc    *application.FileService
	Logger *logrus.Logger
}

func NewFileHandler(svc *application.FileService, logger *logrus.Logger) *FileHandler {
	return &FileHandler{Svc: svc, Logger: logger}
}

// fileOut is the public projection; stored_name is never exposed.
type fileOut struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	OriginalName string    `json:"original_name"`
	Mime         string    `json:"mime"`
	Size         int64     `json:"size"`
	Visibility   string    `json:"visibility"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toFileOut(f *entity.File) fileOut {
	return fileOut{
		ID:           f.ID,
		OwnerID:      f.OwnerID,
		OriginalName: f.OriginalName,
		Mime:         f.Mime,
		Size:         f.Size,
		Visibility:   string(f.Visibility),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

// Upload POST /api/files/upload (multipart, first part only)
func (h *FileHandler) Upload(c *gin.Context, id entity.Identity) {
	mr, err := c.Request.MultipartReader()
	if err != nil {
		fail(c, h.Logger, application.BadRequest(application.MsgInvalidMultipart))
		return
	}
	f, err := h.Svc.Upload(c.Request.Context(), id, mr)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toFileOut(f))
}

// List GET /api/files
func (h *FileHandler) List(c *gin.Context, id entity.Identity) {
	files, err := h.Svc.List(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]fileOut, 0, len(files))
	for _, f := range files {
		out = append(out, toFileOut(f))
	}
	response.Success(c, http.StatusOK, out)
}

// Download GET /api/files/:id/download
func (h *FileHandler) Download(c *gin.Context, id entity.Identity) {
	f, obj, err := h.Svc.Download(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer func() { _ = obj.Close() }()

	c.DataFromReader(http.StatusOK, obj.Size, f.Mime, obj, map[string]string{
		"Content-Disposition": contentDisposition(f.OriginalName),
	})
}

// SetVisibility PATCH /api/files/:id/visibility
func (h *FileHandler) SetVisibility(c *gin.Context, id entity.Identity) {
	var req visibilityRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.SetVisibility(c.Request.Context(), id, c.Param("id"), req.Visibility)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true, "visibility": v})
}

// Delete DELETE /api/files/:id
func (h *FileHandler) Delete(c *gin.Context, id entity.Identity) {
	if err := h.Svc.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

var dispositionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func contentDisposition(name string) string {
	return `attachment; filename="` + dispositionEscaper.Replace(name) + `"`
}
