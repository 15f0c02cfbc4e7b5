package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-filevault/internal/interface/http"
	"github.com/oksasatya/go-ddd-filevault/internal/interface/middleware"
)

type FileModule struct {
	Handler  *handlers.FileHandler
	Identity *middleware.IdentityResolver
	Redis    *redis.Client
	Allow    middleware.AllowFunc
}

func NewFileModule(h *handlers.FileHandler, identity *middleware.IdentityResolver, rdb *redis.Client, allow middleware.AllowFunc) *FileModule {
	return &FileModule{Handler: h, Identity: identity, Redis: rdb, Allow: allow}
}

func (m *FileModule) Register(rg *gin.RouterGroup) {
	files := rg.Group("/files")
	files.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), m.Allow))

	protect := m.Identity.Protect
	files.POST("/upload", protect(m.Handler.Upload))
	files.GET("", protect(m.Handler.List))
	files.GET("/:id/download", protect(m.Handler.Download))
	files.PATCH("/:id/visibility", protect(m.Handler.SetVisibility))
	files.DELETE("/:id", protect(m.Handler.Delete))
}
