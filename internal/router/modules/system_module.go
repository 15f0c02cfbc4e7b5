package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-filevault/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-filevault/pkg/response"
)

// SystemModule serves the liveness route and, when enabled, expvar metrics.
type SystemModule struct {
	Name  string
	Redis *redis.Client
	Debug bool
	Allow middleware.AllowFunc
}

func NewSystemModule(name string, rdb *redis.Client, debug bool, allow middleware.AllowFunc) *SystemModule {
	return &SystemModule{Name: name, Redis: rdb, Debug: debug, Allow: allow}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"name":   m.Name,
			"status": "ok",
			"endpoints": gin.H{
				"register":     "POST /api/auth/register",
				"login":        "POST /api/auth/login",
				"me":           "POST /api/auth/me",
				"files_list":   "GET /api/files",
				"files_upload": "POST /api/files/upload",
			},
		})
	})
	if m.Debug {
		rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), m.Allow)
		rg.GET("/api/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}
