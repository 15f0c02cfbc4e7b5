package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-filevault/internal/interface/http"
	"github.com/oksasatya/go-ddd-filevault/internal/interface/middleware"
)

type AuthModule struct {
	Handler  *handlers.AuthHandler
	Identity *middleware.IdentityResolver
	Redis    *redis.Client
	Allow    middleware.AllowFunc
}

func NewAuthModule(h *handlers.AuthHandler, identity *middleware.IdentityResolver, rdb *redis.Client, allow middleware.AllowFunc) *AuthModule {
	return &AuthModule{Handler: h, Identity: identity, Redis: rdb, Allow: allow}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// credential endpoints are limited per IP and route
	credLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), m.Allow)

	rg.POST("/auth/register", credLimiter, m.Handler.Register)
	rg.POST("/auth/login", credLimiter, m.Handler.Login)
	rg.POST("/auth/me", m.Identity.Protect(m.Handler.Me))
}
