package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-filevault/config"
	"github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
	"github.com/oksasatya/go-ddd-filevault/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-filevault/pkg/helpers"
)

// Container carries the constructed components the router wires modules from.
// It is built once in main and passed down explicitly.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users repository.UserRepository
	Files repository.FileRepository
	Blobs repository.BlobStore

	Redis *redis.Client // nil disables rate limiting
	JWT   *helpers.JWTManager
}

// RateLimitBypass returns the allow func shared by every limiter.
func (c *Container) RateLimitBypass() middleware.AllowFunc {
	if c.Config != nil && c.Config.RateLimitSkipPrivate {
		return middleware.AllowPrivateIP()
	}
	return nil
}
