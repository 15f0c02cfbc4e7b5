package router

import (
	"github.com/oksasatya/go-ddd-filevault/internal/application"
	"github.com/oksasatya/go-ddd-filevault/internal/container"
	handlers "github.com/oksasatya/go-ddd-filevault/internal/interface/http"
	"github.com/oksasatya/go-ddd-filevault/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-filevault/internal/router/modules"
)

type AuthModuleDeps struct {
	Service *application.UserService
	Handler *handlers.AuthHandler
}

type FileModuleDeps struct {
	Service *application.FileService
	Handler *handlers.FileHandler
}

func buildAuthDeps(c *container.Container) AuthModuleDeps {
	service := application.NewUserService(c.Users, c.JWT, c.Logger)
	return AuthModuleDeps{
		Service: service,
		Handler: handlers.NewAuthHandler(service, c.Logger),
	}
}

func buildFileDeps(c *container.Container) FileModuleDeps {
	service := application.NewFileService(c.Files, c.Blobs, c.Logger)
	return FileModuleDeps{
		Service: service,
		Handler: handlers.NewFileHandler(service, c.Logger),
	}
}

// InitModules wires every module from c and adds it to r.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	identity := middleware.NewIdentityResolver(c.JWT, c.Logger)
	allow := c.RateLimitBypass()
	name, debug := "filevault", false
	if c.Config != nil {
		name, debug = c.Config.AppName, c.Config.DebugMetricsEnabled
	}

	r.AddRoot(modules.NewSystemModule(name, c.Redis, debug, allow))
	r.Add(modules.NewAuthModule(buildAuthDeps(c).Handler, identity, c.Redis, allow))
	r.Add(modules.NewFileModule(buildFileDeps(c).Handler, identity, c.Redis, allow))
}
