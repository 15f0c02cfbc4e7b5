package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-filevault/config"
	"github.com/oksasatya/go-ddd-filevault/internal/container"
	"github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
	"github.com/oksasatya/go-ddd-filevault/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-ddd-filevault/internal/infrastructure/storage"
	"github.com/oksasatya/go-ddd-filevault/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-filevault/internal/router"
	"github.com/oksasatya/go-ddd-filevault/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// MongoDB
	mc, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.MongoDB)

	users := mongodb.NewUserRepository(db)
	files := mongodb.NewFileRepository(db)
	ensureIndexes(ctx, logger, users, files)

	// Blob storage
	blobs, closeBlobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init blob storage: %v", err)
	}
	defer closeBlobs()

	// Redis (optional)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	} else {
		logger.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	c := &container.Container{
		Config: cfg,
		Logger: logger,
		Users:  users,
		Files:  files,
		Blobs:  blobs,
		Redis:  rdb,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL()),
	}

	// Gin engine and global middleware
	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		log.Fatalf("failed to configure trusted proxies: %v", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	corsCfg := cors.Config{
		AllowOrigins:  cfg.CORSOrigins(),
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// ensureIndexes logs failures instead of exiting; the server still runs without them.
func ensureIndexes(ctx context.Context, logger *logrus.Logger, ixs ...indexer) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, ix := range ixs {
		if err := ix.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("ensure indexes failed")
		}
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (repository.BlobStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageGCS:
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewGCSStore(client, cfg.GCSBucket, cfg.UploadDir+"/"), func() { _ = client.Close() }, nil
	default:
		return storage.NewLocalStore(cfg.UploadDir), func() {}, nil
	}
}
