package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development. MONGODB_URI and JWT_SECRET have no default.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Host    string
	Port    string
	GinMode string

	// MongoDB
	MongoURI            string
	MongoDB             string
	MongoConnectTimeout time.Duration

	// JWT
	JWTSecret     string
	JWTExpMinutes int

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Blob storage
	StorageDriver          string // local, gcs
	UploadDir              string
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// Redis (rate limiting); empty address disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitSkipPrivate bool
	TrustProxyHeaders    bool // honor CF-Connecting-IP / X-Forwarded-For

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "filevault"),
		Env:     getenv("APP_ENV", "development"),
		Host:    getenv("APP_HOST", "127.0.0.1"),
		Port:    getenv("APP_PORT", "8000"),
		GinMode: getenv("GIN_MODE", "release"),

		MongoURI:            getenv("MONGODB_URI", ""),
		MongoDB:             getenv("MONGODB_DB", "pcosew"),
		MongoConnectTimeout: getdur("MONGODB_CONNECT_TIMEOUT", 10*time.Second),

		JWTSecret:     getenv("JWT_SECRET", ""),
		JWTExpMinutes: getint("JWT_EXP_MINUTES", 120),

		CORSAllowedOrigins: getenv("CORS_ORIGIN", "http://localhost:5173,http://127.0.0.1:5173"),

		StorageDriver:          strings.ToLower(getenv("STORAGE_DRIVER", StorageLocal)),
		UploadDir:              getenv("UPLOAD_DIR", "uploads"),
		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		RateLimitSkipPrivate: getbool("RATE_LIMIT_SKIP_PRIVATE", false),
		TrustProxyHeaders:    getbool("TRUST_PROXY_HEADERS", false),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),
		HTTPLogEnabled:      getbool("HTTP_LOG_ENABLED", false),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTExpMinutes <= 0 {
		errs = append(errs, errors.New("JWT_EXP_MINUTES must be positive"))
	}
	switch c.StorageDriver {
	case StorageLocal:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must not be empty"))
		}
	case StorageGCS:
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required for the gcs storage driver"))
		}
	default:
		errs = append(errs, errors.New("STORAGE_DRIVER must be local or gcs"))
	}
	return errors.Join(errs...)
}

// Addr returns the host:port the HTTP server binds to
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// TokenTTL returns the identity token lifetime
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpMinutes) * time.Minute
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
