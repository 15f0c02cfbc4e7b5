package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("JWT_SECRET", "")

	c := Load()

	require.NotNil(t, c)
	assert.Equal(t, "127.0.0.1:8000", c.Addr())
	assert.Equal(t, "pcosew", c.MongoDB)
	assert.Equal(t, 120, c.JWTExpMinutes)
	assert.Equal(t, 2*time.Hour, c.TokenTTL())
	assert.Equal(t, StorageLocal, c.StorageDriver)
	assert.Equal(t, "uploads", c.UploadDir)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, c.CORSOrigins())
	assert.Empty(t, c.RedisAddr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_HOST", "0.0.0.0")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXP_MINUTES", "15")
	t.Setenv("CORS_ORIGIN", " http://a.test , ,http://b.test")
	t.Setenv("STORAGE_DRIVER", "GCS")
	t.Setenv("GCS_BUCKET", "blobs")

	c := Load()

	assert.Equal(t, "0.0.0.0:9090", c.Addr())
	assert.Equal(t, 15*time.Minute, c.TokenTTL())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins())
	assert.Equal(t, StorageGCS, c.StorageDriver)
	assert.NoError(t, c.Validate())
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("JWT_EXP_MINUTES", "soon")

	assert.Equal(t, 120, Load().JWTExpMinutes)
}

func TestValidateRequiresSecrets(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("JWT_SECRET", "")

	err := Load().Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestValidateStorageDriver(t *testing.T) {
	c := &Config{MongoURI: "mongodb://x", JWTSecret: "k", JWTExpMinutes: 1, StorageDriver: "ftp"}
	assert.Error(t, c.Validate())

	c.StorageDriver = StorageGCS
	assert.Error(t, c.Validate())

	c.GCSBucket = "b"
	assert.NoError(t, c.Validate())
}
