package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:        tt.env,
				DBSSLMode:  tt.sslMode,
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "secure-password",
				Port:       "8080",
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateDriversAndStorage(t *testing.T) {
	base := func() *Config {
		return &Config{Port: "8000", JWTSecret: "secret", Env: "development"}
	}

	c := base()
	c.DBDriver = "sqlite"
	assert.Error(t, c.Validate(), "sqlite needs a DSN")
	c.DBDSN = "file::memory:"
	assert.NoError(t, c.Validate())

	c = base()
	c.DBDriver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.StorageBackend = "s3"
	assert.Error(t, c.Validate(), "s3 needs a bucket")
	c.S3Bucket = "media"
	assert.NoError(t, c.Validate())

	c = base()
	c.StorageBackend = "ftp"
	assert.Error(t, c.Validate())
}

func TestConfig_ProductionRejectsDefaultSecret(t *testing.T) {
	c := &Config{Port: "8000", Env: "production", JWTSecret: defaultJWTSecret, DBPassword: "strong", DBSSLMode: "require"}
	assert.Error(t, c.Validate())
}

func TestConfig_PageCacheTTL(t *testing.T) {
	c := &Config{}
	assert.Equal(t, 20*time.Second, c.PageCacheTTL())
	c.PageCacheTTLSeconds = 5
	assert.Equal(t, 5*time.Second, c.PageCacheTTL())
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "file::memory:?cache=shared")
	t.Setenv("MEDIA_URL", "/uploads")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "/uploads/", c.MediaURL)
	assert.Equal(t, 20, c.PageCacheTTLSeconds)
}
