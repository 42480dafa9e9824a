package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "local", c.UploadDriver)
	assert.Equal(t, 5, c.UploadMaxMB)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 60, c.RateLimitPerMinute)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("ADMIN_EMAILS", " root@example.com , ops@example.com ,")
	t.Setenv("UPLOAD_MAX_MB", "12")
	t.Setenv("S3_PUBLIC_URL", "https://cdn.example.com/")

	var c AppConfig
	applyDefaults(&c)
	applyEnvOverrides(&c)

	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, []string{"root@example.com", "ops@example.com"}, c.AdminEmails)
	assert.Equal(t, 12, c.UploadMaxMB)
	assert.Equal(t, "https://cdn.example.com", c.S3PublicURL)
}

func TestValidate(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	assert.ErrorIs(t, c.Validate(), ErrMissingJWTSecret)

	c.JWTSecret = "x"
	assert.NoError(t, c.Validate())

	c.DBDriver = "oracle"
	assert.Error(t, c.Validate())

	c.DBDriver = "sqlite"
	c.UploadDriver = "s3"
	assert.Error(t, c.Validate(), "s3 without bucket must be rejected")

	c.S3Bucket = "images"
	c.S3PublicURL = "https://cdn.example.com"
	assert.NoError(t, c.Validate())
}

func TestIsAdminEmail(t *testing.T) {
	c := AppConfig{AdminEmails: []string{"Root@Example.com"}}
	assert.True(t, c.IsAdminEmail("root@example.com"))
	assert.False(t, c.IsAdminEmail("alice@example.com"))
	assert.False(t, c.IsAdminEmail(""))
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"app": {"AppPort": "9000", "JWTSecret": "abc", "AdminEmails": ["a@b.c"]},
		"database": {"Driver": "sqlite", "DBName": "blog"},
		"upload": {"Driver": "local", "Dir": "/tmp/up", "MaxMB": 3},
		"s3": {"Bucket": "img", "UsePathStyle": true}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "abc", c.JWTSecret)
	assert.Equal(t, []string{"a@b.c"}, c.AdminEmails)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "/tmp/up", c.UploadDir)
	assert.Equal(t, 3, c.UploadMaxMB)
	assert.True(t, c.S3UsePathStyle)

	require.NoError(t, loadJSONConfig(filepath.Join(dir, "missing.json"), &c))

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	assert.Error(t, loadJSONConfig(path, &c))
}

func TestInitDatabaseSQLite(t *testing.T) {
	type widget struct {
		ID   uint
		Name string
	}
	c := AppConfig{DBDriver: "sqlite", DatabaseURI: "file::memory:", LogLevel: "silent"}
	db, err := InitDatabase(c, &widget{})
	require.NoError(t, err)
	defer CloseDatabase(db)

	require.NoError(t, db.Create(&widget{Name: "w"}).Error)
	var n int64
	require.NoError(t, db.Model(&widget{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestToGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, toGormLogLevel("debug"))
	assert.Equal(t, logger.Warn, toGormLogLevel("info"))
	assert.Equal(t, logger.Error, toGormLogLevel("error"))
	assert.Equal(t, logger.Silent, toGormLogLevel("silent"))
}
