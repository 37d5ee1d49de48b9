package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WORKLOG_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Persist.Timeout)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worklog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: redis
  redis:
    addr: redis:6379
    db: 2
blob:
  driver: s3
  s3:
    bucket: exports
persist:
  timeout: 2s
log:
  mode: dev
`), 0o600))

	t.Setenv("WORKLOG_REDIS_PREFIX", "wl")
	t.Setenv("WORKLOG_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("WORKLOG_PERSIST_QUEUE", "8")
	t.Setenv("WORKLOG_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, "wl", cfg.Storage.Redis.Prefix)
	assert.Equal(t, "s3", cfg.Blob.Driver)
	assert.Equal(t, "exports", cfg.Blob.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.Blob.S3.Region, "unset yaml keys keep defaults")
	assert.True(t, cfg.Blob.S3.PathStyle)
	assert.Equal(t, 8, cfg.Persist.QueueSize)
	assert.Equal(t, 2*time.Second, cfg.Persist.Timeout)
	assert.Equal(t, "dev", cfg.Log.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: 127.0.0.1:9000\n"), 0o600))
	t.Setenv("WORKLOG_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("WORKLOG_CONFIG", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage: ["), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("WORKLOG_STORAGE_DRIVER", "mongo")
	t.Setenv("WORKLOG_PERSIST_TIMEOUT", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "WORKLOG_PERSIST_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "mongo"
	cfg.Blob.Driver = "gcs"
	cfg.Log.Mode = "verbose"
	cfg.Persist.QueueSize = 0
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"storage driver", "blob driver", "log mode", "queue size"} {
		assert.ErrorContains(t, err, want)
	}
	assert.NoError(t, Default().Validate())
}

func TestAllowOriginsFromEnv(t *testing.T) {
	t.Setenv("WORKLOG_CONFIG", "")
	t.Setenv("WORKLOG_HTTP_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowOrigins)
}
