// Package config loads worklog settings from defaults, an optional YAML file,
// and WORKLOG_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Blob    Blob    `yaml:"blob"`
	HTTP    HTTP    `yaml:"http"`
	Log     Log     `yaml:"log"`
	Persist Persist `yaml:"persist"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Driver      string `yaml:"driver"` // memory|sqlite|postgres|redis
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Redis       Redis  `yaml:"redis"`
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Blob selects the object store used for export artifacts.
type Blob struct {
	Driver string `yaml:"driver"` // fs|s3|memory
	FSRoot string `yaml:"fs_root"`
	S3     S3     `yaml:"s3"`
}

// S3 configures the S3 / MinIO driver.
type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// HTTP configures the API server.
type HTTP struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// Log configures the structured logger.
type Log struct {
	Mode  string `yaml:"mode"` // prod|dev
	Level string `yaml:"level"`
}

// Persist configures the background persistence queue.
type Persist struct {
	QueueSize int           `yaml:"queue_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: Storage{
			Driver:     "sqlite",
			SQLitePath: "worklog.db",
			Redis:      Redis{Addr: "localhost:6379", Prefix: "worklog"},
		},
		Blob: Blob{
			Driver: "fs",
			FSRoot: "./blobdata",
			S3:     S3{Region: "us-east-1"},
		},
		HTTP:    HTTP{Addr: ":8080"},
		Log:     Log{Mode: "prod", Level: "info"},
		Persist: Persist{QueueSize: 64, Timeout: 5 * time.Second},
	}
}

// Load builds the configuration. A non-empty path (or WORKLOG_CONFIG when path
// is empty) names a YAML file layered over the defaults; a missing file named
// only through the environment is an error too.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv("WORKLOG_CONFIG"))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown blob driver %q", c.Blob.Driver))
	}
	switch c.Log.Mode {
	case "prod", "dev":
	default:
		errs = append(errs, fmt.Errorf("unknown log mode %q", c.Log.Mode))
	}
	if c.Persist.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("persist queue size must be positive, got %d", c.Persist.QueueSize))
	}
	if c.Persist.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("persist timeout must be positive, got %s", c.Persist.Timeout))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Storage.Driver, "WORKLOG_STORAGE_DRIVER")
	setString(&cfg.Storage.SQLitePath, "WORKLOG_SQLITE_PATH")
	setString(&cfg.Storage.PostgresDSN, "WORKLOG_POSTGRES_DSN")
	setString(&cfg.Storage.Redis.Addr, "WORKLOG_REDIS_ADDR")
	setString(&cfg.Storage.Redis.Password, "WORKLOG_REDIS_PASSWORD")
	setString(&cfg.Storage.Redis.Prefix, "WORKLOG_REDIS_PREFIX")
	setString(&cfg.Blob.Driver, "WORKLOG_BLOB_DRIVER")
	setString(&cfg.Blob.FSRoot, "WORKLOG_BLOB_FS_ROOT")
	setString(&cfg.Blob.S3.Bucket, "WORKLOG_BLOB_S3_BUCKET")
	setString(&cfg.Blob.S3.Region, "WORKLOG_BLOB_S3_REGION")
	setString(&cfg.Blob.S3.Endpoint, "WORKLOG_BLOB_S3_ENDPOINT")
	setString(&cfg.HTTP.Addr, "WORKLOG_HTTP_ADDR")
	if v, ok := lookup("WORKLOG_HTTP_ALLOW_ORIGINS"); ok {
		cfg.HTTP.AllowOrigins = splitList(v)
	}
	setString(&cfg.Log.Mode, "WORKLOG_LOG_MODE")
	setString(&cfg.Log.Level, "WORKLOG_LOG_LEVEL")

	var errs []error
	if v, ok := lookup("WORKLOG_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WORKLOG_REDIS_DB: %w", err))
		} else {
			cfg.Storage.Redis.DB = db
		}
	}
	if v, ok := lookup("WORKLOG_BLOB_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WORKLOG_BLOB_S3_PATH_STYLE: %w", err))
		} else {
			cfg.Blob.S3.PathStyle = b
		}
	}
	if v, ok := lookup("WORKLOG_PERSIST_QUEUE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WORKLOG_PERSIST_QUEUE: %w", err))
		} else {
			cfg.Persist.QueueSize = n
		}
	}
	if v, ok := lookup("WORKLOG_PERSIST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WORKLOG_PERSIST_TIMEOUT: %w", err))
		} else {
			cfg.Persist.Timeout = d
		}
	}
	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
