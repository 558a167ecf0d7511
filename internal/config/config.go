package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

const (
	UploadBackendDisk = "disk"
	UploadBackendS3   = "s3"
)

type Database struct {
	URL             string        `env:"DATABASE_URL,required,notEmpty"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	MigrateOnStart  bool          `env:"MIGRATE_ON_START" envDefault:"true"`
}

type Auth struct {
	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	RequireAuth bool          `env:"REQUIRE_AUTH" envDefault:"false"`
}

type S3 struct {
	Bucket       string        `env:"S3_BUCKET"`
	Region       string        `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint     string        `env:"S3_ENDPOINT"`
	AccessKey    string        `env:"S3_ACCESS_KEY"`
	SecretKey    string        `env:"S3_SECRET_KEY"`
	UsePathStyle bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
	PresignTTL   time.Duration `env:"S3_PRESIGN_TTL" envDefault:"15m"`
}

type Upload struct {
	Backend  string `env:"UPLOAD_BACKEND" envDefault:"disk"`
	Dir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	S3       S3
}

type Config struct {
	Port              string        `env:"APP_PORT" envDefault:"4000"`
	Env               string        `env:"APP_ENV" envDefault:"development"`
	CORSOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"10m"`

	Database Database
	Auth     Auth
	Upload   Upload
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	switch c.Upload.Backend {
	case UploadBackendDisk:
		if c.Upload.Dir == "" {
			return errors.New("UPLOAD_DIR must not be empty")
		}
	case UploadBackendS3:
		s3 := c.Upload.S3
		if s3.Bucket == "" || s3.AccessKey == "" || s3.SecretKey == "" {
			return errors.New("S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY are required when UPLOAD_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.Upload.Backend)
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}
