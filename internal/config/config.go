package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Rate limit store kinds
const (
	RateLimitStoreMemory   = "memory"
	RateLimitStorePostgres = "postgres"
)

type Config struct {
	Env       Env
	Server    ServerConfig
	Minio     MinioConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	NATS      NATSConfig
	Database  DatabaseConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host           string        `envconfig:"SERVER_HOST" default:"localhost"`
	Port           string        `envconfig:"SERVER_PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

type MinioConfig struct {
	Endpoint   string `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName string `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY" required:"true"`
	Region     string `envconfig:"MINIO_REGION" default:"us-east-1"`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	// PublicURL is the endpoint readers use; derived from Endpoint when empty
	PublicURL string `envconfig:"MINIO_PUBLIC_URL"`
	// PublicRead grants anonymous GetObject on the bucket
	PublicRead bool `envconfig:"MINIO_PUBLIC_READ" default:"true"`
	// ObjectACL is sent as x-amz-acl on every write, for stores honouring object ACLs
	ObjectACL string `envconfig:"MINIO_OBJECT_ACL"`
}

// PublicEndpoint returns the base URL that object URLs are built on
func (m MinioConfig) PublicEndpoint() string {
	if m.PublicURL != "" {
		return strings.TrimRight(m.PublicURL, "/")
	}
	scheme := "http"
	if m.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, m.Endpoint)
}

type UploadConfig struct {
	MaxFileSize        int64  `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"41943040"`      // 40MB
	MultipartThreshold int64  `envconfig:"UPLOAD_MULTIPART_THRESHOLD" default:"5242880"` // 5MB
	PartSize           int64  `envconfig:"UPLOAD_PART_SIZE" default:"5242880"`           // 5MB, S3 minimum
	RetryCount         int    `envconfig:"UPLOAD_RETRY_COUNT" default:"3"`
	RetryDelayMs       int    `envconfig:"UPLOAD_RETRY_DELAY_MS" default:"500"`
	SpoolDir           string `envconfig:"UPLOAD_SPOOL_DIR"`
	SpoolMemoryBytes   int64  `envconfig:"UPLOAD_SPOOL_MEMORY_BYTES" default:"1048576"` // 1MB

	CleanupEvery time.Duration `envconfig:"UPLOAD_CLEANUP_EVERY" default:"1h"`
	StaleAfter   time.Duration `envconfig:"UPLOAD_STALE_AFTER" default:"24h"`
}

// RetryDelay is the minimum wait between two storage attempts
func (u UploadConfig) RetryDelay() time.Duration {
	return time.Duration(u.RetryDelayMs) * time.Millisecond
}

type RateLimitConfig struct {
	Points          int    `envconfig:"RATE_LIMIT_POINTS" default:"10"`
	DurationSeconds int    `envconfig:"RATE_LIMIT_DURATION" default:"60"`
	Store           string `envconfig:"RATE_LIMIT_STORE" default:"memory"`
}

// Window is the length of one rate limit window
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// NATSConfig is optional: an empty URL disables upload events
type NATSConfig struct {
	URL          string `envconfig:"NATS_URL"`
	StreamName   string `envconfig:"NATS_STREAM_NAME" default:"UPLOADS"`
	Subject      string `envconfig:"NATS_SUBJECT" default:"uploads.completed"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME" default:"upload-verifier"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER"`
	Password       string        `envconfig:"DB_PASSWORD"`
	Name           string        `envconfig:"DB_NAME"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// DSN builds the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the rules envconfig tags cannot express
func (c *Config) Validate() error {
	var errs []error

	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_FILE_SIZE must be positive"))
	}
	if c.Upload.MultipartThreshold <= 0 {
		errs = append(errs, errors.New("UPLOAD_MULTIPART_THRESHOLD must be positive"))
	}
	if c.Upload.PartSize < 5<<20 {
		errs = append(errs, errors.New("UPLOAD_PART_SIZE must be at least 5MB"))
	}
	if c.Upload.RetryCount < 1 {
		errs = append(errs, errors.New("UPLOAD_RETRY_COUNT must be at least 1"))
	}
	if c.Upload.RetryDelayMs < 0 {
		errs = append(errs, errors.New("UPLOAD_RETRY_DELAY_MS must not be negative"))
	}
	if c.Upload.CleanupEvery <= 0 || c.Upload.StaleAfter <= 0 {
		errs = append(errs, errors.New("UPLOAD_CLEANUP_EVERY and UPLOAD_STALE_AFTER must be positive"))
	}
	if c.RateLimit.Points < 1 || c.RateLimit.DurationSeconds < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_POINTS and RATE_LIMIT_DURATION must be positive"))
	}

	switch c.RateLimit.Store {
	case RateLimitStoreMemory:
	case RateLimitStorePostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DB_HOST, DB_USER and DB_NAME are required with RATE_LIMIT_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimit.Store))
	}

	return errors.Join(errs...)
}
