// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// IdentityConfig provides settings for the external identity service.
type IdentityConfig interface {
	GetAuthServiceURL() string
	GetIdentityTimeout() time.Duration
	GetIdentityFailOpen() bool
}

// CacheConfig provides settings for the identity lookup cache.
type CacheConfig interface {
	GetRedisURL() string
	GetIdentityCacheTTL() time.Duration
}

// SchedulerConfig provides settings for the background job queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// UploadConfig provides limits for evidence uploads.
type UploadConfig interface {
	GetMaxUploadSize() int64
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
}

// GCSConfig provides settings for Google Cloud Storage.
type GCSConfig interface {
	GetGCPProjectID() string
	GetGoogleCredentialsFile() string
}

// StorageConfig provides the object storage gateway settings.
type StorageConfig interface {
	UploadConfig
	MinIOConfig
	GCSConfig
	GetStorageBackend() string
	GetStorageBucket() string
	GetStorageFolder() string
	GetStoragePublicBaseURL() string
	GetSignedURLTTL() time.Duration
	IsStorageEnabled() bool
}

// Storage backends.
const (
	StorageBackendNone  = "none"
	StorageBackendMinIO = "minio"
	StorageBackendGCS   = "gcs"
)

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RateLimitRPS          float64
	RateLimitBurst        int
	AuthServiceURL        string
	IdentityTimeout       time.Duration
	IdentityFailOpen      bool
	IdentityCacheTTL      time.Duration
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	MaxUploadSize         int64
	StorageBackend        string
	StorageBucket         string
	StorageFolder         string
	StoragePublicBaseURL  string
	SignedURLTTL          time.Duration
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	GCPProjectID          string
	GoogleCredentialsFile string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// IdentityConfig implementation
func (c *Config) GetAuthServiceURL() string         { return c.AuthServiceURL }
func (c *Config) GetIdentityTimeout() time.Duration { return c.IdentityTimeout }
func (c *Config) GetIdentityFailOpen() bool         { return c.IdentityFailOpen }

// CacheConfig and SchedulerConfig implementation
func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetIdentityCacheTTL() time.Duration { return c.IdentityCacheTTL }
func (c *Config) GetRedisTLSInsecure() bool          { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string          { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int           { return c.AsynqConcurrency }

// StorageConfig implementation
func (c *Config) GetMaxUploadSize() int64          { return c.MaxUploadSize }
func (c *Config) GetStorageBackend() string        { return c.StorageBackend }
func (c *Config) GetStorageBucket() string         { return c.StorageBucket }
func (c *Config) GetStorageFolder() string         { return c.StorageFolder }
func (c *Config) GetStoragePublicBaseURL() string  { return c.StoragePublicBaseURL }
func (c *Config) GetSignedURLTTL() time.Duration   { return c.SignedURLTTL }
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetGCPProjectID() string          { return c.GCPProjectID }
func (c *Config) GetGoogleCredentialsFile() string { return c.GoogleCredentialsFile }
func (c *Config) IsStorageEnabled() bool {
	return c.StorageBackend != "" && c.StorageBackend != StorageBackendNone
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if len(corsOrigins) == 0 || containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	failurePolicy := strings.ToLower(strings.TrimSpace(getEnv("IDENTITY_FAILURE_POLICY", "closed")))
	storageBackend := strings.ToLower(strings.TrimSpace(getEnv("STORAGE_BACKEND", StorageBackendNone)))

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitRPS:          mustFloat(getEnv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst:        mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		AuthServiceURL:        strings.TrimRight(getEnv("AUTH_SERVICE_URL", "http://localhost:8080"), "/"),
		IdentityTimeout:       mustDuration(getEnv("IDENTITY_TIMEOUT", "5s")),
		IdentityFailOpen:      failurePolicy == "open",
		IdentityCacheTTL:      mustDuration(getEnv("IDENTITY_CACHE_TTL", "60s")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		MaxUploadSize:         mustInt64(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		StorageBackend:        storageBackend,
		StorageBucket:         getEnv("STORAGE_BUCKET", ""),
		StorageFolder:         strings.Trim(getEnv("STORAGE_FOLDER", "scheduled-visits"), "/"),
		StoragePublicBaseURL:  strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
		SignedURLTTL:          mustDuration(getEnv("STORAGE_SIGNED_URL_TTL", "60m")),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		GCPProjectID:          getEnv("GCP_PROJECT_ID", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if failurePolicy != "closed" && failurePolicy != "open" {
		return nil, fmt.Errorf("IDENTITY_FAILURE_POLICY must be %q or %q, got %q", "closed", "open", failurePolicy)
	}
	if cfg.IdentityTimeout <= 0 {
		return nil, fmt.Errorf("IDENTITY_TIMEOUT must be a positive duration")
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be a positive number of bytes")
	}
	switch cfg.StorageBackend {
	case StorageBackendNone, "":
	case StorageBackendMinIO:
		if cfg.MinIOEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND is minio")
		}
	case StorageBackendGCS:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.IsStorageEnabled() && cfg.StorageBucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET is required when a storage backend is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
