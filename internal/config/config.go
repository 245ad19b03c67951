package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const apiSuffix = "/api"

// Config holds all configuration for the intake client and the reference server
type Config struct {
	// Client configuration
	APIBaseOverride         string        `json:"api_base_override"`
	AppOrigin               string        `json:"app_origin"`
	APIBase                 string        `json:"api_base"`
	HTTPTimeout             time.Duration `json:"http_timeout"`
	UploadTimeout           time.Duration `json:"upload_timeout"`
	PreviewInvalidateOnEdit bool          `json:"preview_invalidate_on_edit"`

	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Redis configuration
	RedisURL        string        `json:"redis_url"`
	RedisPrefix     string        `json:"redis_prefix"`
	PreviewCacheTTL time.Duration `json:"preview_cache_ttl"`
	PreviewTimeout  time.Duration `json:"preview_timeout"`

	// Blob storage: "local" or "s3" (CloudFlare R2 or any S3-compatible endpoint)
	BlobBackend string `json:"blob_backend"`
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2Region    string `json:"r2_region"`

	// Storage
	StoragePath string `json:"storage_path"`
	DataDir     string `json:"data_dir"`
	MaxFileSize int64  `json:"max_file_size"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load reads the server configuration from the environment (and .env if
// present) and validates the server keys
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ClientOverrides are command line values that take precedence over the
// environment. Zero values leave the environment in charge.
type ClientOverrides struct {
	APIBase     string
	LogLevel    string
	HTTPTimeout time.Duration
}

// LoadClient reads the client configuration, applies the overrides, then
// resolves the API base. Server keys are not checked.
func LoadClient(o ClientOverrides) (*Config, error) {
	cfg := read()
	if strings.TrimSpace(o.APIBase) != "" {
		cfg.APIBaseOverride = o.APIBase
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.HTTPTimeout > 0 {
		cfg.HTTPTimeout = o.HTTPTimeout
	}

	base, err := ResolveAPIBase(cfg.APIBaseOverride, cfg.AppOrigin)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.APIBase = base

	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func read() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	return &Config{
		APIBaseOverride:         getEnv("API_BASE_URL", ""),
		AppOrigin:               getEnv("APP_ORIGIN", "http://localhost:8080"),
		HTTPTimeout:             getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		UploadTimeout:           getEnvAsDuration("UPLOAD_TIMEOUT", 10*time.Minute),
		PreviewInvalidateOnEdit: getEnvAsBool("PREVIEW_INVALIDATE_ON_EDIT", false),

		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPrefix:     getEnv("REDIS_PREFIX", "addconnect:"),
		PreviewCacheTTL: getEnvAsDuration("PREVIEW_CACHE_TTL", 24*time.Hour),
		PreviewTimeout:  getEnvAsDuration("PREVIEW_TIMEOUT", 8*time.Second),

		BlobBackend: getEnv("BLOB_BACKEND", "local"),
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", ""),
		R2Region:    getEnv("R2_REGION", "auto"),

		StoragePath: getEnv("STORAGE_PATH", "./data"),
		DataDir:     getEnv("DATA_DIR", os.TempDir()),
		MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10<<20), // 10MB

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// Validate checks the server keys
func (c *Config) Validate() error {
	switch c.BlobBackend {
	case "local":
	case "s3":
		if c.R2Bucket == "" {
			return fmt.Errorf("R2_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q (want local or s3)", c.BlobBackend)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize)
	}
	if c.PreviewTimeout <= 0 {
		return fmt.Errorf("PREVIEW_TIMEOUT must be positive")
	}
	return nil
}

// ValidateClient checks the keys the intake client uses
func (c *Config) ValidateClient() error {
	if c.HTTPTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT and UPLOAD_TIMEOUT must be positive")
	}
	return nil
}

// ResolveAPIBase picks the override when set, else the origin, strips the
// trailing slash and appends /api exactly once.
func ResolveAPIBase(override, origin string) (string, error) {
	base := strings.TrimSpace(override)
	if base == "" {
		base = strings.TrimSpace(origin)
	}
	if base == "" {
		return "", fmt.Errorf("neither API_BASE_URL nor APP_ORIGIN is set")
	}

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("api base %q is not an absolute URL", base)
	}

	base = strings.TrimRight(base, "/")
	if !strings.HasSuffix(base, apiSuffix) {
		base += apiSuffix
	}
	return base, nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
