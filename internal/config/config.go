package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BlobProviderDropbox  = "dropbox"
	BlobProviderSupabase = "supabase"

	ArtifactBackendLocal = "local"
	ArtifactBackendS3    = "s3"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string
	RealtimeTable          string

	// Blob storage
	BlobProvider string
	BlobTimeout  time.Duration
	FolderRoot   string

	// Dropbox
	DropboxAppKey       string
	DropboxAppSecret    string
	DropboxAccessToken  string
	DropboxRefreshToken string
	DropboxRedirectURI  string
	DropboxAPIBaseURL   string
	DropboxContentURL   string
	DropboxOAuthURL     string

	// Local artifact store
	ArtifactBackend string
	ArtifactDir     string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string

	// Redis token cache; empty disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	blobTimeout, err := getDuration("BLOB_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "shoots"),
		RealtimeTable:          getEnv("REALTIME_TABLE", "workflow_events"),

		BlobProvider: getEnv("BLOB_PROVIDER", BlobProviderDropbox),
		BlobTimeout:  blobTimeout,
		FolderRoot:   getEnv("FOLDER_ROOT", "/RealEstatePhotos"),

		DropboxAppKey:       getEnv("DROPBOX_APP_KEY", ""),
		DropboxAppSecret:    getEnv("DROPBOX_APP_SECRET", ""),
		DropboxAccessToken:  getEnv("DROPBOX_ACCESS_TOKEN", ""),
		DropboxRefreshToken: getEnv("DROPBOX_REFRESH_TOKEN", ""),
		DropboxRedirectURI:  getEnv("DROPBOX_REDIRECT_URI", ""),
		DropboxAPIBaseURL:   getEnv("DROPBOX_API_URL", "https://api.dropboxapi.com/2"),
		DropboxContentURL:   getEnv("DROPBOX_CONTENT_URL", "https://content.dropboxapi.com/2"),
		DropboxOAuthURL:     getEnv("DROPBOX_OAUTH_URL", "https://api.dropboxapi.com/oauth2/token"),

		ArtifactBackend: getEnv("ARTIFACT_BACKEND", ArtifactBackendLocal),
		ArtifactDir:     getEnv("ARTIFACT_DIR", "./storage"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.BlobTimeout <= 0 {
		return fmt.Errorf("BLOB_TIMEOUT must be positive")
	}

	switch c.BlobProvider {
	case BlobProviderDropbox:
		if c.DropboxAccessToken == "" && c.DropboxRefreshToken == "" {
			return fmt.Errorf("DROPBOX_ACCESS_TOKEN or DROPBOX_REFRESH_TOKEN is required")
		}
		if c.DropboxRefreshToken != "" && (c.DropboxAppKey == "" || c.DropboxAppSecret == "") {
			return fmt.Errorf("DROPBOX_APP_KEY and DROPBOX_APP_SECRET are required to refresh tokens")
		}
	case BlobProviderSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.SupabasePublishableKey == "" {
			return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
		}
	default:
		return fmt.Errorf("unknown BLOB_PROVIDER %q", c.BlobProvider)
	}

	switch c.ArtifactBackend {
	case ArtifactBackendLocal:
		if c.ArtifactDir == "" {
			return fmt.Errorf("ARTIFACT_DIR is required")
		}
	case ArtifactBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_BACKEND %q", c.ArtifactBackend)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
