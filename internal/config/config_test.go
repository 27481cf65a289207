package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SupabaseJWTSecret:  "secret",
		BlobProvider:       BlobProviderDropbox,
		BlobTimeout:        time.Second,
		DropboxAccessToken: "token",
		ArtifactBackend:    ArtifactBackendLocal,
		ArtifactDir:        "/tmp/artifacts",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.SupabaseJWTSecret = "" },
			wantErr: "SUPABASE_JWT_SECRET",
		},
		{
			name: "dropbox without credentials",
			mutate: func(c *Config) {
				c.DropboxAccessToken = ""
			},
			wantErr: "DROPBOX_ACCESS_TOKEN",
		},
		{
			name: "refresh token needs app credentials",
			mutate: func(c *Config) {
				c.DropboxAccessToken = ""
				c.DropboxRefreshToken = "refresh"
			},
			wantErr: "DROPBOX_APP_KEY",
		},
		{
			name: "supabase provider needs url",
			mutate: func(c *Config) {
				c.BlobProvider = BlobProviderSupabase
			},
			wantErr: "SUPABASE_URL",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.BlobProvider = "ftp" },
			wantErr: "unknown BLOB_PROVIDER",
		},
		{
			name:    "s3 needs bucket",
			mutate:  func(c *Config) { c.ArtifactBackend = ArtifactBackendS3 },
			wantErr: "S3_BUCKET",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.BlobTimeout = 0 },
			wantErr: "BLOB_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("DROPBOX_ACCESS_TOKEN", "token")
	t.Setenv("BLOB_TIMEOUT", "5s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("FOLDER_ROOT", "/Shoots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.BlobTimeout)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "/Shoots", cfg.FolderRoot)
	assert.Equal(t, BlobProviderDropbox, cfg.BlobProvider)
	assert.Equal(t, ArtifactBackendLocal, cfg.ArtifactBackend)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("DROPBOX_ACCESS_TOKEN", "token")
	t.Setenv("BLOB_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOB_TIMEOUT")
}
