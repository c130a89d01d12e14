package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestNewConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTP.Address())
	assert.Equal(t, false, cfg.HTTP.EnableHTTPS)
	assert.Equal(t, "cert.pem", cfg.HTTP.CertFileName)
	assert.Equal(t, "key.pem", cfg.HTTP.PrivateKeyFileName)
	assert.Equal(t, false, cfg.GRPC.Enabled)
	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.Equal(t, "download", cfg.App.DownloadPath())
	assert.Equal(t, "static", cfg.App.StaticPath())
	assert.Equal(t, "", cfg.Runtime.User)
	assert.Equal(t, false, cfg.Runtime.AllowRoot)
	assert.Equal(t, 50, cfg.Download.MaxFileSizeMB)
	assert.Equal(t, 15, cfg.Download.DefaultSizeMB)
	assert.Equal(t, "yt-dlp", cfg.Download.YTDLPPath)
	assert.Equal(t, "ffmpeg", cfg.Download.FFmpegPath)
	assert.Equal(t, 10*time.Second, cfg.Download.ThumbnailTimeout)
	assert.Equal(t, "", cfg.Database.DSN)
	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AdminTTL)
	assert.Equal(t, false, cfg.Storage.Enabled)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "audiograb-files", cfg.Storage.Bucket)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "log override",
			envVars: map[string]string{
				"LOG_LEVEL":  "-4",
				"LOG_FORMAT": "json",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, -4, cfg.LogLevel)
				assert.Equal(t, "json", cfg.LogFormat)
			},
		},
		{
			name: "http config override",
			envVars: map[string]string{
				"HTTP_HOST":         "127.0.0.1",
				"HTTP_PORT":         "9090",
				"HTTP_ENABLE_HTTPS": "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Address())
				assert.Equal(t, true, cfg.HTTP.EnableHTTPS)
			},
		},
		{
			name: "app layout override",
			envVars: map[string]string{
				"APP_ROOT":         "/app",
				"APP_DOWNLOAD_DIR": "dl",
				"APP_STATIC_DIR":   "/srv/static",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, filepath.Join("/app", "dl"), cfg.App.DownloadPath())
				assert.Equal(t, "/srv/static", cfg.App.StaticPath())
			},
		},
		{
			name: "runtime identity override",
			envVars: map[string]string{
				"RUNTIME_USER":       "appuser",
				"RUNTIME_ALLOW_ROOT": "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "appuser", cfg.Runtime.User)
				assert.Equal(t, true, cfg.Runtime.AllowRoot)
			},
		},
		{
			name: "download override",
			envVars: map[string]string{
				"DOWNLOAD_MAX_FILE_SIZE_MB":  "100",
				"DOWNLOAD_DEFAULT_SIZE_MB":   "20",
				"DOWNLOAD_THUMBNAIL_TIMEOUT": "3s",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, 100, cfg.Download.MaxFileSizeMB)
				assert.Equal(t, 20, cfg.Download.DefaultSizeMB)
				assert.Equal(t, 3*time.Second, cfg.Download.ThumbnailTimeout)
			},
		},
		{
			name: "storage config override",
			envVars: map[string]string{
				"MINIO_ENABLED":     "true",
				"MINIO_ENDPOINT":    "minio.example.com:9000",
				"MINIO_BUCKET_NAME": "custom-bucket",
				"MINIO_USE_SSL":     "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, true, cfg.Storage.Enabled)
				assert.Equal(t, "minio.example.com:9000", cfg.Storage.Endpoint)
				assert.Equal(t, "custom-bucket", cfg.Storage.Bucket)
				assert.Equal(t, true, cfg.Storage.UseSSL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			require.NoError(t, err)

			tt.expected(cfg)
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{name: "non-positive max size", envVars: map[string]string{"DOWNLOAD_MAX_FILE_SIZE_MB": "0"}},
		{name: "default above max", envVars: map[string]string{"DOWNLOAD_DEFAULT_SIZE_MB": "51"}},
		{name: "unknown log format", envVars: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "empty jwt secret", envVars: map[string]string{"JWT_SECRET": ""}},
		{name: "malformed duration", envVars: map[string]string{"DOWNLOAD_THUMBNAIL_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
