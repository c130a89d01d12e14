package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel  int      `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat string   `env:"LOG_FORMAT" envDefault:"text"`
	HTTP      HTTP     `envPrefix:"HTTP_"`
	GRPC      GRPC     `envPrefix:"GRPC_"`
	App       App      `envPrefix:"APP_"`
	Runtime   Runtime  `envPrefix:"RUNTIME_"`
	Download  Download `envPrefix:"DOWNLOAD_"`
	Database  Database `envPrefix:"DATABASE_"`
	JWT       JWT      `envPrefix:"JWT_"`
	Storage   Storage  `envPrefix:"MINIO_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Host               string `env:"HOST" envDefault:"0.0.0.0"`
	Port               string `env:"PORT" envDefault:"8000"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// Address returns the host:port pair the HTTP server binds to.
func (h HTTP) Address() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// GRPC contains gRPC health endpoint parameters.
type GRPC struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Port    string `env:"PORT" envDefault:"50051"`
}

// App contains application filesystem layout.
type App struct {
	Root        string `env:"ROOT" envDefault:"."`
	DownloadDir string `env:"DOWNLOAD_DIR" envDefault:"download"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"static"`
}

// DownloadPath returns the download directory resolved against the root.
func (a App) DownloadPath() string {
	return resolve(a.Root, a.DownloadDir)
}

// StaticPath returns the static directory resolved against the root.
func (a App) StaticPath() string {
	return resolve(a.Root, a.StaticDir)
}

func resolve(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// Runtime contains process identity constraints.
type Runtime struct {
	User      string `env:"USER"`
	AllowRoot bool   `env:"ALLOW_ROOT" envDefault:"false"`
}

// Download contains downloader parameters.
type Download struct {
	MaxFileSizeMB    int           `env:"MAX_FILE_SIZE_MB" envDefault:"50"`
	DefaultSizeMB    int           `env:"DEFAULT_SIZE_MB" envDefault:"15"`
	YTDLPPath        string        `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	FFmpegPath       string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	ThumbnailTimeout time.Duration `env:"THUMBNAIL_TIMEOUT" envDefault:"10s"`
}

// Database contains database connection parameters. Empty DSN keeps tasks in memory.
type Database struct {
	DSN string `env:"DSN"`
}

// JWT contains admin token parameters.
type JWT struct {
	Secret   string        `env:"SECRET"`
	AdminTTL time.Duration `env:"ADMIN_TTL" envDefault:"24h"`
}

// Storage contains object storage parameters.
type Storage struct {
	Enabled   bool   `env:"ENABLED" envDefault:"false"`
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"audiograb-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"audiograb-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"audiograb-files"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.MaxFileSizeMB <= 0 {
		return fmt.Errorf("DOWNLOAD_MAX_FILE_SIZE_MB must be positive, got %d", c.Download.MaxFileSizeMB)
	}
	if c.Download.DefaultSizeMB <= 0 || c.Download.DefaultSizeMB > c.Download.MaxFileSizeMB {
		return fmt.Errorf("DOWNLOAD_DEFAULT_SIZE_MB must be within 1..%d, got %d", c.Download.MaxFileSizeMB, c.Download.DefaultSizeMB)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
