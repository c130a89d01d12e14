package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	grpcrouter "github.com/dtroode/audiograb-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/audiograb-server/internal/api/grpc/server"
	"github.com/dtroode/audiograb-server/internal/api/http/handler"
	httprouter "github.com/dtroode/audiograb-server/internal/api/http/router"
	httpserver "github.com/dtroode/audiograb-server/internal/api/http/server"
	"github.com/dtroode/audiograb-server/internal/api/http/ws"
	"github.com/dtroode/audiograb-server/internal/bootstrap"
	"github.com/dtroode/audiograb-server/internal/config"
	"github.com/dtroode/audiograb-server/internal/downloader"
	"github.com/dtroode/audiograb-server/internal/logger"
	"github.com/dtroode/audiograb-server/internal/model"
	"github.com/dtroode/audiograb-server/internal/repository/memory"
	"github.com/dtroode/audiograb-server/internal/repository/postgres"
	"github.com/dtroode/audiograb-server/internal/server"
	"github.com/dtroode/audiograb-server/internal/service"
	"github.com/dtroode/audiograb-server/internal/storage/local"
	storage "github.com/dtroode/audiograb-server/internal/storage/minio"
	"github.com/dtroode/audiograb-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

// flags take precedence over HTTP_HOST and HTTP_PORT.
type flags struct {
	Host    string           `help:"Bind host, overrides HTTP_HOST."`
	Port    string           `help:"Bind port, overrides HTTP_PORT."`
	Version kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "audiograb: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run starts the service and blocks until ctx is done or a server fails.
// Any startup or serve failure is returned after the remaining servers stop.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	var cli flags
	parser, err := kong.New(&cli,
		kong.Name("audiograb"),
		kong.Description("Audio download service."),
		kong.Vars{"version": buildVersion},
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if cli.Host != "" {
		cfg.HTTP.Host = cli.Host
	}
	if cli.Port != "" {
		cfg.HTTP.Port = cli.Port
	}

	lg := logger.NewWithFormat(stdout, cfg.LogLevel, cfg.LogFormat)
	logAppVersion(lg)

	if _, err := bootstrap.New(lg).Run(bootstrap.Options{
		Root:         cfg.App.Root,
		Dirs:         []string{cfg.App.DownloadPath(), cfg.App.StaticPath()},
		ExpectedUser: cfg.Runtime.User,
		AllowRoot:    cfg.Runtime.AllowRoot,
	}); err != nil {
		return fmt.Errorf("failed to prepare runtime environment: %w", err)
	}

	fetcher, err := downloader.NewYTDLP(cfg.Download, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize downloader: %w", err)
	}

	store, closeStore, err := newDownloadStore(ctx, cfg.Database, lg)
	if err != nil {
		return err
	}
	defer closeStore()

	var archive model.Storage
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage client: %w", err)
		}
		archive = client
		lg.Info("archive storage enabled", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)
	}

	sl, err := server.NewSecurityLayer(cfg.HTTP)
	if err != nil {
		return fmt.Errorf("failed to initialize security layer: %w", err)
	}

	files := local.NewFileStore(cfg.App.DownloadPath())
	downloadService := service.NewDownload(store, fetcher, files, archive, cfg.Download.MaxFileSizeMB, lg)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AdminTTL)

	hub := ws.NewHub()
	router := httprouter.New(
		handler.NewDownload(downloadService, hub, cfg.Download.DefaultSizeMB, lg),
		handler.NewPages(cfg.App.StaticPath(), buildVersion),
		tokenManager,
		lg,
	)
	servers := []model.Server{httpserver.NewHTTPServer(router.Register(), cfg.HTTP.Address(), hub.CloseAll)}

	var health *grpcrouter.Router
	if cfg.GRPC.Enabled {
		health = grpcrouter.New(lg)
		servers = append(servers, grpcserver.NewGRPCServer(health.Register(), ":"+cfg.GRPC.Port))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		startErr error
	)
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			lg.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				lg.Error("failed to start server", "error", err, "address", s.Address())
				mu.Lock()
				startErr = errors.Join(startErr, fmt.Errorf("server %s: %w", s.Address(), err))
				mu.Unlock()
				cancel()
			}
		}(s)
	}

	<-ctx.Done()
	lg.Info("shutting down")

	if health != nil {
		health.Shutdown()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			lg.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	lg.Info("shutdown complete")

	return startErr
}

// newDownloadStore picks Postgres when a DSN is configured and memory otherwise.
func newDownloadStore(ctx context.Context, cfg config.Database, lg *logger.Logger) (model.DownloadStore, func(), error) {
	if cfg.DSN == "" {
		lg.Info("task store: memory")
		return memory.NewDownloadRepository(), func() {}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize task store: %w", err)
	}
	lg.Info("task store: postgres")

	return postgres.NewDownloadRepository(db), func() {
		if err := db.Close(); err != nil {
			lg.Error("failed to close task store", "error", err)
		}
	}, nil
}

func logAppVersion(lg *logger.Logger) {
	lg.Info(fmt.Sprintf("Build version: %s", buildVersion), "date", buildDate, "commit", buildCommit)
}
