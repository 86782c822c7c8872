package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vertextoedge/validfiles/internal/adapter/filesystem"
	"github.com/vertextoedge/validfiles/internal/adapter/rediscache"
	"github.com/vertextoedge/validfiles/internal/adapter/sqlite"
	"github.com/vertextoedge/validfiles/internal/config"
	"github.com/vertextoedge/validfiles/internal/logger"
	"github.com/vertextoedge/validfiles/internal/service/files"
	"github.com/vertextoedge/validfiles/internal/service/journal"
	"github.com/vertextoedge/validfiles/internal/service/maintenance"
	"github.com/vertextoedge/validfiles/internal/service/server"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional, VALIDFILES_* env vars override)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Fields: cfg.Logging.Fields,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.L()
	zapLogger.Info("starting validfiles",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Initialize file store
	fsManager, err := filesystem.NewManagerWithBufferSize(cfg.Storage.RootDir, cfg.Storage.GetBufferSize())
	if err != nil {
		zapLogger.Fatal("failed to create filesystem manager", zap.Error(err))
	}
	if usage, err := fsManager.GetDiskUsage(); err == nil {
		zapLogger.Info("file store ready",
			zap.String("root_dir", cfg.Storage.RootDir),
			zap.String("disk_free", units.BytesSize(float64(usage.Free))),
			zap.Float64("disk_used_pct", usage.UsedPct))
	}

	// Open activity database
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}

	// Connect to the validity cache
	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Cache.GetDialTimeout())
	cache, err := rediscache.Open(connectCtx, &rediscache.Config{
		URL:          cfg.Cache.URL,
		PoolSize:     cfg.Cache.PoolSize,
		MinIdleConns: cfg.Cache.MinIdleConns,
		DialTimeout:  cfg.Cache.GetDialTimeout(),
		ReadTimeout:  cfg.Cache.GetReadTimeout(),
		WriteTimeout: cfg.Cache.GetWriteTimeout(),
	})
	connectCancel()
	if err != nil {
		store.Close()
		zapLogger.Fatal("failed to connect to validity cache", zap.Error(err))
	}
	zapLogger.Info("connected to validity cache", zap.String("url", cfg.Cache.URL))

	// Wire the file service; mutations go through the activity journal
	fileService := files.NewService(
		journal.NewRecorder(fsManager, store, logger.Named("journal")),
		cache,
		&files.Config{ScanCount: cfg.Cache.ScanCount},
		logger.Named("files"),
	)

	maintenanceService := maintenance.New(&maintenance.Config{
		CleanupInterval: cfg.Maintenance.GetCleanupInterval(),
		TempFileMaxAge:  cfg.Storage.GetTempFileMaxAge(),
		ActivityMaxAge:  cfg.Maintenance.GetActivityMaxAge(),
	}, fsManager, store, logger.Named("maintenance"))

	httpServer := server.New(&server.Config{
		BindAddr:      cfg.HTTP.BindAddr,
		ReadTimeout:   cfg.HTTP.GetReadTimeout(),
		WriteTimeout:  cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:   cfg.HTTP.GetIdleTimeout(),
		MaxUploadSize: cfg.HTTP.GetMaxUploadSize(),
	}, fileService, store, fsManager, logger.Named("http"))

	zapLogger.Info("starting services",
		zap.String("http_addr", cfg.HTTP.BindAddr),
		zap.String("max_upload_size", units.BytesSize(float64(cfg.HTTP.GetMaxUploadSize()))),
	)

	exitCode := run(context.Background(), zapLogger, cfg.HTTP.GetShutdownTimeout(), httpServer, maintenanceService)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	closeAll(closeCtx, zapLogger, cache, store)

	zapLogger.Info("application stopped", zap.Int("exit_code", exitCode))
	logger.Sync()
	os.Exit(exitCode)
}

type foreground interface {
	Start() error
	Stop(ctx context.Context) error
}

type background interface {
	Start(ctx context.Context) error
	Stop()
}

// run serves until a shutdown signal arrives or either component fails, then
// stops both within timeout. It returns the process exit code.
func run(ctx context.Context, log *zap.Logger, timeout time.Duration, httpServer foreground, worker background) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return worker.Start(gctx)
	})

	// Blocks until SIGINT/SIGTERM or a failed component cancels gctx, then
	// runs the operations within the timeout
	wait := gfshutdown.GracefulShutdown(
		gctx,
		timeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				return httpServer.Stop(ctx)
			},
			"maintenance": func(ctx context.Context) error {
				worker.Stop()
				cancel()
				return nil
			},
		},
	)
	exitCode := <-wait

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("service stopped with error", zap.Error(err))
		exitCode = 1
	}
	return exitCode
}

type closer interface {
	Close() error
}

// closeAll releases backend connections, giving up when ctx expires
func closeAll(ctx context.Context, log *zap.Logger, closers ...closer) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Error("failed to close backend", zap.Error(err))
			}
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("timed out closing backends")
	}
}
