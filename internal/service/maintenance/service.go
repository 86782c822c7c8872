package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/validfiles/internal/port"
)

// Config contains maintenance service configuration
type Config struct {
	// CleanupInterval is how often to run cleanup tasks
	CleanupInterval time.Duration

	// TempFileMaxAge is the maximum age of abandoned upload temp files before cleanup
	TempFileMaxAge time.Duration

	// ActivityMaxAge is the maximum age of journal entries before cleanup
	ActivityMaxAge time.Duration
}

// DefaultConfig returns default maintenance configuration
func DefaultConfig() *Config {
	return &Config{
		CleanupInterval: time.Hour,
		TempFileMaxAge:  24 * time.Hour,
		ActivityMaxAge:  30 * 24 * time.Hour,
	}
}

// Service handles periodic maintenance tasks
type Service struct {
	config   *Config
	storage  port.StorageMaintainer
	activity port.ActivityRepository
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new maintenance Service. activity may be nil when no
// journal is configured.
func New(cfg *Config, storage port.StorageMaintainer, activity port.ActivityRepository, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.TempFileMaxAge == 0 {
		cfg.TempFileMaxAge = 24 * time.Hour
	}
	if cfg.ActivityMaxAge == 0 {
		cfg.ActivityMaxAge = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		config:   cfg,
		storage:  storage,
		activity: activity,
		logger:   logger,
	}
}

// Start runs the maintenance loop until ctx is canceled or Stop is called
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("maintenance service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("maintenance service started",
		zap.Duration("cleanup_interval", s.config.CleanupInterval),
		zap.Duration("temp_file_max_age", s.config.TempFileMaxAge))

	s.wg.Add(1)
	go s.maintenanceLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("maintenance service stopped")
	return nil
}

// Stop stops the maintenance service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// RunOnce runs every cleanup task immediately
func (s *Service) RunOnce(ctx context.Context) {
	s.cleanupTempFiles()
	s.cleanupActivity(ctx)
}

func (s *Service) maintenanceLoop(ctx context.Context) {
	defer s.wg.Done()

	// Leftovers from a previous run are cleared at startup
	s.RunOnce(ctx)

	cleanupTicker := time.NewTicker(s.config.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			s.RunOnce(ctx)
		}
	}
}

// cleanupTempFiles removes abandoned upload temp files from the store
func (s *Service) cleanupTempFiles() {
	fileCount, err := s.storage.CleanOldTempFiles(s.config.TempFileMaxAge)
	if err != nil {
		s.logger.Error("failed to cleanup old temp files", zap.Error(err))
	} else if fileCount > 0 {
		s.logger.Info("cleaned up old temp files", zap.Int("count", fileCount))
	}
}

// cleanupActivity prunes old journal entries
func (s *Service) cleanupActivity(ctx context.Context) {
	if s.activity == nil {
		return
	}
	cleared, err := s.activity.CleanupOldActivity(ctx, s.config.ActivityMaxAge)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("failed to cleanup old activity", zap.Error(err))
	} else if cleared > 0 {
		s.logger.Info("cleaned up old activity", zap.Int("count", cleared))
	}
}
