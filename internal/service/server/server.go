package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"github.com/vertextoedge/validfiles/internal/domain"
	"github.com/vertextoedge/validfiles/internal/port"
)

// FileService is the file and validity API served over HTTP
type FileService interface {
	Upload(ctx context.Context, name string, payload io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	ListFiles(ctx context.Context) ([]domain.StoredFile, error)
	Open(ctx context.Context, name string) (io.ReadCloser, *domain.StoredFile, error)
	ListValidFiles(ctx context.Context) ([]domain.ValidityEntry, error)
	SetValidity(ctx context.Context, name, status string) error
	ClearValidity(ctx context.Context, name string) (bool, error)
	Ping(ctx context.Context) error
}

// Config contains HTTP server configuration
type Config struct {
	BindAddr      string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxUploadSize int64
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		BindAddr:      "0.0.0.0:8080",
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   60 * time.Second,
		MaxUploadSize: 100 * units.MiB,
	}
}

// Server represents the HTTP API server
type Server struct {
	config       *Config
	files        FileService
	activity     port.ActivityRepository
	storage      port.StorageMaintainer
	logger       *zap.Logger
	server       *http.Server
	fileHandler  *FileHandler
	debugHandler *DebugHandler
}

// New creates a new HTTP server
func New(cfg *Config, files FileService, activity port.ActivityRepository, storage port.StorageMaintainer, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultConfig().MaxUploadSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:   cfg,
		files:    files,
		activity: activity,
		storage:  storage,
		logger:   logger,
	}

	s.fileHandler = NewFileHandler(files, cfg.MaxUploadSize, logger)
	s.debugHandler = NewDebugHandler(files, activity, storage, logger)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Stored files
	mux.HandleFunc("POST /files", s.fileHandler.HandleUpload)
	mux.HandleFunc("GET /files", s.fileHandler.HandleList)
	mux.HandleFunc("GET /files/{name}", s.fileHandler.HandleDownload)
	mux.HandleFunc("DELETE /files/{name}", s.fileHandler.HandleDelete)

	// Validity index
	mux.HandleFunc("GET /files/valid", s.fileHandler.HandleListValid)
	mux.HandleFunc("PUT /files/valid/{name}", s.fileHandler.HandleSetValidity)
	mux.HandleFunc("DELETE /files/valid/{name}", s.fileHandler.HandleClearValidity)

	// Debug endpoints
	mux.HandleFunc("GET /debug/stats", s.debugHandler.HandleStats)

	s.server = &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      LoggingMiddleware(logger)(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth checks the file store, the validity cache and the activity database
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.storage != nil {
		if err := s.storage.Ping(); err != nil {
			s.logger.Error("health check failed", zap.String("component", "store"), zap.Error(err))
			http.Error(w, "File store unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	if err := s.files.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.String("component", "cache"), zap.Error(err))
		http.Error(w, "Cache connection failed", http.StatusServiceUnavailable)
		return
	}

	if s.activity != nil {
		if err := s.activity.Ping(); err != nil {
			s.logger.Error("health check failed", zap.String("component", "database"), zap.Error(err))
			http.Error(w, "Database connection failed", http.StatusServiceUnavailable)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
