// Package journal records successful file store mutations into the activity
// repository.
package journal

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/validfiles/internal/domain"
	"github.com/vertextoedge/validfiles/internal/port"
	"github.com/vertextoedge/validfiles/internal/util/ratelimiter"
)

// warnInterval bounds how often journal failures are logged
const warnInterval = 30 * time.Second

// Recorder wraps a FileStore and journals every successful Save and Delete.
// Journal failures are logged and never fail the store operation.
type Recorder struct {
	store    port.FileStore
	activity port.ActivityRepository
	logger   *zap.Logger
	warn     *ratelimiter.Limiter
}

var _ port.FileStore = (*Recorder)(nil)

// NewRecorder creates a new journaling FileStore
func NewRecorder(store port.FileStore, activity port.ActivityRepository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:    store,
		activity: activity,
		logger:   logger,
		warn:     ratelimiter.New(warnInterval),
	}
}

// Save stores the file and records an upload
func (r *Recorder) Save(ctx context.Context, name string, content []byte) (string, error) {
	stored, err := r.store.Save(ctx, name, content)
	if err != nil {
		return "", err
	}

	r.record(ctx, &domain.Activity{
		Action:   domain.ActionUpload,
		FileName: stored,
		Size:     int64(len(content)),
	})
	return stored, nil
}

// Delete removes the file and records a delete
func (r *Recorder) Delete(ctx context.Context, name string) error {
	if err := r.store.Delete(ctx, name); err != nil {
		return err
	}

	r.record(ctx, &domain.Activity{
		Action:   domain.ActionDelete,
		FileName: name,
	})
	return nil
}

// List is not journaled
func (r *Recorder) List(ctx context.Context) ([]domain.StoredFile, error) {
	return r.store.List(ctx)
}

// Open is not journaled
func (r *Recorder) Open(ctx context.Context, name string) (io.ReadCloser, *domain.StoredFile, error) {
	return r.store.Open(ctx, name)
}

func (r *Recorder) record(ctx context.Context, activity *domain.Activity) {
	// The store mutation already happened; a canceled request must not lose the entry.
	err := r.activity.Record(context.WithoutCancel(ctx), activity)
	if err == nil {
		return
	}
	if ok, dropped := r.warn.Allow(); ok {
		r.logger.Warn("failed to record activity",
			zap.String("action", activity.Action),
			zap.String("file_name", activity.FileName),
			zap.Int("suppressed", dropped),
			zap.Error(err))
	}
}
