package port

import (
	"context"
	"time"

	"github.com/vertextoedge/validfiles/internal/domain"
)

// ActivityRepository persists the journal of store mutations
type ActivityRepository interface {
	// Record appends an activity entry
	Record(ctx context.Context, activity *domain.Activity) error

	// ListRecent returns the most recent entries, newest first
	ListRecent(ctx context.Context, limit int) ([]*domain.Activity, error)

	// GetActivityStats summarizes recorded activity
	GetActivityStats(ctx context.Context) (*domain.ActivityStats, error)

	// CleanupOldActivity removes entries older than the given age
	// Returns the number of entries removed
	CleanupOldActivity(ctx context.Context, olderThan time.Duration) (int, error)

	// Ping checks database connectivity
	Ping() error
}
