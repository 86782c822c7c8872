package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vertextoedge/validfiles/internal/domain"
)

// Record appends an activity entry
func (s *Store) Record(ctx context.Context, activity *domain.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (action, file_name, size, created_at) VALUES (?, ?, ?, ?)`,
		activity.Action, activity.FileName, activity.Size, activity.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	activity.ID = id
	return nil
}

// GetActivityStats summarizes recorded activity
func (s *Store) GetActivityStats(ctx context.Context) (*domain.ActivityStats, error) {
	stats := &domain.ActivityStats{}

	var bytesUploaded sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN action = ? THEN 1 END),
			COUNT(CASE WHEN action = ? THEN 1 END),
			SUM(CASE WHEN action = ? THEN size END)
		FROM activity
	`, domain.ActionUpload, domain.ActionDelete, domain.ActionUpload).Scan(&stats.Uploads, &stats.Deletes, &bytesUploaded)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity stats: %w", err)
	}
	stats.BytesUploaded = bytesUploaded.Int64

	var last sql.NullTime
	err = s.db.QueryRowContext(ctx, `SELECT created_at FROM activity ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query last activity: %w", err)
	}
	if last.Valid {
		t := last.Time
		stats.LastActivity = &t
	}

	return stats, nil
}

// ListRecent returns the most recent activity entries, newest first
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, file_name, size, created_at
		FROM activity
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		a := &domain.Activity{}
		if err := rows.Scan(&a.ID, &a.Action, &a.FileName, &a.Size, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// CleanupOldActivity removes entries older than the given age
func (s *Store) CleanupOldActivity(ctx context.Context, olderThan time.Duration) (int, error) {
	threshold := time.Now().Add(-olderThan).UTC()

	result, err := s.db.ExecContext(ctx, `DELETE FROM activity WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup activity: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
