// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation).
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/negga-dot/LaunchMate/internal/domain"
)

// TasksStats returns aggregate metadata for an owner's tasks: the total number
// of rows and the maximum UpdatedAt timestamp among those rows.
//
// When the owner has no tasks, count is 0 and maxUpdatedAt is nil.
func TasksStats(ctx context.Context, db *gorm.DB, ownerID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ComplianceTask{}).Where("owner_id = ?", ownerID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
