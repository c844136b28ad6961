// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for compliance
// calendar tasks.
//
// Every query is scoped by owner: a task that exists but belongs to someone
// else is indistinguishable from a missing one (ErrNotFound).
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/negga-dot/LaunchMate/internal/domain"
)

// CreateTask inserts a task with a fresh UUID and UTC timestamps.
func CreateTask(ctx context.Context, db *gorm.DB, t *domain.ComplianceTask) error {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return db.WithContext(ctx).Create(t).Error
}

// GetTask fetches a task by ID for its owner, or ErrNotFound.
func GetTask(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.ComplianceTask, error) {
	var t domain.ComplianceTask
	err := db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountTasks returns the number of tasks an owner has.
func CountTasks(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ComplianceTask{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}

// ListTasksPage returns one page of an owner's tasks ordered by due date,
// then creation time.
func ListTasksPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.ComplianceTask, error) {
	var out []domain.ComplianceTask
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("due_date ASC").Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// ListTasksDueBetween returns an owner's tasks whose due date falls in
// [from, to] (inclusive, YYYY-MM-DD strings compare lexically).
func ListTasksDueBetween(ctx context.Context, db *gorm.DB, ownerID, from, to string) ([]domain.ComplianceTask, error) {
	var out []domain.ComplianceTask
	err := db.WithContext(ctx).
		Where("owner_id = ? AND due_date >= ? AND due_date <= ?", ownerID, from, to).
		Order("due_date ASC").Order("title ASC").
		Find(&out).Error
	return out, err
}

// ToggleTaskCompleted flips the completion flag of an owner's task with a
// single UPDATE and returns the task as stored afterwards. Concurrent toggles
// each take effect.
func ToggleTaskCompleted(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.ComplianceTask, error) {
	var out *domain.ComplianceTask
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.ComplianceTask{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Updates(map[string]any{"completed": gorm.Expr("NOT completed"), "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		t, err := GetTask(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTask soft-deletes an owner's task.
func DeleteTask(ctx context.Context, db *gorm.DB, id, ownerID string) error {
	res := db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.ComplianceTask{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
