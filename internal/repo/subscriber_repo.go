// Package repo: subscriber persistence on GORM.
//
// All functions are context-aware and accept a *gorm.DB handle. They carry no
// business rules: normalization of the email happens in the service, the
// unique index on subscribers.email is what makes signups race-safe.
//
// Error semantics:
//   - missing rows return ErrNotFound
//   - a unique violation on email returns ErrDuplicate
//   - any other driver error is propagated unchanged
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/negga-dot/LaunchMate/internal/domain"
)

// CreateSubscriber inserts a subscriber with a fresh UUID. SubscribedAt is
// set to the current UTC time when the caller leaves it zero.
func CreateSubscriber(ctx context.Context, db *gorm.DB, s *domain.Subscriber) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetSubscriberByEmail looks up a subscriber by its stored (lowercased) email.
func GetSubscriberByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := db.WithContext(ctx).Where("email = ?", email).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSubscriber fetches a subscriber by ID.
func GetSubscriber(ctx context.Context, db *gorm.DB, id string) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSubscriber hard-deletes a subscriber. Used to roll back a signup
// whose welcome email was required but could not be delivered.
func DeleteSubscriber(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Subscriber{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSubscribers returns the total number of subscribers.
func CountSubscribers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Subscriber{}).Count(&n).Error
	return n, err
}
