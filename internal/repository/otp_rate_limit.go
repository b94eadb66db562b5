package repository

import (
	"compliance-registry/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type OTPRateLimitRepository interface {
	// Increment bumps the request counter for identifier, resetting the
	// window when it has elapsed, and returns the count inside the
	// current window.
	Increment(ctx context.Context, identifier string, window time.Duration, now time.Time) (int, error)
}

type otpRateLimitRepoImpl struct {
	db *gorm.DB
}

func NewOTPRateLimitRepository(db *gorm.DB) OTPRateLimitRepository {
	return &otpRateLimitRepoImpl{db: db}
}

func (r *otpRateLimitRepoImpl) Increment(ctx context.Context, identifier string, window time.Duration, now time.Time) (int, error) {
	var row model.OTPRateLimit
	err := r.db.WithContext(ctx).
		Where("identifier = ?", identifier).
		First(&row).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = model.OTPRateLimit{Identifier: identifier, Count: 1, WindowStart: now}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return 0, err
		}
		return 1, nil
	case err != nil:
		return 0, err
	}

	if now.Sub(row.WindowStart) >= window {
		row.Count = 1
		row.WindowStart = now
	} else {
		row.Count++
	}

	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return 0, err
	}

	return row.Count, nil
}
