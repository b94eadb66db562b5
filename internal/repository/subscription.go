package repository

import (
	"compliance-registry/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	FindPlanByID(ctx context.Context, tx *gorm.DB, planID uint) (*model.SubscriptionPlan, error)
	Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	FindByID(ctx context.Context, subscriptionID uint) (*model.Subscription, error)
	FindByUserID(ctx context.Context, userID uint) (*model.Subscription, error)
	Save(ctx context.Context, sub *model.Subscription) error
	HasActive(ctx context.Context, userID uint, now time.Time) (bool, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) FindPlanByID(ctx context.Context, tx *gorm.DB, planID uint) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := tx.WithContext(ctx).
		Where("id = ?", planID).
		First(&plan).Error

	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	return tx.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) FindByID(ctx context.Context, subscriptionID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("id = ?", subscriptionID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) FindByUserID(ctx context.Context, userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) Save(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *subscriptionRepoImpl) HasActive(ctx context.Context, userID uint, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Where("status = ?", model.SubscriptionActive).
		Where("end_date > ?", now).
		Count(&count).Error

	return count > 0, err
}
