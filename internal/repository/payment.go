package repository

import (
	"compliance-registry/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Payment, error)
	Save(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	// LinkSubscription sets subscription_id on the order only if it is
	// still unset. The conditional update is the provisioning guard that
	// keeps concurrent settled callbacks from creating two subscriptions.
	LinkSubscription(ctx context.Context, tx *gorm.DB, orderID string, subscriptionID uint) (bool, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Payment, error) {
	var payment model.Payment
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) Save(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepoImpl) LinkSubscription(ctx context.Context, tx *gorm.DB, orderID string, subscriptionID uint) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ? AND subscription_id IS NULL", orderID).
		Updates(map[string]interface{}{
			"subscription_id": subscriptionID,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
