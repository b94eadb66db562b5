package service

import (
	"compliance-registry/internal/apperr"
	"compliance-registry/internal/dto"
	"compliance-registry/internal/model"
	"compliance-registry/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type SubscriptionService interface {
	// IsActive reports whether the user currently has a usable
	// subscription: status ACTIVE and end date in the future.
	IsActive(ctx context.Context, userID uint) (bool, error)
	Suspend(ctx context.Context, subscriptionID uint) (*model.Subscription, error)
	Upsert(ctx context.Context, req *dto.UpsertSubscriptionRequest) (*model.Subscription, error)
}

type subscriptionServiceImpl struct {
	subscriptionRepo repository.SubscriptionRepository
}

func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionServiceImpl{
		subscriptionRepo: subscriptionRepo,
	}
}

func (s *subscriptionServiceImpl) IsActive(ctx context.Context, userID uint) (bool, error) {
	return s.subscriptionRepo.HasActive(ctx, userID, time.Now())
}

// Suspend ends a subscription immediately: the end date moves to now and
// the status flips to SUSPENDED, so both activity definitions agree.
func (s *subscriptionServiceImpl) Suspend(ctx context.Context, subscriptionID uint) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, subscriptionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("subscription %d", subscriptionID)
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}

	now := time.Now()
	if !sub.EndDate.After(now) {
		return nil, apperr.Conflict("subscription %d is already expired or suspended", subscriptionID)
	}

	sub.EndDate = now
	sub.Status = model.SubscriptionSuspended
	if err := s.subscriptionRepo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	return sub, nil
}

// Upsert is the admin override: one subscription row per user, updated in
// place when present, created otherwise, always left ACTIVE.
func (s *subscriptionServiceImpl) Upsert(ctx context.Context, req *dto.UpsertSubscriptionRequest) (*model.Subscription, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, apperr.Validation("end_date must be after start_date")
	}

	sub, err := s.subscriptionRepo.FindByUserID(ctx, req.UserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = &model.Subscription{
			UserID:     req.UserID,
			PlanID:     req.PlanID,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			AmountPaid: req.AmountPaid,
			Status:     model.SubscriptionActive,
		}
	case err != nil:
		return nil, fmt.Errorf("find subscription: %w", err)
	default:
		sub.StartDate = req.StartDate
		sub.EndDate = req.EndDate
		sub.AmountPaid = req.AmountPaid
		sub.Status = model.SubscriptionActive
		if req.PlanID != 0 {
			sub.PlanID = req.PlanID
		}
	}

	if err := s.subscriptionRepo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	return sub, nil
}
