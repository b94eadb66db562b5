package service

import (
	"compliance-registry/internal/apperr"
	"compliance-registry/internal/client"
	"compliance-registry/internal/config"
	"compliance-registry/internal/dto"
	"compliance-registry/internal/model"
	"compliance-registry/internal/repository"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const transDateLayout = "2006-01-02 15:04:05"

type PaymentService interface {
	Initiate(ctx context.Context, userID, planID uint, payerIP string) (*dto.InitiatePaymentResponse, error)
	// HandleCallback reconciles one asynchronous gateway notification.
	// Safe under at-least-once, out-of-order delivery.
	HandleCallback(ctx context.Context, callback map[string]string) (*dto.CallbackResult, error)
	Status(ctx context.Context, orderID string) (map[string]any, error)
}

type paymentServiceImpl struct {
	db               *gorm.DB
	gatewayClient    client.GatewayClient
	gatewayCfg       *config.Gateway
	baseURL          string
	paymentRepo      repository.PaymentRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

func NewPaymentService(
	db *gorm.DB,
	gatewayClient client.GatewayClient,
	gatewayCfg *config.Gateway,
	baseURL string,
	paymentRepo repository.PaymentRepository,
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		gatewayClient:    gatewayClient,
		gatewayCfg:       gatewayCfg,
		baseURL:          baseURL,
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// newOrderID builds an order id with a fixed prefix and a random hex
// suffix. Uniqueness is enforced by the order_id unique index; a collision
// surfaces as a retryable conflict.
func newOrderID() string {
	u := uuid.New()
	return "ORD" + strings.ToUpper(hex.EncodeToString(u[:])[:10])
}

func (s *paymentServiceImpl) Initiate(ctx context.Context, userID, planID uint, payerIP string) (*dto.InitiatePaymentResponse, error) {
	plan, err := s.subscriptionRepo.FindPlanByID(ctx, s.db, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("subscription plan %d", planID)
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription plan: %w", err)
	}
	if !plan.IsActive {
		return nil, apperr.NotFound("subscription plan %d is inactive", planID)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %d", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	orderID := newOrderID()
	// snapshot the plan terms; plan price may change after initiation
	formattedAmount := decimal.NewFromFloat(plan.Price).StringFixed(2)
	hash := client.SaleSignature(orderID, formattedAmount, s.gatewayCfg.Currency, plan.Name, s.gatewayCfg.Password)

	payment := &model.Payment{
		OrderID:     orderID,
		UserID:      userID,
		PlanID:      &plan.ID,
		Amount:      plan.Price,
		Currency:    s.gatewayCfg.Currency,
		Description: plan.Name,
		Status:      model.PaymentPending,
	}
	if err := s.paymentRepo.Create(ctx, s.db, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("order id collision for %s, retry", orderID)
		}
		return nil, fmt.Errorf("store payment: %w", err)
	}

	resp, err := s.gatewayClient.InitiateSale(ctx, &client.SaleRequest{
		OrderID:        orderID,
		Amount:         formattedAmount,
		Currency:       s.gatewayCfg.Currency,
		Description:    plan.Name,
		Hash:           hash,
		PayerFirstName: user.FirstName,
		PayerLastName:  user.LastName,
		PayerEmail:     user.Email,
		PayerPhone:     user.PhoneNumber,
		PayerIP:        payerIP,
		TermURL:        s.baseURL + "/user/callback",
	})
	if err != nil {
		// order stays PENDING; the user retries with a fresh order
		log.Printf("gateway sale failed for order %s: %v", orderID, err)
		return nil, apperr.Validation("payment initiation failed")
	}

	return &dto.InitiatePaymentResponse{
		Message:     "Payment initiated successfully",
		OrderID:     orderID,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// resultStatus maps the gateway result field onto a local payment status.
// Unknown or missing results stay PENDING rather than dropping the callback.
func resultStatus(result string) string {
	switch result {
	case "SUCCESS":
		return model.PaymentSettled
	case "DECLINED":
		return model.PaymentDeclined
	case "REDIRECT":
		return model.PaymentPending
	case "ERROR":
		return model.PaymentFailure
	default:
		return model.PaymentPending
	}
}

func (s *paymentServiceImpl) HandleCallback(ctx context.Context, callback map[string]string) (*dto.CallbackResult, error) {
	orderID := strings.TrimSpace(callback["order_id"])
	if orderID == "" {
		return nil, apperr.Validation("missing order_id")
	}

	// Hash mismatch is recorded but does not abort processing; tightening
	// this requires confirmation against the gateway documentation.
	if supplied := strings.TrimSpace(callback["hash"]); supplied != "" {
		if !client.VerifyCallbackHash(orderID, callback["amount"], callback["currency"], s.gatewayCfg.Password, supplied) {
			log.Printf("callback hash mismatch for order %s", orderID)
		}
	}

	var (
		result      *dto.CallbackResult
		provisioned *model.Subscription
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByOrderID(ctx, tx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("payment for order %s", orderID)
		}
		if err != nil {
			return fmt.Errorf("find payment: %w", err)
		}

		if transID := strings.TrimSpace(callback["trans_id"]); transID != "" {
			payment.TransID = &transID
		}
		payment.UpdatedAt = time.Now()

		if raw := strings.TrimSpace(callback["trans_date"]); raw != "" {
			if t, perr := time.Parse(transDateLayout, raw); perr == nil {
				payment.TransDate = &t
			} else {
				// a malformed timestamp must not fail the callback
				log.Printf("invalid trans_date %q for order %s: %v", raw, orderID, perr)
				now := time.Now()
				payment.TransDate = &now
			}
		}

		gwResult := strings.ToUpper(strings.TrimSpace(callback["result"]))
		gwStatus := strings.ToUpper(strings.TrimSpace(callback["status"]))
		redirectURL := strings.TrimSpace(callback["redirect_url"])

		payment.Status = resultStatus(gwResult)

		// 3DS step-up takes priority over the result mapping
		if gwStatus == "3DS" {
			payment.Status = model.PaymentAwaiting3DS
			if redirectURL != "" {
				payment.RedirectURL = &redirectURL
			} else {
				payment.RedirectURL = nil
			}
		}

		if reason := strings.TrimSpace(callback["decline_reason"]); reason != "" {
			payment.FailureReason = &reason
		}

		// Provisioning gate: one subscription per order, re-evaluated
		// fresh inside the transaction on every delivery.
		if payment.SubscriptionID == nil && payment.Status == model.PaymentSettled {
			if payment.PlanID == nil {
				return apperr.NotFound("plan missing on order %s", orderID)
			}

			plan, err := s.subscriptionRepo.FindPlanByID(ctx, tx, *payment.PlanID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("subscription plan %d for order %s", *payment.PlanID, orderID)
			}
			if err != nil {
				return fmt.Errorf("find subscription plan: %w", err)
			}

			now := time.Now()
			sub := &model.Subscription{
				UserID:    payment.UserID,
				PlanID:    plan.ID,
				StartDate: now,
				EndDate:   now.AddDate(0, 0, plan.DurationDays),
				// honor the amount actually charged, not the live plan price
				AmountPaid: payment.Amount,
				Status:     model.SubscriptionActive,
			}
			if err := s.subscriptionRepo.Create(ctx, tx, sub); err != nil {
				return fmt.Errorf("create subscription: %w", err)
			}

			linked, err := s.paymentRepo.LinkSubscription(ctx, tx, orderID, sub.ID)
			if err != nil {
				return fmt.Errorf("link subscription: %w", err)
			}
			if !linked {
				// lost the race against a concurrent settled callback;
				// roll back so only one subscription survives
				return fmt.Errorf("order %s already linked to a subscription", orderID)
			}

			payment.SubscriptionID = &sub.ID
			provisioned = sub
		}

		if err := s.paymentRepo.Save(ctx, tx, payment); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}

		result = &dto.CallbackResult{
			OrderID:       orderID,
			PaymentStatus: payment.Status,
		}
		if (payment.Status == model.PaymentAwaiting3DS || payment.Status == model.PaymentPending) && redirectURL != "" {
			result.RedirectRequired = true
			result.RedirectURL = redirectURL
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// best-effort, deliberately outside the payment transaction
	if provisioned != nil {
		notification := &model.Notification{
			UserID:  provisioned.UserID,
			Message: fmt.Sprintf("Your subscription is active until %s.", provisioned.EndDate.Format("2006-01-02")),
			Type:    "PAYMENT",
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			log.Printf("notify user %d about subscription %d: %v", provisioned.UserID, provisioned.ID, err)
		}
	}

	return result, nil
}

func (s *paymentServiceImpl) Status(ctx context.Context, orderID string) (map[string]any, error) {
	payment, err := s.paymentRepo.FindByOrderID(ctx, s.db, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("payment for order %s", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment.TransID == nil {
		return nil, apperr.NotFound("no gateway transaction recorded yet for order %s, wait for callback", orderID)
	}

	hash := client.StatusHash(*payment.TransID, s.gatewayCfg.Password)
	return s.gatewayClient.QueryStatus(ctx, orderID, *payment.TransID, hash)
}
