package service

import (
	"compliance-registry/internal/apperr"
	"compliance-registry/internal/client"
	"compliance-registry/internal/config"
	"compliance-registry/internal/model"
	"compliance-registry/internal/repository"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPaymentService(t *testing.T, db *gorm.DB, gatewayURL string) PaymentService {
	t.Helper()
	cfg := &config.Gateway{
		MerchantID: "MER-1",
		Password:   "pw",
		PaymentURL: gatewayURL + "/payment/post",
		StatusURL:  gatewayURL + "/payment/status",
		Currency:   "SAR",
	}
	return NewPaymentService(
		db,
		client.NewGatewayClient(cfg),
		cfg,
		"https://registry.example.com",
		repository.NewPaymentRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
	)
}

func seedPayment(t *testing.T, db *gorm.DB, userID uint, planID *uint, amount float64) *model.Payment {
	t.Helper()
	payment := &model.Payment{
		OrderID:     "ORDTEST00001",
		UserID:      userID,
		PlanID:      planID,
		Amount:      amount,
		Currency:    "SAR",
		Description: "Growth",
		Status:      model.PaymentPending,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func reloadPayment(t *testing.T, db *gorm.DB, orderID string) *model.Payment {
	t.Helper()
	var payment model.Payment
	require.NoError(t, db.Where("order_id = ?", orderID).First(&payment).Error)
	return &payment
}

func TestInitiateCreatesPendingOrder(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)

	var gotForm map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.Form {
			gotForm[k] = r.Form.Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"redirect_url": "https://gateway.example/redirect/1"})
	}))
	defer ts.Close()

	svc := newPaymentService(t, db, ts.URL)

	resp, err := svc.Initiate(testCtx, user.ID, plan.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/redirect/1", resp.RedirectURL)
	assert.NotEmpty(t, resp.OrderID)

	assert.Equal(t, "SALE", gotForm["action"])
	assert.Equal(t, resp.OrderID, gotForm["order_id"])
	assert.Equal(t, "249.00", gotForm["order_amount"])
	assert.Equal(t, "SAR", gotForm["order_currency"])
	assert.Equal(t, client.SaleSignature(resp.OrderID, "249.00", "SAR", "Growth", "pw"), gotForm["hash"])

	payment := reloadPayment(t, db, resp.OrderID)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Equal(t, 249.0, payment.Amount)
	assert.Equal(t, "Growth", payment.Description)
	require.NotNil(t, payment.PlanID)
	assert.Equal(t, plan.ID, *payment.PlanID)
	assert.Nil(t, payment.SubscriptionID)
}

func TestInitiateUnknownPlan(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	_, err := svc.Initiate(testCtx, user.ID, 404, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 0, countRows(t, db, &model.Payment{}))
}

func TestInitiateInactivePlan(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Legacy", 99.0, 30, false)
	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	_, err := svc.Initiate(testCtx, user.ID, plan.ID, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 0, countRows(t, db, &model.Payment{}))
}

func TestInitiateGatewayRejection(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "merchant disabled", http.StatusForbidden)
	}))
	defer ts.Close()

	svc := newPaymentService(t, db, ts.URL)

	_, err := svc.Initiate(testCtx, user.ID, plan.ID, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// the order outlives the failed gateway call and stays PENDING
	assert.EqualValues(t, 1, countRows(t, db, &model.Payment{}))
}

func TestCallbackMissingOrderID(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	_, err := svc.HandleCallback(testCtx, map[string]string{"result": "SUCCESS"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCallbackUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	_, err := svc.HandleCallback(testCtx, map[string]string{"order_id": "ORDNOPE", "result": "SUCCESS"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCallbackSettlementProvisionsSubscription(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	// order amount deliberately differs from the live plan price: the
	// subscription must honor what was actually charged
	payment := seedPayment(t, db, user.ID, &plan.ID, 199.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	before := time.Now()
	result, err := svc.HandleCallback(testCtx, map[string]string{
		"order_id":   payment.OrderID,
		"trans_id":   "TX-1001",
		"result":     "SUCCESS",
		"trans_date": "2026-08-28 10:15:00",
	})
	require.NoError(t, err)
	assert.False(t, result.RedirectRequired)
	assert.Equal(t, model.PaymentSettled, result.PaymentStatus)

	updated := reloadPayment(t, db, payment.OrderID)
	assert.Equal(t, model.PaymentSettled, updated.Status)
	require.NotNil(t, updated.TransID)
	assert.Equal(t, "TX-1001", *updated.TransID)
	require.NotNil(t, updated.SubscriptionID)

	var sub model.Subscription
	require.NoError(t, db.First(&sub, *updated.SubscriptionID).Error)
	assert.Equal(t, user.ID, sub.UserID)
	assert.Equal(t, plan.ID, sub.PlanID)
	assert.Equal(t, model.SubscriptionActive, sub.Status)
	assert.Equal(t, 199.0, sub.AmountPaid)
	assert.WithinDuration(t, before.AddDate(0, 0, 30), sub.EndDate, 5*time.Second)

	// fire-and-forget settlement notice
	assert.EqualValues(t, 1, countRows(t, db, &model.Notification{}))
}

func TestCallbackIdempotentRedelivery(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	payment := seedPayment(t, db, user.ID, &plan.ID, 249.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	callback := map[string]string{
		"order_id": payment.OrderID,
		"trans_id": "TX-1001",
		"result":   "SUCCESS",
	}

	_, err := svc.HandleCallback(testCtx, callback)
	require.NoError(t, err)
	firstSubID := *reloadPayment(t, db, payment.OrderID).SubscriptionID

	result, err := svc.HandleCallback(testCtx, callback)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentSettled, result.PaymentStatus)

	assert.EqualValues(t, 1, countRows(t, db, &model.Subscription{}))
	assert.Equal(t, firstSubID, *reloadPayment(t, db, payment.OrderID).SubscriptionID)
}

func TestCallback3DSStepUp(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	payment := seedPayment(t, db, user.ID, &plan.ID, 249.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	result, err := svc.HandleCallback(testCtx, map[string]string{
		"order_id":     payment.OrderID,
		"trans_id":     "TX-1001",
		"result":       "REDIRECT",
		"status":       "3DS",
		"redirect_url": "https://acs.example/challenge",
	})
	require.NoError(t, err)
	assert.True(t, result.RedirectRequired)
	assert.Equal(t, "https://acs.example/challenge", result.RedirectURL)
	assert.Equal(t, model.PaymentAwaiting3DS, result.PaymentStatus)

	updated := reloadPayment(t, db, payment.OrderID)
	assert.Equal(t, model.PaymentAwaiting3DS, updated.Status)
	require.NotNil(t, updated.RedirectURL)
	assert.Equal(t, "https://acs.example/challenge", *updated.RedirectURL)
	assert.Nil(t, updated.SubscriptionID)
	assert.EqualValues(t, 0, countRows(t, db, &model.Subscription{}))
}

func TestCallbackDeclineStoresReason(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	payment := seedPayment(t, db, user.ID, &plan.ID, 249.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	result, err := svc.HandleCallback(testCtx, map[string]string{
		"order_id":       payment.OrderID,
		"trans_id":       "TX-1001",
		"result":         "DECLINED",
		"decline_reason": "Insufficient funds",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentDeclined, result.PaymentStatus)

	updated := reloadPayment(t, db, payment.OrderID)
	assert.Equal(t, model.PaymentDeclined, updated.Status)
	require.NotNil(t, updated.FailureReason)
	assert.Equal(t, "Insufficient funds", *updated.FailureReason)
	assert.Nil(t, updated.SubscriptionID)
}

func TestCallbackBadTransDateFallsBackToNow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	payment := seedPayment(t, db, user.ID, &plan.ID, 249.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	_, err := svc.HandleCallback(testCtx, map[string]string{
		"order_id":   payment.OrderID,
		"result":     "SUCCESS",
		"trans_date": "28/08/2026 10:15",
	})
	require.NoError(t, err)

	updated := reloadPayment(t, db, payment.OrderID)
	require.NotNil(t, updated.TransDate)
	assert.WithinDuration(t, time.Now(), *updated.TransDate, 5*time.Second)
}

func TestCallbackUnknownResultStaysPending(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	payment := seedPayment(t, db, user.ID, &plan.ID, 249.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	result, err := svc.HandleCallback(testCtx, map[string]string{
		"order_id": payment.OrderID,
		"result":   "SOMETHING_NEW",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, result.PaymentStatus)
	assert.EqualValues(t, 0, countRows(t, db, &model.Subscription{}))
}

func TestCallbackSettlementWithoutPlanRollsBack(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	payment := seedPayment(t, db, user.ID, nil, 249.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	_, err := svc.HandleCallback(testCtx, map[string]string{
		"order_id": payment.OrderID,
		"trans_id": "TX-1001",
		"result":   "SUCCESS",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// everything rolled back: next delivery can retry provisioning
	updated := reloadPayment(t, db, payment.OrderID)
	assert.Equal(t, model.PaymentPending, updated.Status)
	assert.Nil(t, updated.TransID)
	assert.EqualValues(t, 0, countRows(t, db, &model.Subscription{}))
}

func TestResultStatusMapping(t *testing.T) {
	cases := map[string]string{
		"SUCCESS":  model.PaymentSettled,
		"DECLINED": model.PaymentDeclined,
		"REDIRECT": model.PaymentPending,
		"ERROR":    model.PaymentFailure,
		"":         model.PaymentPending,
		"WHAT":     model.PaymentPending,
	}
	for result, want := range cases {
		assert.Equal(t, want, resultStatus(result), "result %q", result)
	}
}

func TestStatusRequiresRecordedTransaction(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	payment := seedPayment(t, db, user.ID, &plan.ID, 249.0)

	svc := newPaymentService(t, db, "http://127.0.0.1:0")

	_, err := svc.Status(testCtx, payment.OrderID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Status(testCtx, "ORDNOPE")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStatusProxiesGatewayQuery(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, "Growth", 249.0, 30, true)
	payment := seedPayment(t, db, user.ID, &plan.ID, 249.0)
	transID := "TX-123"
	payment.TransID = &transID
	require.NoError(t, db.Save(payment).Error)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, payment.OrderID, body["order_id"])
		assert.Equal(t, "TX-123", body["gway_Payment_Id"])
		assert.Equal(t, client.StatusHash("TX-123", "pw"), body["hash"])
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "SETTLED"})
	}))
	defer ts.Close()

	svc := newPaymentService(t, db, ts.URL)

	result, err := svc.Status(testCtx, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "SETTLED", result["status"])
}
