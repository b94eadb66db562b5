package handler

import (
	"compliance-registry/internal/middleware"
	"compliance-registry/internal/service"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) Initiate(c echo.Context) error {
	ctx := c.Request().Context()

	planID, err := strconv.ParseUint(c.QueryParam("plan_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan_id")
	}

	result, err := h.paymentService.Initiate(ctx, middleware.UserID(c), uint(planID), c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Callback receives the gateway's asynchronous notification, as either a
// form or a JSON body. The response status tells the gateway whether to
// retry: 5xx means retry, 2xx/4xx are final.
func (h *PaymentHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := callbackPayload(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed callback body")
	}

	result, err := h.paymentService.HandleCallback(ctx, payload)
	if err != nil {
		return err
	}

	if result.RedirectRequired {
		return c.JSON(http.StatusOK, map[string]string{
			"status":       "redirect_required",
			"redirect_url": result.RedirectURL,
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":         "processed",
		"order_id":       result.OrderID,
		"payment_status": result.PaymentStatus,
	})
}

func (h *PaymentHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.Param("order_id")
	result, err := h.paymentService.Status(ctx, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "success",
		"payment_status": result,
	})
}

func callbackPayload(c echo.Context) (map[string]string, error) {
	payload := map[string]string{}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.Contains(contentType, echo.MIMEApplicationJSON) {
		var raw map[string]any
		if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
			return nil, err
		}
		for k, v := range raw {
			if v == nil {
				continue
			}
			payload[k] = fmt.Sprint(v)
		}
		return payload, nil
	}

	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	for k := range form {
		payload[k] = form.Get(k)
	}
	return payload, nil
}
