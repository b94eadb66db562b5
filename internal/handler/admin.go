package handler

import (
	"compliance-registry/internal/dto"
	"compliance-registry/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	companyService      service.CompanyService
	subscriptionService service.SubscriptionService
}

func NewAdminHandler(companyService service.CompanyService, subscriptionService service.SubscriptionService) *AdminHandler {
	return &AdminHandler{
		companyService:      companyService,
		subscriptionService: subscriptionService,
	}
}

// ValidateCompany applies an admin approve/reject decision. The backend
// determines the actual transition from the company's current status.
func (h *AdminHandler) ValidateCompany(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.ValidateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.companyService.Validate(ctx, companyID, req.Status, req.RejectionReason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) UpsertSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpsertSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	sub, err := h.subscriptionService.Upsert(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Subscription updated successfully.",
		"subscription": sub,
	})
}

func (h *AdminHandler) SuspendSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	subscriptionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	sub, err := h.subscriptionService.Suspend(ctx, subscriptionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Subscription suspended successfully.",
		"subscription": map[string]any{"id": sub.ID, "status": sub.Status, "end_date": sub.EndDate},
	})
}
