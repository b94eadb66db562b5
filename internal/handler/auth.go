package handler

import (
	"compliance-registry/internal/client"
	"compliance-registry/internal/service"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	otpService  service.OTPService
	emailSender client.EmailSender
}

func NewAuthHandler(otpService service.OTPService, emailSender client.EmailSender) *AuthHandler {
	return &AuthHandler{
		otpService:  otpService,
		emailSender: emailSender,
	}
}

func (h *AuthHandler) RequestOTP(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	code, err := h.otpService.Generate(ctx, req.Email)
	if err != nil {
		return err
	}

	// the code travels by mail only, never in the response
	if err := h.emailSender.Send(ctx, req.Email, "Your verification code",
		fmt.Sprintf("Your one-time code is %s.", code)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "OTP sent."})
}
