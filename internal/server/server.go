package server

import (
	"compliance-registry/internal/apperr"
	"compliance-registry/internal/handler"
	appmw "compliance-registry/internal/middleware"
	"compliance-registry/internal/service"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	companyHandler *handler.CompanyHandler
	adminHandler   *handler.AdminHandler
	authHandler    *handler.AuthHandler
	jwtSecret      string
}

func NewServer(
	paymentService service.PaymentService,
	companyService service.CompanyService,
	subscriptionService service.SubscriptionService,
	authHandler *handler.AuthHandler,
	jwtSecret string,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.HTTPErrorHandler = httpErrorHandler

	s := &Server{
		echo:           e,
		paymentHandler: handler.NewPaymentHandler(paymentService),
		companyHandler: handler.NewCompanyHandler(companyService),
		adminHandler:   handler.NewAdminHandler(companyService, subscriptionService),
		authHandler:    authHandler,
		jwtSecret:      jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- gateway webhook (authenticated by hash, not by token) --------
	api.POST("/payment/callback", s.paymentHandler.Callback)

	api.POST("/auth/otp", s.authHandler.RequestOTP)

	auth := api.Group("", appmw.JWTAuth(s.jwtSecret))

	// -------- payment --------
	auth.POST("/payment/initiate", s.paymentHandler.Initiate)
	auth.GET("/payment/status/:order_id", s.paymentHandler.Status)

	// -------- companies --------
	auth.POST("/companies", s.companyHandler.Create)
	auth.GET("/companies/:id", s.companyHandler.Get)
	auth.PUT("/companies/:id", s.companyHandler.Update)
	auth.PUT("/companies/:id/scores/:score_id", s.companyHandler.UpdateScore)

	// -------- admin --------
	admin := auth.Group("/admin", appmw.RequireAdmin())
	admin.PUT("/companies/:id/validate", s.adminHandler.ValidateCompany)
	admin.POST("/subscriptions", s.adminHandler.UpsertSubscription)
	admin.PUT("/subscriptions/:id/suspend", s.adminHandler.SuspendSubscription)
}

// httpErrorHandler translates service-level error classes into JSON
// responses. No stack traces leave the process.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	detail := "An unexpected error occurred."

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		detail = fmt.Sprint(he.Message)
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
		detail = err.Error()
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		status = http.StatusBadRequest
		detail = err.Error()
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
		detail = err.Error()
	default:
		log.Printf("internal error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if jsonErr := c.JSON(status, map[string]string{"detail": detail}); jsonErr != nil {
		log.Printf("write error response: %v", jsonErr)
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
