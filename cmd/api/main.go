package main

import (
	"compliance-registry/internal/client"
	"compliance-registry/internal/config"
	"compliance-registry/internal/handler"
	"compliance-registry/internal/repository"
	"compliance-registry/internal/server"
	"compliance-registry/internal/service"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitMysqlClient(cfg.DatabaseURL)
	gatewayClient := client.NewGatewayClient(&cfg.Gateway)
	fileStorage := client.NewFileStorage(&cfg.Storage)

	paymentRepo := repository.NewPaymentRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	paymentService := service.NewPaymentService(
		db, gatewayClient, &cfg.Gateway, cfg.BaseURL,
		paymentRepo,
		subscriptionRepo,
		userRepo,
		notificationRepo,
	)
	companyService := service.NewCompanyService(companyRepo, notificationRepo, fileStorage)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo)
	otpService := service.NewOTPService(&cfg.OTP, repository.NewOTPRateLimitRepository(db))
	authHandler := handler.NewAuthHandler(otpService, client.NewLogEmailSender())

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(paymentService, companyService, subscriptionService, authHandler, cfg.JWT.Secret)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
