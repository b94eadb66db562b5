package service

import (
	"compliance-registry/internal/apperr"
	"compliance-registry/internal/config"
	"compliance-registry/internal/repository"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// OTPService issues and verifies time-window HMAC one-time codes. The code
// for an identifier is stable within the expiry window, so verification
// just recomputes it.
type OTPService interface {
	Generate(ctx context.Context, identifier string) (string, error)
	Verify(identifier, otp string) bool
}

type otpServiceImpl struct {
	cfg       *config.OTP
	rateLimit repository.OTPRateLimitRepository
}

func NewOTPService(cfg *config.OTP, rateLimit repository.OTPRateLimitRepository) OTPService {
	return &otpServiceImpl{
		cfg:       cfg,
		rateLimit: rateLimit,
	}
}

func (s *otpServiceImpl) code(identifier string, now time.Time) string {
	windowSecs := int64(s.cfg.ExpiryMinutes) * 60
	window := now.Unix() / windowSecs

	mac := hmac.New(sha256.New, []byte(s.cfg.Secret+identifier))
	mac.Write([]byte(strconv.FormatInt(window, 10)))
	digest := mac.Sum(nil)

	mod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.cfg.Length)), nil)
	otp := new(big.Int).Mod(new(big.Int).SetBytes(digest), mod)
	return fmt.Sprintf("%0*d", s.cfg.Length, otp)
}

func (s *otpServiceImpl) Generate(ctx context.Context, identifier string) (string, error) {
	window := time.Duration(s.cfg.ExpiryMinutes) * time.Minute
	count, err := s.rateLimit.Increment(ctx, identifier, window, time.Now())
	if err != nil {
		return "", fmt.Errorf("otp rate limit: %w", err)
	}
	if count > s.cfg.MaxPerWindow {
		return "", apperr.Conflict("too many OTP requests for %s", identifier)
	}

	return s.code(identifier, time.Now()), nil
}

func (s *otpServiceImpl) Verify(identifier, otp string) bool {
	expected := s.code(identifier, time.Now())
	return hmac.Equal([]byte(expected), []byte(otp))
}
