package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"lendbridge/internal/adapters/messaging"
	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/config"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

// OTP errors
var (
	ErrOTPNotFound     = errors.New("no OTP pending, request a new one")
	ErrOTPExpired      = errors.New("OTP expired, request a new one")
	ErrOTPWrongCode    = errors.New("incorrect OTP code")
	ErrOTPTooManyTries = errors.New("too many incorrect attempts, request a new OTP")
	ErrOTPRateLimited  = errors.New("please wait before requesting another OTP")
)

// OTPPurposeLogin is the only purpose currently issued
const OTPPurposeLogin = "login"

// otpRequestCooldown is the minimum gap between two OTP requests for the
// same principal.
const otpRequestCooldown = time.Minute

// OTPService handles one-time-password login. Codes live in the database
// so any server instance can verify them; delivery (SMS/email) happens in
// a consumer of the published events.
type OTPService struct {
	otpRepo  repositories.OTPRepository
	userRepo repositories.UserRepository
	auth     *AuthService
	producer *messaging.Producer
	cfg      *config.Config
}

// NewOTPService creates a new OTP service
func NewOTPService(
	otpRepo repositories.OTPRepository,
	userRepo repositories.UserRepository,
	auth *AuthService,
	producer *messaging.Producer,
	cfg *config.Config,
) *OTPService {
	return &OTPService{
		otpRepo:  otpRepo,
		userRepo: userRepo,
		auth:     auth,
		producer: producer,
		cfg:      cfg,
	}
}

// findUserByPrincipal resolves an email or phone number to a user
func (s *OTPService) findUserByPrincipal(ctx context.Context, principal string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(principal, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(principal))
	} else {
		user, err = s.userRepo.GetByPhone(ctx, principal)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// RequestLogin generates a login OTP for the email or phone given.
// The code itself never leaves the backend; a notification event carries
// it to the delivery pipeline.
func (s *OTPService) RequestLogin(ctx context.Context, principal string) error {
	principal = strings.TrimSpace(principal)

	user, err := s.findUserByPrincipal(ctx, principal)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return domain.ErrUserInactive
	}

	// Rate limit: one request per principal per cooldown window
	latest, err := s.otpRepo.GetLatest(ctx, principal, OTPPurposeLogin)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if latest != nil && time.Since(latest.CreatedAt) < otpRequestCooldown {
		return ErrOTPRateLimited
	}

	code, err := generateSecureOTP(6)
	if err != nil {
		return fmt.Errorf("generate OTP: %w", err)
	}

	record := &models.OTPCode{
		UserID:    &user.ID,
		Principal: principal,
		Code:      code,
		Purpose:   OTPPurposeLogin,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.OTP.ExpiryMinutes) * time.Minute),
	}
	if err := s.otpRepo.Create(ctx, record); err != nil {
		return err
	}

	s.producer.Publish(messaging.EventOTPRequested, user.ID, map[string]interface{}{
		"principal": principal,
		"code":      code,
		"purpose":   OTPPurposeLogin,
	})

	log.Printf("✅ OTP issued for %s", principal)
	return nil
}

// VerifyLogin checks the code and, on success, logs the user in.
// Each wrong guess burns one attempt; the code dies after the configured
// maximum.
func (s *OTPService) VerifyLogin(ctx context.Context, principal, code string) (*AuthResponse, error) {
	principal = strings.TrimSpace(principal)

	record, err := s.otpRepo.GetLatest(ctx, principal, OTPPurposeLogin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, ErrOTPExpired
	}
	if record.Attempts >= s.cfg.OTP.MaxAttempts {
		return nil, ErrOTPTooManyTries
	}

	if record.Code != code {
		record.Attempts++
		if err := s.otpRepo.Update(ctx, record); err != nil {
			return nil, err
		}
		return nil, ErrOTPWrongCode
	}

	record.Used = true
	if err := s.otpRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	user, err := s.findUserByPrincipal(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	// A successful OTP login proves control of the contact identifier
	if !user.IsVerified {
		user.IsVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ OTP login: %s", principal)
	return s.auth.IssueTokens(ctx, user)
}

// PurgeExpired removes expired OTP rows, called from the daily sweep
func (s *OTPService) PurgeExpired(ctx context.Context) error {
	return s.otpRepo.DeleteExpired(ctx)
}

// generateSecureOTP generates a cryptographically secure numeric OTP
func generateSecureOTP(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String(), nil
}
