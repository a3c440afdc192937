package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/mailer"
	"stockify/internal/models"
	"stockify/internal/repository"
	"stockify/internal/security"
	"stockify/internal/validate"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

type OTPService struct {
	store       repository.Store
	hasher      security.PasswordHasher
	mailer      mailer.Sender
	ttl         time.Duration
	maxAttempts int
	log         zerolog.Logger
	now         func() time.Time
	generate    func() (string, error)
}

func NewOTPService(
	store repository.Store,
	hasher security.PasswordHasher,
	sender mailer.Sender,
	ttl time.Duration,
	maxAttempts int,
	log zerolog.Logger,
) *OTPService {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &OTPService{
		store:       store,
		hasher:      hasher,
		mailer:      sender,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		log:         log,
		now:         time.Now,
		generate:    security.GenerateOTP,
	}
}

// Issue replaces any outstanding code of the user with a fresh one and
// mails it.
func (s *OTPService) Issue(ctx context.Context, user models.User) error {
	code, err := s.generate()
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}

	otp := models.OTP{
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.OTPs().Upsert(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.Name, code, s.ttl); err != nil {
		return fmt.Errorf("deliver otp: %w", err)
	}
	s.log.Info().Int64("user_id", user.ID).Msg("otp issued")
	return nil
}

func (s *OTPService) pendingUser(ctx context.Context, emailOrMobile string) (models.User, error) {
	if strings.TrimSpace(emailOrMobile) == "" {
		return models.User{}, apperr.Validation("Email or mobile is required")
	}
	login, err := validate.EmailOrMobile(emailOrMobile)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.store.Users().FindByEmailOrMobile(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		return models.User{}, err
	}
	if user.IsActive() {
		return models.User{}, apperr.Validation("Account is already active")
	}
	return user, nil
}

func (s *OTPService) Resend(ctx context.Context, emailOrMobile string) error {
	user, err := s.pendingUser(ctx, emailOrMobile)
	if err != nil {
		return err
	}
	if user.Banned {
		return apperr.Forbidden("Your account has been banned")
	}
	return s.Issue(ctx, user)
}

type otpOutcome int

const (
	otpVerified otpOutcome = iota
	otpMissing
	otpExpired
	otpLocked
	otpMismatch
)

// Verify activates a pending account when code matches its live OTP. Every
// wrong guess counts against the attempt limit; a used code is deleted.
func (s *OTPService) Verify(ctx context.Context, emailOrMobile, code string) (models.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.User{}, apperr.Validation("OTP is required")
	}
	if !otpPattern.MatchString(code) {
		return models.User{}, apperr.Validation("Invalid OTP")
	}
	user, err := s.pendingUser(ctx, emailOrMobile)
	if err != nil {
		return models.User{}, err
	}

	var outcome otpOutcome
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		otp, err := tx.OTPs().Get(ctx, user.ID)
		if errors.Is(err, repository.ErrOTPNotFound) {
			outcome = otpMissing
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case otp.Expired(s.now()):
			outcome = otpExpired
			return tx.OTPs().Delete(ctx, user.ID)
		case otp.Attempts >= s.maxAttempts:
			outcome = otpLocked
			return nil
		case !security.VerifyPassword(code, otp.CodeHash):
			outcome = otpMismatch
			return tx.OTPs().IncrementAttempts(ctx, user.ID)
		}

		outcome = otpVerified
		if err := tx.OTPs().Delete(ctx, user.ID); err != nil {
			return err
		}
		return tx.Users().SetActiveStatus(ctx, user.ID, models.ActiveStatusActive)
	})
	if err != nil {
		return models.User{}, err
	}

	switch outcome {
	case otpMissing, otpExpired:
		return models.User{}, apperr.Validation("OTP has expired, please request a new one")
	case otpLocked:
		return models.User{}, apperr.Validation("Too many incorrect attempts, please request a new OTP")
	case otpMismatch:
		return models.User{}, apperr.Validation("Invalid OTP")
	}

	user.ActiveStatus = models.ActiveStatusActive
	s.log.Info().Int64("user_id", user.ID).Msg("account activated")
	return user, nil
}
