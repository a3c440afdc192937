package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/device"
	"stockify/internal/ids"
	"stockify/internal/models"
	"stockify/internal/observability/metrics"
	"stockify/internal/repository"
	"stockify/internal/security"
	"stockify/internal/validate"
)

type AuthService struct {
	store        repository.Store
	tokens       *security.TokenIssuer
	hasher       security.PasswordHasher
	sessions     *SessionService
	otps         *OTPService
	deviceSecret string
	metrics      *metrics.Metrics
	log          zerolog.Logger
}

func NewAuthService(
	store repository.Store,
	tokens *security.TokenIssuer,
	hasher security.PasswordHasher,
	sessions *SessionService,
	otps *OTPService,
	deviceSecret string,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		tokens:       tokens,
		hasher:       hasher,
		sessions:     sessions,
		otps:         otps,
		deviceSecret: deviceSecret,
		metrics:      m,
		log:          log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return models.User{}, apperr.Validation("Name is required")
	case strings.TrimSpace(input.Email) == "":
		return models.User{}, apperr.Validation("Email is required")
	case input.Mobile == "":
		return models.User{}, apperr.Validation("Mobile is required")
	case input.Password == "":
		return models.User{}, apperr.Validation("Password is required")
	}

	name, err := validate.String(input.Name, "Name", 3, 30)
	if err != nil {
		return models.User{}, err
	}
	email, err := validate.Email(input.Email)
	if err != nil {
		return models.User{}, err
	}
	mobile, err := validate.Mobile(input.Mobile)
	if err != nil {
		return models.User{}, err
	}
	password, err := validate.Password(input.Password)
	if err != nil {
		return models.User{}, err
	}

	field, err := s.store.Users().ConflictingField(ctx, email, mobile, 0)
	if err != nil {
		return models.User{}, err
	}
	if field != "" {
		return models.User{}, apperr.Conflict(fmt.Sprintf("User with this %s already exists", field))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		ActiveStatus: models.ActiveStatusPending,
	}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return models.User{}, apperr.Conflict("User with this email already exists")
		case errors.Is(err, repository.ErrDuplicateMobile):
			return models.User{}, apperr.Conflict("User with this mobile already exists")
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

type LoginInput struct {
	EmailOrMobile string
	Password      string
	UserAgent     string
	IPAddress     string
}

type AuthResult struct {
	User         models.User
	Session      models.Session
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	if input.EmailOrMobile == "" || input.Password == "" {
		return AuthResult{}, apperr.Validation("Email or mobile and password are required")
	}
	login, err := validate.EmailOrMobile(input.EmailOrMobile)
	if err != nil {
		return AuthResult{}, err
	}
	password, err := validate.Password(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.store.Users().FindByEmailOrMobile(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.Login("invalid_credentials")
			return AuthResult{}, apperr.Unauthorized("Invalid credentials")
		}
		return AuthResult{}, err
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		s.metrics.Login("invalid_credentials")
		return AuthResult{}, apperr.Unauthorized("Invalid credentials")
	}
	if user.Banned {
		s.metrics.Login("banned")
		return AuthResult{}, apperr.Forbidden("Your account has been banned")
	}
	if !user.IsActive() {
		s.metrics.Login("pending")
		if err := s.otps.Issue(ctx, user); err != nil {
			s.log.Error().Err(err).Int64("user_id", user.ID).Msg("issue otp failed")
		}
		return AuthResult{}, apperr.Forbidden("Your account is not active yet")
	}

	info := device.Parse(input.UserAgent)
	ip := device.NormalizeIP(input.IPAddress)
	deviceID := device.Fingerprint(s.deviceSecret, info, ip)

	accessToken, err := s.tokens.IssueAccessToken(user.ID, string(user.ActiveStatus), string(user.Role))
	if err != nil {
		return AuthResult{}, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		DeviceID:         deviceID,
		DeviceName:       info.Name,
		DeviceType:       info.Type,
		Browser:          info.Browser,
		OS:               info.OS,
		IPAddress:        ip,
		RefreshTokenHash: security.HashRefreshToken(refreshToken),
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Users().LockByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if locked.Banned {
			return apperr.Forbidden("Your account has been banned")
		}
		if _, err := s.sessions.EnforceDeviceLimit(ctx, tx, user.ID, deviceID); err != nil {
			return err
		}
		if err := tx.Sessions().Upsert(ctx, &session); err != nil {
			return fmt.Errorf("store session: %w", err)
		}
		count, err := s.sessions.RecordDeviceCount(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		user.DeviceCount = count
		return tx.Users().MarkLogin(ctx, user.ID)
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.metrics.Login("success")
	s.log.Info().
		Int64("user_id", user.ID).
		Str("session_id", session.ID).
		Str("device", session.DeviceName).
		Msg("user logged in")

	return AuthResult{
		User:         user,
		Session:      session,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh issues a new access token for the session holding refreshToken.
// The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, models.User, error) {
	if refreshToken == "" {
		return "", models.User{}, apperr.Unauthorized("Refresh token is required")
	}
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", models.User{}, apperr.Forbidden("Invalid refresh token")
	}

	if _, err := s.sessions.Authenticate(ctx, claims.UserID, refreshToken); err != nil {
		if errors.Is(err, ErrSessionTerminated) {
			return "", models.User{}, apperr.Forbidden("Invalid refresh token")
		}
		return "", models.User{}, err
	}

	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", models.User{}, apperr.Forbidden("Invalid refresh token")
		}
		return "", models.User{}, err
	}
	if user.Banned {
		return "", models.User{}, apperr.Forbidden("Your account has been banned")
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, string(user.ActiveStatus), string(user.Role))
	if err != nil {
		return "", models.User{}, err
	}
	return accessToken, user, nil
}

// Logout revokes the session holding refreshToken, if any.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		session, err := tx.Sessions().RevokeByRefreshHash(ctx, security.HashRefreshToken(refreshToken))
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = s.sessions.RecordDeviceCount(ctx, tx, session.UserID)
		return err
	})
}

func (s *AuthService) LogoutAll(ctx context.Context, userID int64) (int64, error) {
	var revoked int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		n, err := s.sessions.RevokeAll(ctx, tx, userID)
		revoked = n
		return err
	})
	return revoked, err
}
