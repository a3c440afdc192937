package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/observability/metrics"
	"stockify/internal/repository"
	"stockify/internal/security"
)

var ErrSessionTerminated = errors.New("session terminated")

type SessionService struct {
	store      repository.Store
	maxDevices int
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

func NewSessionService(store repository.Store, maxDevices int, m *metrics.Metrics, log zerolog.Logger) *SessionService {
	if maxDevices < 1 {
		maxDevices = 1
	}
	return &SessionService{
		store:      store,
		maxDevices: maxDevices,
		metrics:    m,
		log:        log,
	}
}

// EnforceDeviceLimit makes room for deviceID among the user's active
// sessions. A device that already holds an active session is never
// counted against the limit; otherwise the least recently active sessions
// are revoked until one slot is free. Call it with the transactional store
// while the user row is locked.
func (s *SessionService) EnforceDeviceLimit(ctx context.Context, store repository.Store, userID int64, deviceID string) ([]models.Session, error) {
	active, err := store.Sessions().ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	for _, session := range active {
		if session.DeviceID == deviceID {
			return nil, nil
		}
	}

	var evicted []models.Session
	for len(active) >= s.maxDevices {
		oldest := active[len(active)-1]
		if err := store.Sessions().Revoke(ctx, oldest.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			return evicted, fmt.Errorf("revoke session %s: %w", oldest.ID, err)
		}
		evicted = append(evicted, oldest)
		active = active[:len(active)-1]
		s.metrics.DeviceEvicted()
		s.log.Info().
			Int64("user_id", userID).
			Str("session_id", oldest.ID).
			Str("device", oldest.DeviceName).
			Msg("device limit reached, oldest session revoked")
	}
	return evicted, nil
}

// RecordDeviceCount stores the user's current number of active sessions.
func (s *SessionService) RecordDeviceCount(ctx context.Context, store repository.Store, userID int64) (int, error) {
	count, err := store.Sessions().CountActiveByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	if err := store.Users().SetDeviceCount(ctx, userID, count); err != nil {
		return 0, fmt.Errorf("set device count: %w", err)
	}
	return count, nil
}

// Authenticate returns the active session holding refreshToken for the
// user and records activity on it.
func (s *SessionService) Authenticate(ctx context.Context, userID int64, refreshToken string) (models.Session, error) {
	session, err := s.store.Sessions().FindActiveByRefreshHash(ctx, security.HashRefreshToken(refreshToken), userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return models.Session{}, ErrSessionTerminated
		}
		return models.Session{}, err
	}
	if err := s.store.Sessions().Touch(ctx, session.ID); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("touch session failed")
	}
	return session, nil
}

func (s *SessionService) ListDevices(ctx context.Context, userID int64) ([]models.Session, error) {
	return s.store.Sessions().ListActiveByUser(ctx, userID)
}

func (s *SessionService) RevokeDevice(ctx context.Context, userID int64, sessionID, currentSessionID string) error {
	if sessionID == currentSessionID {
		return apperr.Validation("Use logout to end the current session")
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		session, err := tx.Sessions().GetByID(ctx, sessionID)
		if err != nil || session.UserID != userID || !session.IsActive {
			if err == nil || errors.Is(err, repository.ErrSessionNotFound) {
				return apperr.NotFound("Session not found")
			}
			return err
		}
		if err := tx.Sessions().Revoke(ctx, sessionID); err != nil {
			return err
		}
		_, err = s.RecordDeviceCount(ctx, tx, userID)
		return err
	})
}

func (s *SessionService) RevokeAll(ctx context.Context, store repository.Store, userID int64) (int64, error) {
	n, err := store.Sessions().RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	if _, err := s.RecordDeviceCount(ctx, store, userID); err != nil {
		return n, err
	}
	return n, nil
}
