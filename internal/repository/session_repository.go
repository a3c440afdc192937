package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"stockify/internal/models"
)

type SessionRepo struct {
	db DBTX
}

const sessionColumns = `id, user_id, device_id, device_name, device_type, browser, os, ip_address,
	refresh_token_hash, is_active, last_active_at, created_at`

func scanSession(row pgx.Row) (models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceID,
		&session.DeviceName,
		&session.DeviceType,
		&session.Browser,
		&session.OS,
		&session.IPAddress,
		&session.RefreshTokenHash,
		&session.IsActive,
		&session.LastActiveAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (r *SessionRepo) Upsert(ctx context.Context, session *models.Session) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, device_id, device_name, device_type, browser, os, ip_address,
			refresh_token_hash, is_active, last_active_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, NOW(), NOW()
		)
		ON CONFLICT (user_id, device_id)
		DO UPDATE SET
			id = EXCLUDED.id,
			device_name = EXCLUDED.device_name,
			device_type = EXCLUDED.device_type,
			browser = EXCLUDED.browser,
			os = EXCLUDED.os,
			ip_address = EXCLUDED.ip_address,
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			is_active = TRUE,
			last_active_at = NOW()
		RETURNING last_active_at, created_at
	`

	session.IsActive = true
	return r.db.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		session.DeviceName,
		session.DeviceType,
		session.Browser,
		session.OS,
		session.IPAddress,
		session.RefreshTokenHash,
	).Scan(&session.LastActiveAt, &session.CreatedAt)
}

func (r *SessionRepo) GetByID(ctx context.Context, id string) (models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, id))
}

func (r *SessionRepo) FindActiveByRefreshHash(ctx context.Context, hash []byte, userID int64) (models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE refresh_token_hash = $1 AND user_id = $2 AND is_active`
	return scanSession(r.db.QueryRow(ctx, query, hash, userID))
}

func (r *SessionRepo) ListActiveByUser(ctx context.Context, userID int64) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1 AND is_active
		ORDER BY last_active_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM user_sessions WHERE user_id = $1 AND is_active`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepo) Touch(ctx context.Context, id string) error {
	const query = `UPDATE user_sessions SET last_active_at = NOW() WHERE id = $1 AND is_active`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	const query = `
		UPDATE user_sessions SET is_active = FALSE, refresh_token_hash = NULL
		WHERE id = $1 AND is_active
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) RevokeByRefreshHash(ctx context.Context, hash []byte) (models.Session, error) {
	query := `
		UPDATE user_sessions SET is_active = FALSE, refresh_token_hash = NULL
		WHERE refresh_token_hash = $1 AND is_active
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, hash))
}

func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	const query = `
		UPDATE user_sessions SET is_active = FALSE, refresh_token_hash = NULL
		WHERE user_id = $1 AND is_active
	`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
