package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"stockify/internal/models"
)

type OTPRepo struct {
	db DBTX
}

func (r *OTPRepo) Upsert(ctx context.Context, otp models.OTP) error {
	const query = `
		INSERT INTO user_otps (user_id, code_hash, attempts, expires_at, created_at)
		VALUES ($1, $2, 0, $3, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			code_hash = EXCLUDED.code_hash,
			attempts = 0,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, otp.UserID, otp.CodeHash, otp.ExpiresAt)
	return err
}

func (r *OTPRepo) Get(ctx context.Context, userID int64) (models.OTP, error) {
	const query = `
		SELECT user_id, code_hash, attempts, expires_at, created_at
		FROM user_otps WHERE user_id = $1
	`

	var otp models.OTP
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&otp.UserID,
		&otp.CodeHash,
		&otp.Attempts,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OTP{}, ErrOTPNotFound
	}
	return otp, err
}

func (r *OTPRepo) IncrementAttempts(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE user_otps SET attempts = attempts + 1 WHERE user_id = $1`, userID)
	return err
}

func (r *OTPRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_otps WHERE user_id = $1`, userID)
	return err
}
