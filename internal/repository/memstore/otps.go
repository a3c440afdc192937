package memstore

import (
	"context"

	"stockify/internal/models"
	"stockify/internal/repository"
)

type otps struct{ s *Store }

func (r otps) Upsert(ctx context.Context, otp models.OTP) error {
	return r.s.view(func(d *state) error {
		otp.Attempts = 0
		otp.CreatedAt = r.s.now()
		d.otps[otp.UserID] = otp
		return nil
	})
}

func (r otps) Get(ctx context.Context, userID int64) (models.OTP, error) {
	var otp models.OTP
	err := r.s.view(func(d *state) error {
		found, ok := d.otps[userID]
		if !ok {
			return repository.ErrOTPNotFound
		}
		otp = found
		return nil
	})
	return otp, err
}

func (r otps) IncrementAttempts(ctx context.Context, userID int64) error {
	return r.s.view(func(d *state) error {
		if otp, ok := d.otps[userID]; ok {
			otp.Attempts++
			d.otps[userID] = otp
		}
		return nil
	})
}

func (r otps) Delete(ctx context.Context, userID int64) error {
	return r.s.view(func(d *state) error {
		delete(d.otps, userID)
		return nil
	})
}
