package models

import "time"

type OTP struct {
	UserID    int64
	CodeHash  []byte
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (o OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
