package models

import "time"

// Session is one login per (user, device). Only the SHA-256 of the refresh
// token is stored; a revoked session has IsActive false and no hash.
type Session struct {
	ID               string
	UserID           int64
	DeviceID         string
	DeviceName       string
	DeviceType       string
	Browser          string
	OS               string
	IPAddress        string
	RefreshTokenHash []byte
	IsActive         bool
	LastActiveAt     time.Time
	CreatedAt        time.Time
}
