package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type ActiveStatus string

const (
	ActiveStatusPending ActiveStatus = "pending"
	ActiveStatusActive  ActiveStatus = "active"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	Mobile       string
	PasswordHash []byte
	Role         UserRole
	ActiveStatus ActiveStatus
	Banned       bool
	BrandID      *int64
	AvatarKey    *string
	AvatarURL    *string
	DeviceCount  int
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsActive() bool {
	return u.ActiveStatus == ActiveStatusActive
}

// UserPatch carries the fields of a profile edit. Nil means unchanged.
type UserPatch struct {
	Name      *string
	Mobile    *string
	AvatarKey *string
	AvatarURL *string
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Mobile == nil && p.AvatarKey == nil && p.AvatarURL == nil
}
