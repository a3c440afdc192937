package repository

import (
	"context"
	"errors"

	"stockify/internal/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrBrandNotFound       = errors.New("brand not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrOTPNotFound         = errors.New("otp not found")

	ErrDuplicateEmail  = errors.New("email already exists")
	ErrDuplicateMobile = errors.New("mobile already exists")
	ErrBrandExists     = errors.New("user already has a brand")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (models.User, error)
	// LockByID reads the user row with FOR UPDATE; only meaningful inside WithTx.
	LockByID(ctx context.Context, id int64) (models.User, error)
	FindByEmailOrMobile(ctx context.Context, value string) (models.User, error)
	// ConflictingField reports "email" or "mobile" when either is already taken.
	ConflictingField(ctx context.Context, email, mobile string, excludeID int64) (string, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	SetActiveStatus(ctx context.Context, id int64, status models.ActiveStatus) error
	SetBanned(ctx context.Context, id int64, banned bool) error
	SetBrand(ctx context.Context, id int64, brandID int64) error
	SetDeviceCount(ctx context.Context, id int64, count int) error
	MarkLogin(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]models.User, int, error)
}

type SessionRepository interface {
	// Upsert inserts the session or, for an existing (user, device) pair,
	// re-activates it with the new token hash. The stored ID and timestamps
	// are written back into session.
	Upsert(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	FindActiveByRefreshHash(ctx context.Context, hash []byte, userID int64) (models.Session, error)
	// ListActiveByUser orders by last activity, most recent first.
	ListActiveByUser(ctx context.Context, userID int64) ([]models.Session, error)
	CountActiveByUser(ctx context.Context, userID int64) (int, error)
	Touch(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	RevokeByRefreshHash(ctx context.Context, hash []byte) (models.Session, error)
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
}

type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id int64) (models.Brand, error)
	GetByOwner(ctx context.Context, ownerID int64) (models.Brand, error)
	Update(ctx context.Context, id int64, patch models.BrandPatch) (models.Brand, error)
}

// ClientRepository methods taking a brandID only see clients of that brand.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, brandID, id int64) (models.Client, error)
	Update(ctx context.Context, brandID, id int64, patch models.ClientPatch) (models.Client, error)
	Touch(ctx context.Context, id int64) error
	Delete(ctx context.Context, brandID, id int64) error
	ListSummaries(ctx context.Context, brandID int64, search string) ([]models.ClientSummary, error)
	CountByType(ctx context.Context, brandID int64, search string) (models.ClientTypeCount, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, brandID, id int64) (models.Transaction, error)
	Delete(ctx context.Context, id int64) error
	DeleteByClient(ctx context.Context, clientID int64) (int64, error)
	Sums(ctx context.Context, clientID int64) (models.Balance, error)
	CountByClient(ctx context.Context, clientID int64) (int, error)
	// ListByClient orders by business date then id, both descending.
	ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]models.Transaction, error)
}

type OTPRepository interface {
	Upsert(ctx context.Context, otp models.OTP) error
	Get(ctx context.Context, userID int64) (models.OTP, error)
	IncrementAttempts(ctx context.Context, userID int64) error
	Delete(ctx context.Context, userID int64) error
}

// Store groups the repositories over one database handle. Repositories
// obtained from the Store passed to WithTx's callback share its transaction.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Brands() BrandRepository
	Clients() ClientRepository
	Transactions() TransactionRepository
	OTPs() OTPRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
