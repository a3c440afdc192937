package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ClientType string

const (
	ClientTypeCustomer ClientType = "customer"
	ClientTypeSupplier ClientType = "supplier"
)

func (t ClientType) Valid() bool {
	return t == ClientTypeCustomer || t == ClientTypeSupplier
}

type Client struct {
	ID        int64
	BrandID   int64
	CreatedBy int64
	Name      string
	Type      ClientType
	Mobile    *string
	AvatarKey *string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type ClientPatch struct {
	Name      *string
	Mobile    *string
	AvatarKey *string
	AvatarURL *string
}

func (p ClientPatch) Empty() bool {
	return p.Name == nil && p.Mobile == nil && p.AvatarKey == nil && p.AvatarURL == nil
}

// Balance is the tally of a client: credits minus debits.
type Balance struct {
	DebitSum  decimal.Decimal
	CreditSum decimal.Decimal
	Balance   decimal.Decimal
}

func NewBalance(debit, credit decimal.Decimal) Balance {
	return Balance{
		DebitSum:  debit,
		CreditSum: credit,
		Balance:   credit.Sub(debit),
	}
}

type ClientSummary struct {
	Client
	Balance
}

type ClientTypeCount struct {
	Customers int
	Suppliers int
}
