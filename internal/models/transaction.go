package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

func (t TransactionType) Valid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

type Transaction struct {
	ID          int64
	ClientID    int64
	Amount      decimal.Decimal
	Type        TransactionType
	Description *string
	CreatedDate time.Time
	CreatedAt   time.Time
}
