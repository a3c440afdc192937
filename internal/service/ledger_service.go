package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/observability/metrics"
	"stockify/internal/repository"
	"stockify/internal/validate"
)

// LedgerService derives balances from the transaction rows; balances are
// never stored.
type LedgerService struct {
	store   repository.Store
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewLedgerService(store repository.Store, m *metrics.Metrics, log zerolog.Logger) *LedgerService {
	return &LedgerService{store: store, metrics: m, log: log}
}

func (s *LedgerService) ComputeBalance(ctx context.Context, clientID int64) (models.Balance, error) {
	return s.store.Transactions().Sums(ctx, clientID)
}

func (s *LedgerService) client(ctx context.Context, store repository.Store, brandID, clientID int64) (models.Client, error) {
	client, err := store.Clients().GetByID(ctx, brandID, clientID)
	if errors.Is(err, repository.ErrClientNotFound) {
		return models.Client{}, apperr.NotFound("Client not found")
	}
	return client, err
}

func (s *LedgerService) GetClient(ctx context.Context, brandID, clientID int64) (models.ClientSummary, error) {
	client, err := s.client(ctx, s.store, brandID, clientID)
	if err != nil {
		return models.ClientSummary{}, err
	}
	balance, err := s.ComputeBalance(ctx, clientID)
	if err != nil {
		return models.ClientSummary{}, err
	}
	return models.ClientSummary{Client: client, Balance: balance}, nil
}

type ClientList struct {
	Clients   []models.ClientSummary
	Customers int
	Suppliers int
	Search    string
}

func (s *LedgerService) ListClients(ctx context.Context, brandID int64, search string) (ClientList, error) {
	term := validate.SearchTerm(search)
	clients, err := s.store.Clients().ListSummaries(ctx, brandID, term)
	if err != nil {
		return ClientList{}, fmt.Errorf("list clients: %w", err)
	}
	counts, err := s.store.Clients().CountByType(ctx, brandID, term)
	if err != nil {
		return ClientList{}, fmt.Errorf("count clients: %w", err)
	}
	return ClientList{
		Clients:   clients,
		Customers: counts.Customers,
		Suppliers: counts.Suppliers,
		Search:    term,
	}, nil
}

type TransactionPage struct {
	Transactions []models.Transaction
	Pagination   Pagination
}

// ListTransactions pages through a client's transactions, newest business
// date first.
func (s *LedgerService) ListTransactions(ctx context.Context, brandID, clientID int64, page, limit int) (TransactionPage, error) {
	if _, err := s.client(ctx, s.store, brandID, clientID); err != nil {
		return TransactionPage{}, err
	}
	page, limit = normalizePage(page, limit)

	total, err := s.store.Transactions().CountByClient(ctx, clientID)
	if err != nil {
		return TransactionPage{}, err
	}
	txs, err := s.store.Transactions().ListByClient(ctx, clientID, limit, (page-1)*limit)
	if err != nil {
		return TransactionPage{}, err
	}
	return TransactionPage{Transactions: txs, Pagination: newPagination(page, limit, total)}, nil
}

type TransactionInput struct {
	Amount      string
	Type        string
	Description string
	CreatedDate string
}

func parseTransaction(input TransactionInput) (models.Transaction, error) {
	switch {
	case strings.TrimSpace(input.Amount) == "":
		return models.Transaction{}, apperr.Validation("Amount is required")
	case strings.TrimSpace(input.Type) == "":
		return models.Transaction{}, apperr.Validation("Type is required")
	case strings.TrimSpace(input.CreatedDate) == "":
		return models.Transaction{}, apperr.Validation("Created date is required")
	}

	amount, err := validate.Amount(input.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	txType := models.TransactionType(strings.ToLower(strings.TrimSpace(input.Type)))
	if !txType.Valid() {
		return models.Transaction{}, apperr.Validation("Type must be 'credit' or 'debit'")
	}
	description, err := validate.Description(input.Description)
	if err != nil {
		return models.Transaction{}, err
	}
	createdDate, err := validate.Date(input.CreatedDate, "Created date")
	if err != nil {
		return models.Transaction{}, err
	}

	return models.Transaction{
		Amount:      amount,
		Type:        txType,
		Description: description,
		CreatedDate: createdDate,
	}, nil
}

// AddTransaction records the transaction and bumps the client's
// updated_at in one database transaction.
func (s *LedgerService) AddTransaction(ctx context.Context, brandID, clientID int64, input TransactionInput) (models.Transaction, error) {
	tx, err := parseTransaction(input)
	if err != nil {
		return models.Transaction{}, err
	}
	tx.ClientID = clientID

	err = s.store.WithTx(ctx, func(store repository.Store) error {
		if _, err := s.client(ctx, store, brandID, clientID); err != nil {
			return err
		}
		if err := store.Transactions().Create(ctx, &tx); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return store.Clients().Touch(ctx, clientID)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.metrics.TransactionRecorded(string(tx.Type))
	return tx, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, brandID, transactionID int64) (models.Transaction, error) {
	tx, err := s.store.Transactions().GetByID(ctx, brandID, transactionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return models.Transaction{}, apperr.NotFound("Transaction not found")
	}
	return tx, err
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, brandID, transactionID int64) error {
	return s.store.WithTx(ctx, func(store repository.Store) error {
		tx, err := store.Transactions().GetByID(ctx, brandID, transactionID)
		if err != nil {
			if errors.Is(err, repository.ErrTransactionNotFound) {
				return apperr.NotFound("Transaction not found")
			}
			return err
		}
		if err := store.Transactions().Delete(ctx, tx.ID); err != nil {
			return err
		}
		return store.Clients().Touch(ctx, tx.ClientID)
	})
}
