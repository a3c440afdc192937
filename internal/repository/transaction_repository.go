package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"stockify/internal/models"
)

type TransactionRepo struct {
	db DBTX
}

const transactionColumns = `t.id, t.client_id, t.amount::text, t.type, t.description, t.created_date, t.created_at`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var (
		tx     models.Transaction
		amount string
	)
	err := row.Scan(
		&tx.ID,
		&tx.ClientID,
		&amount,
		&tx.Type,
		&tx.Description,
		&tx.CreatedDate,
		&tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, ErrTransactionNotFound
		}
		return models.Transaction{}, err
	}
	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (r *TransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	const query = `
		INSERT INTO transactions (client_id, amount, type, description, created_date)
		VALUES ($1, $2::text::numeric, $3, $4, $5)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query,
		tx.ClientID,
		tx.Amount.StringFixed(2),
		tx.Type,
		tx.Description,
		tx.CreatedDate,
	).Scan(&tx.ID, &tx.CreatedAt)
}

func (r *TransactionRepo) GetByID(ctx context.Context, brandID, id int64) (models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN clients c ON c.id = t.client_id
		WHERE t.id = $1 AND c.brand_id = $2`
	return scanTransaction(r.db.QueryRow(ctx, query, id, brandID))
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepo) DeleteByClient(ctx context.Context, clientID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE client_id = $1`, clientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *TransactionRepo) Sums(ctx context.Context, clientID int64) (models.Balance, error) {
	const query = `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0)::text
		FROM transactions
		WHERE client_id = $1
	`

	var debit, credit string
	if err := r.db.QueryRow(ctx, query, clientID).Scan(&debit, &credit); err != nil {
		return models.Balance{}, err
	}
	return parseSums(debit, credit)
}

func (r *TransactionRepo) CountByClient(ctx context.Context, clientID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE client_id = $1`, clientID).Scan(&count)
	return count, err
}

func (r *TransactionRepo) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.client_id = $1
		ORDER BY t.created_date DESC, t.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
