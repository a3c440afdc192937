package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"stockify/internal/models"
)

type ClientRepo struct {
	db DBTX
}

const clientColumns = `c.id, c.brand_id, c.created_by, c.name, c.type, c.mobile, c.avatar_key, c.avatar_url,
	c.created_at, c.updated_at`

func scanClient(row pgx.Row, extra ...any) (models.Client, error) {
	var client models.Client
	dest := []any{
		&client.ID,
		&client.BrandID,
		&client.CreatedBy,
		&client.Name,
		&client.Type,
		&client.Mobile,
		&client.AvatarKey,
		&client.AvatarURL,
		&client.CreatedAt,
		&client.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, ErrClientNotFound
		}
		return models.Client{}, err
	}
	return client, nil
}

func (r *ClientRepo) Create(ctx context.Context, client *models.Client) error {
	const query = `
		INSERT INTO clients (brand_id, created_by, name, type, mobile, avatar_key, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query,
		client.BrandID,
		client.CreatedBy,
		client.Name,
		client.Type,
		client.Mobile,
		client.AvatarKey,
		client.AvatarURL,
	).Scan(&client.ID, &client.CreatedAt)
}

func (r *ClientRepo) GetByID(ctx context.Context, brandID, id int64) (models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c WHERE c.id = $1 AND c.brand_id = $2`
	return scanClient(r.db.QueryRow(ctx, query, id, brandID))
}

func (r *ClientRepo) Update(ctx context.Context, brandID, id int64, patch models.ClientPatch) (models.Client, error) {
	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Mobile != nil {
		b.set("mobile", *patch.Mobile)
	}
	if patch.AvatarKey != nil {
		b.set("avatar_key", *patch.AvatarKey)
	}
	if patch.AvatarURL != nil {
		b.set("avatar_url", *patch.AvatarURL)
	}
	if b.empty() {
		return r.GetByID(ctx, brandID, id)
	}
	b.setRaw("updated_at = NOW()")

	query, args := b.build("clients c", "c.id = {1} AND c.brand_id = {2}", id, brandID)
	return scanClient(r.db.QueryRow(ctx, query+" RETURNING "+clientColumns, args...))
}

func (r *ClientRepo) Touch(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE clients SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *ClientRepo) Delete(ctx context.Context, brandID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND brand_id = $2`, id, brandID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

const searchFilter = `($2 = '' OR c.name ILIKE '%' || $2 || '%' OR c.mobile ILIKE '%' || $2 || '%')`

func (r *ClientRepo) ListSummaries(ctx context.Context, brandID int64, search string) ([]models.ClientSummary, error) {
	query := `
		SELECT ` + clientColumns + `,
			COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'debit'), 0)::text,
			COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'credit'), 0)::text
		FROM clients c
		LEFT JOIN transactions t ON t.client_id = c.id
		WHERE c.brand_id = $1 AND ` + searchFilter + `
		GROUP BY c.id
		ORDER BY c.id DESC`

	rows, err := r.db.Query(ctx, query, brandID, escapeLike(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.ClientSummary{}
	for rows.Next() {
		var debit, credit string
		client, err := scanClient(rows, &debit, &credit)
		if err != nil {
			return nil, err
		}
		balance, err := parseSums(debit, credit)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ClientSummary{Client: client, Balance: balance})
	}
	return summaries, rows.Err()
}

func (r *ClientRepo) CountByType(ctx context.Context, brandID int64, search string) (models.ClientTypeCount, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE c.type = 'customer'),
			COUNT(*) FILTER (WHERE c.type = 'supplier')
		FROM clients c
		WHERE c.brand_id = $1 AND ` + searchFilter

	var counts models.ClientTypeCount
	err := r.db.QueryRow(ctx, query, brandID, escapeLike(search)).Scan(&counts.Customers, &counts.Suppliers)
	return counts, err
}

func parseSums(debit, credit string) (models.Balance, error) {
	d, err := decimal.NewFromString(debit)
	if err != nil {
		return models.Balance{}, err
	}
	c, err := decimal.NewFromString(credit)
	if err != nil {
		return models.Balance{}, err
	}
	return models.NewBalance(d, c), nil
}
