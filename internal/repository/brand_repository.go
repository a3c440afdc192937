package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"stockify/internal/models"
)

type BrandRepo struct {
	db DBTX
}

const brandColumns = `id, owner_id, name, mobile, alt_mobile, address, city, postal_code,
	logo_key, logo_url, created_at, updated_at`

func scanBrand(row pgx.Row) (models.Brand, error) {
	var brand models.Brand
	err := row.Scan(
		&brand.ID,
		&brand.OwnerID,
		&brand.Name,
		&brand.Mobile,
		&brand.AltMobile,
		&brand.Address,
		&brand.City,
		&brand.PostalCode,
		&brand.LogoKey,
		&brand.LogoURL,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Brand{}, ErrBrandNotFound
		}
		return models.Brand{}, err
	}
	return brand, nil
}

func (r *BrandRepo) Create(ctx context.Context, brand *models.Brand) error {
	const query = `
		INSERT INTO brands (owner_id, name, mobile, alt_mobile, address, city, postal_code, logo_key, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		brand.OwnerID,
		brand.Name,
		brand.Mobile,
		brand.AltMobile,
		brand.Address,
		brand.City,
		brand.PostalCode,
		brand.LogoKey,
		brand.LogoURL,
	).Scan(&brand.ID, &brand.CreatedAt, &brand.UpdatedAt)
	if _, ok := uniqueConstraint(err); ok {
		return ErrBrandExists
	}
	return err
}

func (r *BrandRepo) GetByID(ctx context.Context, id int64) (models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1`
	return scanBrand(r.db.QueryRow(ctx, query, id))
}

func (r *BrandRepo) GetByOwner(ctx context.Context, ownerID int64) (models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE owner_id = $1`
	return scanBrand(r.db.QueryRow(ctx, query, ownerID))
}

func (r *BrandRepo) Update(ctx context.Context, id int64, patch models.BrandPatch) (models.Brand, error) {
	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Mobile != nil {
		b.set("mobile", *patch.Mobile)
	}
	if patch.AltMobile != nil {
		b.set("alt_mobile", *patch.AltMobile)
	}
	if patch.Address != nil {
		b.set("address", *patch.Address)
	}
	if patch.City != nil {
		b.set("city", *patch.City)
	}
	if patch.PostalCode != nil {
		b.set("postal_code", *patch.PostalCode)
	}
	if patch.LogoKey != nil {
		b.set("logo_key", *patch.LogoKey)
	}
	if patch.LogoURL != nil {
		b.set("logo_url", *patch.LogoURL)
	}
	if b.empty() {
		return r.GetByID(ctx, id)
	}
	b.setRaw("updated_at = NOW()")

	query, args := b.build("brands", "id = {1}", id)
	return scanBrand(r.db.QueryRow(ctx, query+" RETURNING "+brandColumns, args...))
}
