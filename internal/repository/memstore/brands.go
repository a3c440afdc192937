package memstore

import (
	"context"

	"stockify/internal/models"
	"stockify/internal/repository"
)

type brands struct{ s *Store }

func (r brands) Create(ctx context.Context, brand *models.Brand) error {
	return r.s.view(func(d *state) error {
		for _, existing := range d.brands {
			if existing.OwnerID == brand.OwnerID {
				return repository.ErrBrandExists
			}
		}
		now := r.s.now()
		brand.ID = d.id()
		brand.CreatedAt = now
		brand.UpdatedAt = now
		d.brands[brand.ID] = *brand
		return nil
	})
}

func (r brands) GetByID(ctx context.Context, id int64) (models.Brand, error) {
	var brand models.Brand
	err := r.s.view(func(d *state) error {
		found, ok := d.brands[id]
		if !ok {
			return repository.ErrBrandNotFound
		}
		brand = found
		return nil
	})
	return brand, err
}

func (r brands) GetByOwner(ctx context.Context, ownerID int64) (models.Brand, error) {
	var brand models.Brand
	err := r.s.view(func(d *state) error {
		for _, candidate := range d.brands {
			if candidate.OwnerID == ownerID {
				brand = candidate
				return nil
			}
		}
		return repository.ErrBrandNotFound
	})
	return brand, err
}

func (r brands) Update(ctx context.Context, id int64, patch models.BrandPatch) (models.Brand, error) {
	var brand models.Brand
	err := r.s.view(func(d *state) error {
		found, ok := d.brands[id]
		if !ok {
			return repository.ErrBrandNotFound
		}
		if !patch.Empty() {
			if patch.Name != nil {
				found.Name = *patch.Name
			}
			if patch.Mobile != nil {
				found.Mobile = *patch.Mobile
			}
			if patch.AltMobile != nil {
				found.AltMobile = patch.AltMobile
			}
			if patch.Address != nil {
				found.Address = *patch.Address
			}
			if patch.City != nil {
				found.City = *patch.City
			}
			if patch.PostalCode != nil {
				found.PostalCode = patch.PostalCode
			}
			if patch.LogoKey != nil {
				found.LogoKey = patch.LogoKey
			}
			if patch.LogoURL != nil {
				found.LogoURL = patch.LogoURL
			}
			found.UpdatedAt = r.s.now()
			d.brands[id] = found
		}
		brand = found
		return nil
	})
	return brand, err
}
