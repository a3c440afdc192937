package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/repository"
	"stockify/internal/validate"
)

type BrandService struct {
	store   repository.Store
	uploads ImageUploader
	log     zerolog.Logger
}

func NewBrandService(store repository.Store, uploads ImageUploader, log zerolog.Logger) *BrandService {
	return &BrandService{store: store, uploads: uploads, log: log}
}

type BrandInput struct {
	Name       *string
	Mobile     *string
	AltMobile  *string
	Address    *string
	City       *string
	PostalCode *string
	Logo       *multipart.FileHeader
}

// brandFields validates every present field and returns them as a patch.
func brandFields(input BrandInput) (models.BrandPatch, error) {
	var patch models.BrandPatch
	if input.Name != nil {
		name, err := validate.String(*input.Name, "Brand name", 2, 50)
		if err != nil {
			return patch, err
		}
		patch.Name = &name
	}
	if input.Mobile != nil {
		mobile, err := validate.Mobile(*input.Mobile)
		if err != nil {
			return patch, err
		}
		patch.Mobile = &mobile
	}
	if input.AltMobile != nil && *input.AltMobile != "" {
		alt, err := validate.Mobile(*input.AltMobile)
		if err != nil {
			return patch, apperr.Validation("Alternative " + strings.ToLower(apperr.From(err).Message))
		}
		patch.AltMobile = &alt
	}
	if input.Address != nil {
		address, err := validate.String(*input.Address, "Address", 3, 200)
		if err != nil {
			return patch, err
		}
		patch.Address = &address
	}
	if input.City != nil {
		city, err := validate.String(*input.City, "City", 2, 50)
		if err != nil {
			return patch, err
		}
		patch.City = &city
	}
	if input.PostalCode != nil && *input.PostalCode != "" {
		postal, err := validate.String(*input.PostalCode, "Postal code", 3, 10)
		if err != nil {
			return patch, err
		}
		patch.PostalCode = &postal
	}
	return patch, nil
}

// Create registers the caller's brand. A user owns at most one brand; a
// second attempt fails without touching the existing row.
func (s *BrandService) Create(ctx context.Context, userID int64, input BrandInput) (models.Brand, error) {
	switch {
	case input.Name == nil || strings.TrimSpace(*input.Name) == "":
		return models.Brand{}, apperr.Validation("Brand name is required")
	case input.Mobile == nil || *input.Mobile == "":
		return models.Brand{}, apperr.Validation("Mobile is required")
	case input.Address == nil || strings.TrimSpace(*input.Address) == "":
		return models.Brand{}, apperr.Validation("Address is required")
	case input.City == nil || strings.TrimSpace(*input.City) == "":
		return models.Brand{}, apperr.Validation("City is required")
	}
	fields, err := brandFields(input)
	if err != nil {
		return models.Brand{}, err
	}

	brand := models.Brand{
		OwnerID:    userID,
		Name:       *fields.Name,
		Mobile:     *fields.Mobile,
		AltMobile:  fields.AltMobile,
		Address:    *fields.Address,
		City:       *fields.City,
		PostalCode: fields.PostalCode,
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().LockByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperr.NotFound("User not found")
			}
			return err
		}
		if user.BrandID != nil {
			return apperr.Conflict("User already has a brand")
		}
		if err := tx.Brands().Create(ctx, &brand); err != nil {
			if errors.Is(err, repository.ErrBrandExists) {
				return apperr.Conflict("User already has a brand")
			}
			return err
		}
		if err := tx.Users().SetBrand(ctx, userID, brand.ID); err != nil {
			if errors.Is(err, repository.ErrBrandExists) {
				return apperr.Conflict("User already has a brand")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Brand{}, err
	}

	s.log.Info().Int64("user_id", userID).Int64("brand_id", brand.ID).Msg("brand created")
	return brand, nil
}

// TenantOf resolves the brand every client and transaction call is scoped to.
func (s *BrandService) TenantOf(ctx context.Context, userID int64) (int64, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, apperr.NotFound("User not found")
		}
		return 0, err
	}
	if user.BrandID == nil {
		return 0, apperr.Validation("User is not associated with any brand")
	}
	return *user.BrandID, nil
}

func (s *BrandService) Get(ctx context.Context, userID int64) (models.Brand, error) {
	brandID, err := s.TenantOf(ctx, userID)
	if err != nil {
		return models.Brand{}, err
	}
	brand, err := s.store.Brands().GetByID(ctx, brandID)
	if errors.Is(err, repository.ErrBrandNotFound) {
		return models.Brand{}, apperr.NotFound("Brand not found")
	}
	return brand, err
}

func (s *BrandService) Edit(ctx context.Context, userID int64, input BrandInput) (models.Brand, bool, error) {
	if input == (BrandInput{}) {
		return models.Brand{}, false, apperr.Validation("At least one field must be provided")
	}
	fields, err := brandFields(input)
	if err != nil {
		return models.Brand{}, false, err
	}
	current, err := s.Get(ctx, userID)
	if err != nil {
		return models.Brand{}, false, err
	}

	patch := models.BrandPatch{
		Name:       changedString(current.Name, fields.Name),
		Mobile:     changedString(current.Mobile, fields.Mobile),
		AltMobile:  changedOptional(current.AltMobile, fields.AltMobile),
		Address:    changedString(current.Address, fields.Address),
		City:       changedString(current.City, fields.City),
		PostalCode: changedOptional(current.PostalCode, fields.PostalCode),
	}

	var uploaded *StoredObject
	if input.Logo != nil {
		object, err := s.uploads.Upload(ctx, KindBrandLogo, input.Logo)
		if err != nil {
			return models.Brand{}, false, err
		}
		uploaded = &object
		patch.LogoKey = &object.Key
		patch.LogoURL = &object.URL
	}

	if patch.Empty() {
		return current, false, nil
	}

	updated, err := s.store.Brands().Update(ctx, current.ID, patch)
	if err != nil {
		if uploaded != nil {
			s.uploads.Discard(ctx, &uploaded.Key)
		}
		return models.Brand{}, false, err
	}
	if uploaded != nil {
		s.uploads.Discard(ctx, current.LogoKey)
	}
	return updated, true, nil
}
