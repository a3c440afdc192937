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

type ClientService struct {
	store   repository.Store
	uploads ImageUploader
	log     zerolog.Logger
}

func NewClientService(store repository.Store, uploads ImageUploader, log zerolog.Logger) *ClientService {
	return &ClientService{store: store, uploads: uploads, log: log}
}

type CreateClientInput struct {
	Name   string
	Type   string
	Mobile string
}

func (s *ClientService) Create(ctx context.Context, brandID, userID int64, input CreateClientInput) (models.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return models.Client{}, apperr.Validation("Client name is required")
	}
	if input.Type == "" {
		return models.Client{}, apperr.Validation("Type is required")
	}
	name, err := validate.String(input.Name, "Name", 2, 30)
	if err != nil {
		return models.Client{}, err
	}
	clientType := models.ClientType(strings.ToLower(strings.TrimSpace(input.Type)))
	if !clientType.Valid() {
		return models.Client{}, apperr.Validation("Type must be 'customer' or 'supplier'")
	}

	client := models.Client{
		BrandID:   brandID,
		CreatedBy: userID,
		Name:      name,
		Type:      clientType,
	}
	if input.Mobile != "" {
		mobile, err := validate.Mobile(input.Mobile)
		if err != nil {
			return models.Client{}, err
		}
		client.Mobile = &mobile
	}

	if err := s.store.Clients().Create(ctx, &client); err != nil {
		return models.Client{}, err
	}
	s.log.Debug().Int64("brand_id", brandID).Int64("client_id", client.ID).Msg("client created")
	return client, nil
}

type EditClientInput struct {
	Name   *string
	Mobile *string
	Avatar *multipart.FileHeader
}

func (s *ClientService) Edit(ctx context.Context, brandID, clientID int64, input EditClientInput) (models.Client, bool, error) {
	if input.Name == nil && input.Mobile == nil && input.Avatar == nil {
		return models.Client{}, false, apperr.Validation("At least one field (name, mobile, or avatar) must be provided")
	}

	var patch models.ClientPatch
	if input.Name != nil {
		name, err := validate.String(*input.Name, "Name", 2, 30)
		if err != nil {
			return models.Client{}, false, err
		}
		patch.Name = &name
	}
	if input.Mobile != nil {
		mobile, err := validate.Mobile(*input.Mobile)
		if err != nil {
			return models.Client{}, false, err
		}
		patch.Mobile = &mobile
	}

	current, err := s.store.Clients().GetByID(ctx, brandID, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return models.Client{}, false, apperr.NotFound("Client not found")
		}
		return models.Client{}, false, err
	}
	patch.Name = changedString(current.Name, patch.Name)
	patch.Mobile = changedOptional(current.Mobile, patch.Mobile)

	var uploaded *StoredObject
	if input.Avatar != nil {
		object, err := s.uploads.Upload(ctx, KindClientAvatar, input.Avatar)
		if err != nil {
			return models.Client{}, false, err
		}
		uploaded = &object
		patch.AvatarKey = &object.Key
		patch.AvatarURL = &object.URL
	}

	if patch.Empty() {
		return current, false, nil
	}

	updated, err := s.store.Clients().Update(ctx, brandID, clientID, patch)
	if err != nil {
		if uploaded != nil {
			s.uploads.Discard(ctx, &uploaded.Key)
		}
		if errors.Is(err, repository.ErrClientNotFound) {
			return models.Client{}, false, apperr.NotFound("Client not found")
		}
		return models.Client{}, false, err
	}
	if uploaded != nil {
		s.uploads.Discard(ctx, current.AvatarKey)
	}
	return updated, true, nil
}

// Delete removes the client and all of its transactions atomically.
func (s *ClientService) Delete(ctx context.Context, brandID, clientID int64) error {
	var avatarKey *string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		client, err := tx.Clients().GetByID(ctx, brandID, clientID)
		if err != nil {
			return err
		}
		avatarKey = client.AvatarKey
		if _, err := tx.Transactions().DeleteByClient(ctx, clientID); err != nil {
			return err
		}
		return tx.Clients().Delete(ctx, brandID, clientID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return apperr.NotFound("Client not found")
		}
		return err
	}
	s.uploads.Discard(ctx, avatarKey)
	return nil
}
