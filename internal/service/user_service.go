package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/repository"
	"stockify/internal/validate"
)

type UserService struct {
	store    repository.Store
	sessions *SessionService
	uploads  ImageUploader
	log      zerolog.Logger
}

func NewUserService(store repository.Store, sessions *SessionService, uploads ImageUploader, log zerolog.Logger) *UserService {
	return &UserService{
		store:    store,
		sessions: sessions,
		uploads:  uploads,
		log:      log,
	}
}

func (s *UserService) Get(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, apperr.NotFound("User not found")
	}
	return user, err
}

type EditUserInput struct {
	Name   *string
	Mobile *string
	Avatar *multipart.FileHeader
}

// Edit applies the changed fields only. The returned flag is false when
// nothing differed from the stored profile.
func (s *UserService) Edit(ctx context.Context, userID int64, input EditUserInput) (models.User, bool, error) {
	if input.Name == nil && input.Mobile == nil && input.Avatar == nil {
		return models.User{}, false, apperr.Validation("At least one field (name, mobile, or avatar) must be provided")
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return models.User{}, false, err
	}

	var patch models.UserPatch
	if input.Name != nil {
		name, err := validate.String(*input.Name, "Name", 3, 30)
		if err != nil {
			return models.User{}, false, err
		}
		patch.Name = changedString(current.Name, &name)
	}
	if input.Mobile != nil {
		mobile, err := validate.Mobile(*input.Mobile)
		if err != nil {
			return models.User{}, false, err
		}
		patch.Mobile = changedString(current.Mobile, &mobile)
	}
	if patch.Mobile != nil {
		field, err := s.store.Users().ConflictingField(ctx, "", *patch.Mobile, userID)
		if err != nil {
			return models.User{}, false, err
		}
		if field != "" {
			return models.User{}, false, apperr.Conflict("User with this mobile already exists")
		}
	}

	var uploaded *StoredObject
	if input.Avatar != nil {
		object, err := s.uploads.Upload(ctx, KindUserAvatar, input.Avatar)
		if err != nil {
			return models.User{}, false, err
		}
		uploaded = &object
		patch.AvatarKey = &object.Key
		patch.AvatarURL = &object.URL
	}

	if patch.Empty() {
		return current, false, nil
	}

	updated, err := s.store.Users().Update(ctx, userID, patch)
	if err != nil {
		if uploaded != nil {
			s.uploads.Discard(ctx, &uploaded.Key)
		}
		if errors.Is(err, repository.ErrDuplicateMobile) {
			return models.User{}, false, apperr.Conflict("User with this mobile already exists")
		}
		return models.User{}, false, err
	}
	if uploaded != nil {
		s.uploads.Discard(ctx, current.AvatarKey)
	}
	return updated, true, nil
}

type UserPage struct {
	Users      []models.User
	Pagination Pagination
}

func (s *UserService) List(ctx context.Context, page, limit int) (UserPage, error) {
	page, limit = normalizePage(page, limit)
	users, total, err := s.store.Users().List(ctx, limit, (page-1)*limit)
	if err != nil {
		return UserPage{}, err
	}
	return UserPage{Users: users, Pagination: newPagination(page, limit, total)}, nil
}

// SetBanned flags or unflags an account. Banning revokes every session of
// the user in the same transaction.
func (s *UserService) SetBanned(ctx context.Context, actorID, userID int64, banned bool) (models.User, error) {
	if actorID == userID {
		return models.User{}, apperr.Validation("You cannot ban your own account")
	}

	var user models.User
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().LockByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperr.NotFound("User not found")
			}
			return err
		}
		if err := tx.Users().SetBanned(ctx, userID, banned); err != nil {
			return err
		}
		if banned {
			if _, err := s.sessions.RevokeAll(ctx, tx, userID); err != nil {
				return err
			}
		}
		var err error
		user, err = tx.Users().GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info().Int64("actor_id", actorID).Int64("user_id", userID).Bool("banned", banned).Msg("user ban updated")
	return user, nil
}
