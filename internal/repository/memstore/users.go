package memstore

import (
	"context"
	"sort"

	"stockify/internal/models"
	"stockify/internal/repository"
)

type users struct{ s *Store }

func (r users) Create(ctx context.Context, user *models.User) error {
	return r.s.view(func(d *state) error {
		for _, existing := range d.users {
			if existing.Email == user.Email {
				return repository.ErrDuplicateEmail
			}
			if existing.Mobile == user.Mobile {
				return repository.ErrDuplicateMobile
			}
		}
		now := r.s.now()
		user.ID = d.id()
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = *user
		return nil
	})
}

func (r users) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.s.view(func(d *state) error {
		found, ok := d.users[id]
		if !ok {
			return repository.ErrUserNotFound
		}
		user = found
		return nil
	})
	return user, err
}

func (r users) LockByID(ctx context.Context, id int64) (models.User, error) {
	return r.GetByID(ctx, id)
}

func (r users) FindByEmailOrMobile(ctx context.Context, value string) (models.User, error) {
	var user models.User
	err := r.s.view(func(d *state) error {
		var best *models.User
		for _, candidate := range d.users {
			if candidate.Email == value || candidate.Mobile == value {
				if best == nil || candidate.ID < best.ID {
					c := candidate
					best = &c
				}
			}
		}
		if best == nil {
			return repository.ErrUserNotFound
		}
		user = *best
		return nil
	})
	return user, err
}

func (r users) ConflictingField(ctx context.Context, email, mobile string, excludeID int64) (string, error) {
	var field string
	err := r.s.view(func(d *state) error {
		ids := make([]int64, 0, len(d.users))
		for id := range d.users {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			user := d.users[id]
			if id == excludeID {
				continue
			}
			if user.Email == email {
				field = "email"
				return nil
			}
			if user.Mobile == mobile {
				field = "mobile"
				return nil
			}
		}
		return nil
	})
	return field, err
}

func (r users) update(id int64, fn func(u *models.User) error) (models.User, error) {
	var user models.User
	err := r.s.view(func(d *state) error {
		found, ok := d.users[id]
		if !ok {
			return repository.ErrUserNotFound
		}
		if err := fn(&found); err != nil {
			return err
		}
		d.users[id] = found
		user = found
		return nil
	})
	return user, err
}

func (r users) Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	if patch.Mobile != nil {
		var taken bool
		_ = r.s.view(func(d *state) error {
			for _, other := range d.users {
				if other.ID != id && other.Mobile == *patch.Mobile {
					taken = true
				}
			}
			return nil
		})
		if taken {
			return models.User{}, repository.ErrDuplicateMobile
		}
	}
	return r.update(id, func(u *models.User) error {
		if patch.Empty() {
			return nil
		}
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Mobile != nil {
			u.Mobile = *patch.Mobile
		}
		if patch.AvatarKey != nil {
			u.AvatarKey = patch.AvatarKey
		}
		if patch.AvatarURL != nil {
			u.AvatarURL = patch.AvatarURL
		}
		u.UpdatedAt = r.s.now()
		return nil
	})
}

func (r users) SetActiveStatus(ctx context.Context, id int64, status models.ActiveStatus) error {
	_, err := r.update(id, func(u *models.User) error {
		u.ActiveStatus = status
		u.UpdatedAt = r.s.now()
		return nil
	})
	return err
}

func (r users) SetBanned(ctx context.Context, id int64, banned bool) error {
	_, err := r.update(id, func(u *models.User) error {
		u.Banned = banned
		u.UpdatedAt = r.s.now()
		return nil
	})
	return err
}

func (r users) SetBrand(ctx context.Context, id int64, brandID int64) error {
	_, err := r.update(id, func(u *models.User) error {
		u.BrandID = &brandID
		u.UpdatedAt = r.s.now()
		return nil
	})
	return err
}

func (r users) SetDeviceCount(ctx context.Context, id int64, count int) error {
	_, err := r.update(id, func(u *models.User) error {
		u.DeviceCount = count
		return nil
	})
	return err
}

func (r users) MarkLogin(ctx context.Context, id int64) error {
	_, err := r.update(id, func(u *models.User) error {
		now := r.s.now()
		u.LastLoginAt = &now
		return nil
	})
	return err
}

func (r users) List(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	var out []models.User
	var total int
	err := r.s.view(func(d *state) error {
		all := make([]models.User, 0, len(d.users))
		for _, u := range d.users {
			all = append(all, u)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
		total = len(all)
		out = page(all, limit, offset)
		return nil
	})
	return out, total, err
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
