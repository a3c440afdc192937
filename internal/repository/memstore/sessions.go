package memstore

import (
	"bytes"
	"context"
	"sort"

	"stockify/internal/models"
	"stockify/internal/repository"
)

type sessions struct{ s *Store }

func (r sessions) Upsert(ctx context.Context, session *models.Session) error {
	return r.s.view(func(d *state) error {
		now := r.s.now()
		session.IsActive = true
		session.LastActiveAt = now
		session.CreatedAt = now
		for id, existing := range d.sessions {
			if existing.UserID == session.UserID && existing.DeviceID == session.DeviceID {
				session.CreatedAt = existing.CreatedAt
				delete(d.sessions, id)
				break
			}
		}
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r sessions) GetByID(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	err := r.s.view(func(d *state) error {
		found, ok := d.sessions[id]
		if !ok {
			return repository.ErrSessionNotFound
		}
		session = found
		return nil
	})
	return session, err
}

func (r sessions) FindActiveByRefreshHash(ctx context.Context, hash []byte, userID int64) (models.Session, error) {
	var session models.Session
	err := r.s.view(func(d *state) error {
		for _, candidate := range d.sessions {
			if candidate.IsActive && candidate.UserID == userID && bytes.Equal(candidate.RefreshTokenHash, hash) {
				session = candidate
				return nil
			}
		}
		return repository.ErrSessionNotFound
	})
	return session, err
}

func (r sessions) ListActiveByUser(ctx context.Context, userID int64) ([]models.Session, error) {
	var out []models.Session
	err := r.s.view(func(d *state) error {
		for _, session := range d.sessions {
			if session.IsActive && session.UserID == userID {
				out = append(out, session)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActiveAt.Equal(out[j].LastActiveAt) {
			return out[i].LastActiveAt.After(out[j].LastActiveAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r sessions) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	active, err := r.ListActiveByUser(ctx, userID)
	return len(active), err
}

func (r sessions) Touch(ctx context.Context, id string) error {
	return r.s.view(func(d *state) error {
		session, ok := d.sessions[id]
		if ok && session.IsActive {
			session.LastActiveAt = r.s.now()
			d.sessions[id] = session
		}
		return nil
	})
}

func revoke(d *state, id string) {
	session := d.sessions[id]
	session.IsActive = false
	session.RefreshTokenHash = nil
	d.sessions[id] = session
}

func (r sessions) Revoke(ctx context.Context, id string) error {
	return r.s.view(func(d *state) error {
		session, ok := d.sessions[id]
		if !ok || !session.IsActive {
			return repository.ErrSessionNotFound
		}
		revoke(d, id)
		return nil
	})
}

func (r sessions) RevokeByRefreshHash(ctx context.Context, hash []byte) (models.Session, error) {
	var revoked models.Session
	err := r.s.view(func(d *state) error {
		for id, session := range d.sessions {
			if session.IsActive && bytes.Equal(session.RefreshTokenHash, hash) {
				revoke(d, id)
				revoked = d.sessions[id]
				return nil
			}
		}
		return repository.ErrSessionNotFound
	})
	return revoked, err
}

func (r sessions) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.s.view(func(d *state) error {
		for id, session := range d.sessions {
			if session.IsActive && session.UserID == userID {
				revoke(d, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
