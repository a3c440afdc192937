// Package memstore is an in-memory repository.Store used by tests. WithTx
// serializes callers and rolls every table back when the callback fails.
// Rollback restores a snapshot taken when the transaction began, so writes
// made outside WithTx while a transaction is open are discarded with it.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"stockify/internal/models"
	"stockify/internal/repository"
)

type state struct {
	users        map[int64]models.User
	sessions     map[string]models.Session
	brands       map[int64]models.Brand
	clients      map[int64]models.Client
	transactions map[int64]models.Transaction
	otps         map[int64]models.OTP
	nextID       int64
}

func (s *state) clone() *state {
	return &state{
		users:        maps.Clone(s.users),
		sessions:     maps.Clone(s.sessions),
		brands:       maps.Clone(s.brands),
		clients:      maps.Clone(s.clients),
		transactions: maps.Clone(s.transactions),
		otps:         maps.Clone(s.otps),
		nextID:       s.nextID,
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	data **state
	now  func() time.Time
	inTx bool
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store whose clock advances one millisecond per
// reading, so ordering by timestamps is deterministic.
func New() *Store {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int64
	var tickMu sync.Mutex
	return NewWithClock(func() time.Time {
		tickMu.Lock()
		defer tickMu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	})
}

func NewWithClock(now func() time.Time) *Store {
	data := &state{
		users:        map[int64]models.User{},
		sessions:     map[string]models.Session{},
		brands:       map[int64]models.Brand{},
		clients:      map[int64]models.Client{},
		transactions: map[int64]models.Transaction{},
		otps:         map[int64]models.OTP{},
	}
	return &Store{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, data: &data, now: now}
}

func (s *Store) Users() repository.UserRepository               { return users{s} }
func (s *Store) Sessions() repository.SessionRepository         { return sessions{s} }
func (s *Store) Brands() repository.BrandRepository             { return brands{s} }
func (s *Store) Clients() repository.ClientRepository           { return clients{s} }
func (s *Store) Transactions() repository.TransactionRepository { return transactions{s} }
func (s *Store) OTPs() repository.OTPRepository                 { return otps{s} }

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := (*s.data).clone()
	s.mu.Unlock()

	tx := *s
	tx.inTx = true
	if err := fn(&tx); err != nil {
		s.mu.Lock()
		*s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// view runs fn with the lock held.
func (s *Store) view(fn func(d *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(*s.data)
}

// SessionsOf returns every session row of a user, active or not.
func (s *Store) SessionsOf(userID int64) []models.Session {
	var out []models.Session
	_ = s.view(func(d *state) error {
		for _, session := range d.sessions {
			if session.UserID == userID {
				out = append(out, session)
			}
		}
		return nil
	})
	return out
}
