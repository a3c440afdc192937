package memstore

import (
	"context"
	"sort"

	"stockify/internal/models"
	"stockify/internal/repository"
)

type transactions struct{ s *Store }

func (r transactions) Create(ctx context.Context, tx *models.Transaction) error {
	return r.s.view(func(d *state) error {
		if _, ok := d.clients[tx.ClientID]; !ok {
			return repository.ErrClientNotFound
		}
		tx.ID = d.id()
		tx.CreatedAt = r.s.now()
		d.transactions[tx.ID] = *tx
		return nil
	})
}

func (r transactions) GetByID(ctx context.Context, brandID, id int64) (models.Transaction, error) {
	var tx models.Transaction
	err := r.s.view(func(d *state) error {
		found, ok := d.transactions[id]
		if !ok || d.clients[found.ClientID].BrandID != brandID {
			return repository.ErrTransactionNotFound
		}
		tx = found
		return nil
	})
	return tx, err
}

func (r transactions) Delete(ctx context.Context, id int64) error {
	return r.s.view(func(d *state) error {
		if _, ok := d.transactions[id]; !ok {
			return repository.ErrTransactionNotFound
		}
		delete(d.transactions, id)
		return nil
	})
}

func (r transactions) DeleteByClient(ctx context.Context, clientID int64) (int64, error) {
	var n int64
	err := r.s.view(func(d *state) error {
		for id, tx := range d.transactions {
			if tx.ClientID == clientID {
				delete(d.transactions, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r transactions) Sums(ctx context.Context, clientID int64) (models.Balance, error) {
	var balance models.Balance
	err := r.s.view(func(d *state) error {
		balance = sums(d, clientID)
		return nil
	})
	return balance, err
}

func (r transactions) CountByClient(ctx context.Context, clientID int64) (int, error) {
	var n int
	err := r.s.view(func(d *state) error {
		for _, tx := range d.transactions {
			if tx.ClientID == clientID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r transactions) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]models.Transaction, error) {
	var all []models.Transaction
	err := r.s.view(func(d *state) error {
		for _, tx := range d.transactions {
			if tx.ClientID == clientID {
				all = append(all, tx)
			}
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedDate.Equal(all[j].CreatedDate) {
			return all[i].CreatedDate.After(all[j].CreatedDate)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, limit, offset), err
}
