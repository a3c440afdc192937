package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stockify/internal/models"
	"stockify/internal/repository"
)

type clients struct{ s *Store }

func (r clients) Create(ctx context.Context, client *models.Client) error {
	return r.s.view(func(d *state) error {
		client.ID = d.id()
		client.CreatedAt = r.s.now()
		client.UpdatedAt = nil
		d.clients[client.ID] = *client
		return nil
	})
}

func (r clients) GetByID(ctx context.Context, brandID, id int64) (models.Client, error) {
	var client models.Client
	err := r.s.view(func(d *state) error {
		found, ok := d.clients[id]
		if !ok || found.BrandID != brandID {
			return repository.ErrClientNotFound
		}
		client = found
		return nil
	})
	return client, err
}

func (r clients) Update(ctx context.Context, brandID, id int64, patch models.ClientPatch) (models.Client, error) {
	var client models.Client
	err := r.s.view(func(d *state) error {
		found, ok := d.clients[id]
		if !ok || found.BrandID != brandID {
			return repository.ErrClientNotFound
		}
		if !patch.Empty() {
			if patch.Name != nil {
				found.Name = *patch.Name
			}
			if patch.Mobile != nil {
				found.Mobile = patch.Mobile
			}
			if patch.AvatarKey != nil {
				found.AvatarKey = patch.AvatarKey
			}
			if patch.AvatarURL != nil {
				found.AvatarURL = patch.AvatarURL
			}
			now := r.s.now()
			found.UpdatedAt = &now
			d.clients[id] = found
		}
		client = found
		return nil
	})
	return client, err
}

func (r clients) Touch(ctx context.Context, id int64) error {
	return r.s.view(func(d *state) error {
		if client, ok := d.clients[id]; ok {
			now := r.s.now()
			client.UpdatedAt = &now
			d.clients[id] = client
		}
		return nil
	})
}

func (r clients) Delete(ctx context.Context, brandID, id int64) error {
	return r.s.view(func(d *state) error {
		found, ok := d.clients[id]
		if !ok || found.BrandID != brandID {
			return repository.ErrClientNotFound
		}
		delete(d.clients, id)
		for txID, tx := range d.transactions {
			if tx.ClientID == id {
				delete(d.transactions, txID)
			}
		}
		return nil
	})
}

func matches(client models.Client, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(client.Name), needle) {
		return true
	}
	return client.Mobile != nil && strings.Contains(strings.ToLower(*client.Mobile), needle)
}

func sums(d *state, clientID int64) models.Balance {
	debit, credit := decimal.Zero, decimal.Zero
	for _, tx := range d.transactions {
		if tx.ClientID != clientID {
			continue
		}
		if tx.Type == models.TransactionDebit {
			debit = debit.Add(tx.Amount)
		} else {
			credit = credit.Add(tx.Amount)
		}
	}
	return models.NewBalance(debit, credit)
}

func (r clients) ListSummaries(ctx context.Context, brandID int64, search string) ([]models.ClientSummary, error) {
	out := []models.ClientSummary{}
	err := r.s.view(func(d *state) error {
		for _, client := range d.clients {
			if client.BrandID == brandID && matches(client, search) {
				out = append(out, models.ClientSummary{Client: client, Balance: sums(d, client.ID)})
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r clients) CountByType(ctx context.Context, brandID int64, search string) (models.ClientTypeCount, error) {
	var counts models.ClientTypeCount
	err := r.s.view(func(d *state) error {
		for _, client := range d.clients {
			if client.BrandID != brandID || !matches(client, search) {
				continue
			}
			switch client.Type {
			case models.ClientTypeCustomer:
				counts.Customers++
			case models.ClientTypeSupplier:
				counts.Suppliers++
			}
		}
		return nil
	})
	return counts, err
}
