package service

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stockify/internal/models"
	"stockify/internal/repository/memstore"
	"stockify/internal/security"
)

type capturedOTP struct {
	to   string
	code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []capturedOTP
}

func (m *fakeMailer) SendOTP(ctx context.Context, to, name, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedOTP{to: to, code: code})
	return nil
}

func (m *fakeMailer) last(t *testing.T) capturedOTP {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no otp sent")
	}
	return m.sent[len(m.sent)-1]
}

type fakeUploader struct {
	uploads   int
	discarded []string
}

func (u *fakeUploader) Upload(ctx context.Context, kind string, file *multipart.FileHeader) (StoredObject, error) {
	u.uploads++
	key := kind + "/object.png"
	return StoredObject{Key: key, URL: "https://cdn.example/" + key}, nil
}

func (u *fakeUploader) Discard(ctx context.Context, key *string) {
	if key != nil {
		u.discarded = append(u.discarded, *key)
	}
}

var testHasher = security.NewPasswordHasher(security.MinBcryptCost)

// seedUser stores an account with the given password and status.
func seedUser(t *testing.T, store *memstore.Store, email, mobile, password string, status models.ActiveStatus) models.User {
	t.Helper()
	hash, err := testHasher.Hash(password)
	if err != nil {
		t.Fatal(err)
	}
	user := models.User{
		Name:         "test user",
		Email:        email,
		Mobile:       mobile,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		ActiveStatus: status,
	}
	if err := store.Users().Create(context.Background(), &user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedTenant creates a user with a brand and one client of that brand.
func seedTenant(t *testing.T, store *memstore.Store, email, mobile string) (brandID int64, client models.Client) {
	t.Helper()
	ctx := context.Background()
	user := seedUser(t, store, email, mobile, "password123", models.ActiveStatusActive)

	brands := NewBrandService(store, &fakeUploader{}, zerolog.Nop())
	name, city, address := "corner shop", "dhaka", "12 market road"
	brand, err := brands.Create(ctx, user.ID, BrandInput{Name: &name, Mobile: &mobile, Address: &address, City: &city})
	if err != nil {
		t.Fatalf("create brand: %v", err)
	}

	clients := NewClientService(store, &fakeUploader{}, zerolog.Nop())
	client, err = clients.Create(ctx, brand.ID, user.ID, CreateClientInput{Name: "rahim traders", Type: "customer"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return brand.ID, client
}

func newAuthService(store *memstore.Store, maxDevices int, mail *fakeMailer) *AuthService {
	log := zerolog.Nop()
	tokens := security.NewTokenIssuer(security.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	})
	sessions := NewSessionService(store, maxDevices, nil, log)
	otps := NewOTPService(store, testHasher, mail, 10*time.Minute, 5, log)
	return NewAuthService(store, tokens, testHasher, sessions, otps, "device-secret", nil, log)
}
