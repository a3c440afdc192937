package service

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/repository/memstore"
)

func TestBanRevokesSessions(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	admin := seedUser(t, store, "admin@example.com", "01700000000", "password123", models.ActiveStatusActive)
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	auth := newAuthService(store, 3, &fakeMailer{})

	loginFrom(t, auth, "10.0.0.1")
	loginFrom(t, auth, "10.0.0.2")

	sessions := NewSessionService(store, 3, nil, zerolog.Nop())
	users := NewUserService(store, sessions, &fakeUploader{}, zerolog.Nop())

	banned, err := users.SetBanned(ctx, admin.ID, user.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !banned.Banned {
		t.Fatalf("user not banned: %+v", banned)
	}
	if ips := activeIPs(t, store, user.ID); len(ips) != 0 {
		t.Fatalf("sessions survived ban: %v", ips)
	}

	_, err = auth.Login(ctx, LoginInput{EmailOrMobile: "owner@example.com", Password: "password123", UserAgent: testUA, IPAddress: "10.0.0.3"})
	if apperr.From(err).Status != 403 {
		t.Fatalf("login after ban: %v", err)
	}

	if _, err := users.SetBanned(ctx, admin.ID, user.ID, false); err != nil {
		t.Fatal(err)
	}
	loginFrom(t, auth, "10.0.0.3")
}

func TestBanRules(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	admin := seedUser(t, store, "admin@example.com", "01700000000", "password123", models.ActiveStatusActive)
	users := NewUserService(store, NewSessionService(store, 3, nil, zerolog.Nop()), &fakeUploader{}, zerolog.Nop())

	if _, err := users.SetBanned(ctx, admin.ID, admin.ID, true); apperr.From(err).Status != 400 {
		t.Fatalf("self ban: %v", err)
	}
	if _, err := users.SetBanned(ctx, admin.ID, admin.ID+100, true); apperr.From(err).Status != 404 {
		t.Fatalf("missing user: %v", err)
	}
}

func TestListUsersPaginates(t *testing.T) {
	store := memstore.New()
	seedUser(t, store, "a@example.com", "01700000001", "password123", models.ActiveStatusActive)
	seedUser(t, store, "b@example.com", "01700000002", "password123", models.ActiveStatusActive)
	seedUser(t, store, "c@example.com", "01700000003", "password123", models.ActiveStatusActive)
	users := NewUserService(store, NewSessionService(store, 3, nil, zerolog.Nop()), &fakeUploader{}, zerolog.Nop())

	page, err := users.List(context.Background(), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Users) != 1 || page.Pagination.Total != 3 || page.Pagination.TotalPages != 2 {
		t.Fatalf("page = %+v", page)
	}
}

func TestListUsersHugePage(t *testing.T) {
	store := memstore.New()
	seedUser(t, store, "a@example.com", "01700000001", "password123", models.ActiveStatusActive)
	users := NewUserService(store, NewSessionService(store, 3, nil, zerolog.Nop()), &fakeUploader{}, zerolog.Nop())

	page, err := users.List(context.Background(), math.MaxInt, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Users) != 0 || page.Pagination.Total != 1 {
		t.Fatalf("page = %+v", page)
	}
}
