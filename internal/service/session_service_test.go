package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/repository/memstore"
)

const testUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func loginFrom(t *testing.T, auth *AuthService, ip string) AuthResult {
	t.Helper()
	result, err := auth.Login(context.Background(), LoginInput{
		EmailOrMobile: "owner@example.com",
		Password:      "password123",
		UserAgent:     testUA,
		IPAddress:     ip,
	})
	if err != nil {
		t.Fatalf("login from %s: %v", ip, err)
	}
	return result
}

func activeIPs(t *testing.T, store *memstore.Store, userID int64) []string {
	t.Helper()
	active, err := store.Sessions().ListActiveByUser(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	ips := make([]string, 0, len(active))
	for _, s := range active {
		ips = append(ips, s.IPAddress)
	}
	sort.Strings(ips)
	return ips
}

func TestDeviceLimitKeepsMostRecentSessions(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	auth := newAuthService(store, 3, &fakeMailer{})

	for i := 1; i <= 5; i++ {
		loginFrom(t, auth, fmt.Sprintf("10.0.0.%d", i))
	}

	got := activeIPs(t, store, user.ID)
	want := []string{"10.0.0.3", "10.0.0.4", "10.0.0.5"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("active sessions = %v, want %v", got, want)
	}

	stored, _ := store.Users().GetByID(context.Background(), user.ID)
	if stored.DeviceCount != 3 {
		t.Fatalf("device count = %d", stored.DeviceCount)
	}

	for _, s := range store.SessionsOf(user.ID) {
		if !s.IsActive && s.RefreshTokenHash != nil {
			t.Fatalf("revoked session %s still holds a token hash", s.ID)
		}
	}
}

func TestLoginFromKnownDeviceDoesNotEvict(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	auth := newAuthService(store, 2, &fakeMailer{})

	first := loginFrom(t, auth, "10.0.0.1")
	loginFrom(t, auth, "10.0.0.2")
	again := loginFrom(t, auth, "10.0.0.1")

	got := activeIPs(t, store, user.ID)
	if fmt.Sprint(got) != fmt.Sprint([]string{"10.0.0.1", "10.0.0.2"}) {
		t.Fatalf("active sessions = %v", got)
	}

	// The old refresh token of the re-used device no longer maps to a session.
	sessions := NewSessionService(store, 2, nil, zerolog.Nop())
	if _, err := sessions.Authenticate(context.Background(), user.ID, first.RefreshToken); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("stale refresh token accepted: %v", err)
	}
	if _, err := sessions.Authenticate(context.Background(), user.ID, again.RefreshToken); err != nil {
		t.Fatalf("fresh refresh token rejected: %v", err)
	}
}

func TestEnforceDeviceLimitEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	sessions := NewSessionService(store, 2, nil, zerolog.Nop())

	for _, id := range []string{"s1", "s2", "s3"} {
		s := models.Session{ID: id, UserID: user.ID, DeviceID: "dev-" + id, RefreshTokenHash: []byte(id)}
		if err := store.Sessions().Upsert(ctx, &s); err != nil {
			t.Fatal(err)
		}
	}
	// s1 becomes the most recently active.
	if err := store.Sessions().Touch(ctx, "s1"); err != nil {
		t.Fatal(err)
	}

	evicted, err := sessions.EnforceDeviceLimit(ctx, store, user.ID, "dev-new")
	if err != nil {
		t.Fatal(err)
	}
	if len(evicted) != 2 || evicted[0].ID != "s2" || evicted[1].ID != "s3" {
		t.Fatalf("evicted = %+v", evicted)
	}
	count, err := sessions.RecordDeviceCount(ctx, store, user.ID)
	if err != nil || count != 1 {
		t.Fatalf("count = %d, err = %v", count, err)
	}
}

func TestRevokeDevice(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	auth := newAuthService(store, 3, &fakeMailer{})
	sessions := NewSessionService(store, 3, nil, zerolog.Nop())

	a := loginFrom(t, auth, "10.0.0.1")
	b := loginFrom(t, auth, "10.0.0.2")

	err := sessions.RevokeDevice(context.Background(), user.ID, a.Session.ID, a.Session.ID)
	if appErr := apperr.From(err); appErr.Status != 400 {
		t.Fatalf("revoking the current session: %v", err)
	}

	if err := sessions.RevokeDevice(context.Background(), user.ID, b.Session.ID, a.Session.ID); err != nil {
		t.Fatalf("RevokeDevice: %v", err)
	}
	if _, err := sessions.Authenticate(context.Background(), user.ID, b.RefreshToken); !errors.Is(err, ErrSessionTerminated) {
		t.Fatalf("revoked session still authenticates: %v", err)
	}

	err = sessions.RevokeDevice(context.Background(), user.ID+100, a.Session.ID, "other")
	if appErr := apperr.From(err); appErr.Status != 404 {
		t.Fatalf("revoking a foreign session: %v", err)
	}
}
