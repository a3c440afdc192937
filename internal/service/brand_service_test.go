package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/repository/memstore"
)

func strPtr(s string) *string { return &s }

func TestCreateBrandTwiceLeavesFirstUntouched(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	brands := NewBrandService(store, &fakeUploader{}, zerolog.Nop())

	first, err := brands.Create(ctx, user.ID, BrandInput{
		Name:    strPtr("Corner Shop"),
		Mobile:  strPtr("01711111111"),
		Address: strPtr("12 Market Road"),
		City:    strPtr("Dhaka"),
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = brands.Create(ctx, user.ID, BrandInput{
		Name:    strPtr("Another Shop"),
		Mobile:  strPtr("01722222222"),
		Address: strPtr("99 Other Road"),
		City:    strPtr("Khulna"),
	})
	appErr := apperr.From(err)
	if appErr.Status != 400 || appErr.Message != "User already has a brand" {
		t.Fatalf("second create: %v", err)
	}

	stored, err := store.Brands().GetByID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Name != "corner shop" || stored.City != "dhaka" || !stored.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("existing brand modified: %+v", stored)
	}

	owner, _ := store.Users().GetByID(ctx, user.ID)
	if owner.BrandID == nil || *owner.BrandID != first.ID {
		t.Fatalf("user brand = %v", owner.BrandID)
	}
}

func TestCreateBrandValidation(t *testing.T) {
	store := memstore.New()
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	brands := NewBrandService(store, &fakeUploader{}, zerolog.Nop())

	_, err := brands.Create(context.Background(), user.ID, BrandInput{
		Name:      strPtr("Corner Shop"),
		Mobile:    strPtr("01711111111"),
		AltMobile: strPtr("12345"),
		Address:   strPtr("12 Market Road"),
		City:      strPtr("Dhaka"),
	})
	if msg := apperr.From(err).Message; msg != "Alternative mobile number must be 11 characters" {
		t.Fatalf("message = %q", msg)
	}

	if _, err := brands.TenantOf(context.Background(), user.ID); apperr.From(err).Message != "User is not associated with any brand" {
		t.Fatalf("TenantOf without brand: %v", err)
	}
}

func TestEditBrandDetectsNoChanges(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "owner@example.com", "01711111111", "password123", models.ActiveStatusActive)
	uploads := &fakeUploader{}
	brands := NewBrandService(store, uploads, zerolog.Nop())

	if _, err := brands.Create(ctx, user.ID, BrandInput{
		Name:    strPtr("Corner Shop"),
		Mobile:  strPtr("01711111111"),
		Address: strPtr("12 Market Road"),
		City:    strPtr("Dhaka"),
	}); err != nil {
		t.Fatal(err)
	}

	_, changed, err := brands.Edit(ctx, user.ID, BrandInput{Name: strPtr("  CORNER   shop ")})
	if err != nil || changed {
		t.Fatalf("same name: changed = %v, err = %v", changed, err)
	}

	updated, changed, err := brands.Edit(ctx, user.ID, BrandInput{City: strPtr("Sylhet")})
	if err != nil || !changed || updated.City != "sylhet" {
		t.Fatalf("city edit: %+v changed = %v err = %v", updated, changed, err)
	}
}
