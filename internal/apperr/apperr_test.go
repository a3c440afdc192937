package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromUnwrapsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("create client: %w", NotFound("Client not found"))

	got := From(wrapped)
	if got.Status != http.StatusNotFound || got.Message != "Client not found" {
		t.Fatalf("unexpected error %+v", got)
	}
}

func TestFromHidesUntypedError(t *testing.T) {
	cause := errors.New("connection refused")

	got := From(cause)
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d", got.Status)
	}
	if got.Message != "Internal server error" {
		t.Fatalf("message leaked: %q", got.Message)
	}
	if !errors.Is(got, cause) {
		t.Fatal("cause not preserved in chain")
	}
}
