package validate

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"stockify/internal/apperr"
)

func wantValidation(t *testing.T, err error, message string) {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %v", err)
	}
	if appErr.Status != http.StatusBadRequest {
		t.Fatalf("status = %d", appErr.Status)
	}
	if message != "" && appErr.Message != message {
		t.Fatalf("message = %q, want %q", appErr.Message, message)
	}
}

func TestString(t *testing.T) {
	got, err := String("  Rahim   STORE ", "Name", 3, 30)
	if err != nil {
		t.Fatal(err)
	}
	if got != "rahim store" {
		t.Fatalf("got %q", got)
	}

	_, err = String(" a ", "Name", 2, 30)
	wantValidation(t, err, "Name must be at least 2 characters long")

	_, err = String(strings.Repeat("x", 31), "Name", 3, 30)
	wantValidation(t, err, "Name can't be more than 30 characters long")
}

func TestMobile(t *testing.T) {
	if _, err := Mobile("01712345678"); err != nil {
		t.Fatalf("valid mobile rejected: %v", err)
	}
	_, err := Mobile("0171234567")
	wantValidation(t, err, "Mobile number must be 11 characters")
	_, err = Mobile("0171234567a")
	wantValidation(t, err, "Invalid mobile number")
}

func TestPasswordStripsWhitespace(t *testing.T) {
	got, err := Password(" secret pass 1 ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "secretpass1" {
		t.Fatalf("got %q", got)
	}
	_, err = Password("short  1")
	wantValidation(t, err, "")
}

func TestAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "100", want: "100", ok: true},
		{raw: "40.5", want: "40.5", ok: true},
		{raw: "0.01", want: "0.01", ok: true},
		{raw: "12.340", want: "12.34", ok: true},
		{raw: "0", ok: false},
		{raw: "-5", ok: false},
		{raw: "1.001", ok: false},
		{raw: "abc", ok: false},
		{raw: "1000000000000", ok: false},
	}

	for _, tt := range tests {
		got, err := Amount(tt.raw)
		if !tt.ok {
			wantValidation(t, err, "Invalid amount")
			continue
		}
		if err != nil {
			t.Fatalf("Amount(%q): %v", tt.raw, err)
		}
		if got.String() != tt.want {
			t.Fatalf("Amount(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestDescriptionStripsMarkup(t *testing.T) {
	got, err := Description("<b>Rent</b> for <i>march</i> & april")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != "Rent for march & april" {
		t.Fatalf("got %v", got)
	}

	for _, encoded := range []string{
		"&lt;script&gt;alert(1)&lt;/script&gt; rent",
		"&amp;lt;b&amp;gt;rent&amp;lt;/b&amp;gt;",
		"<a href=\"x\">&lt;img src=x onerror=alert(1)&gt;</a>rent",
	} {
		got, err := Description(encoded)
		if err != nil {
			t.Fatalf("%q: %v", encoded, err)
		}
		if got == nil || strings.ContainsAny(*got, "<>") || !strings.Contains(*got, "rent") {
			t.Fatalf("%q: markup survived: %v", encoded, got)
		}
	}

	plain, err := Description("5 < 10 & 7 > 3")
	if err != nil || plain == nil || *plain != "5 < 10 & 7 > 3" {
		t.Fatalf("plain comparison text changed: %v %v", plain, err)
	}

	empty, err := Description("  <br/> ")
	if err != nil || empty != nil {
		t.Fatalf("expected nil description, got %v %v", empty, err)
	}

	_, err = Description(strings.Repeat("a", DescriptionMaxLength+1))
	wantValidation(t, err, "Description can't be more than 200 characters long")
}

func TestSearchTerm(t *testing.T) {
	if got := SearchTerm(" karim%' OR 1=1 -- "); got != "karim OR 11 --" {
		t.Fatalf("got %q", got)
	}
	if got := SearchTerm("+8801-a.b@c"); got != "+8801-a.b@c" {
		t.Fatalf("got %q", got)
	}
}

func TestDate(t *testing.T) {
	got, err := Date("2024-01-02", "Created date")
	if err != nil {
		t.Fatal(err)
	}
	if got.Format(DateLayout) != "2024-01-02" {
		t.Fatalf("got %s", got)
	}
	_, err = Date("", "Created date")
	wantValidation(t, err, "Created date is required")
	_, err = Date("02/01/2024", "Created date")
	wantValidation(t, err, "Invalid created date")
}

func TestID(t *testing.T) {
	if id, err := ID("42", "client"); err != nil || id != 42 {
		t.Fatalf("got %d %v", id, err)
	}
	_, err := ID("-1", "client")
	wantValidation(t, err, "Invalid client ID")
}
