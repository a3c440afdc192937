package device

import (
	"strings"
	"testing"
)

const (
	chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
)

func TestParseDesktop(t *testing.T) {
	info := Parse(chromeWindows)
	if info.Browser != "Chrome" {
		t.Fatalf("browser = %q", info.Browser)
	}
	if info.Type != TypeDesktop {
		t.Fatalf("type = %q", info.Type)
	}
	if !strings.HasPrefix(info.Name, "Chrome on ") {
		t.Fatalf("name = %q", info.Name)
	}
}

func TestParseMobile(t *testing.T) {
	info := Parse(safariIPhone)
	if info.Type != TypeMobile {
		t.Fatalf("type = %q", info.Type)
	}
}

func TestParseEmpty(t *testing.T) {
	info := Parse("")
	if info.Browser != unknown || info.OS != unknown {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Name != "Unknown on Unknown" {
		t.Fatalf("name = %q", info.Name)
	}
}

func TestNormalizeIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.7":        "203.0.113.7",
		" 203.0.113.7 ":      "203.0.113.7",
		"::ffff:203.0.113.7": "203.0.113.7",
		"203.0.113.7:51234":  "203.0.113.7",
		"[2001:db8::1]:443":  "2001:db8::1",
		"fe80::1%eth0":       "fe80::1",
		"not-an-ip":          "not-an-ip",
	}
	for in, want := range tests {
		if got := NormalizeIP(in); got != want {
			t.Errorf("NormalizeIP(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFingerprintStable(t *testing.T) {
	info := Parse(chromeWindows)
	a := Fingerprint("secret", info, "203.0.113.7")
	b := Fingerprint("secret", Parse(chromeWindows), "::ffff:203.0.113.7")
	if a != b {
		t.Fatalf("fingerprint changed for the same device: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %d chars", len(a))
	}
	if a == Fingerprint("secret", info, "203.0.113.8") {
		t.Fatal("different address produced same fingerprint")
	}
	if a == Fingerprint("other", info, "203.0.113.7") {
		t.Fatal("different secret produced same fingerprint")
	}
}
