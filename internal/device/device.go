// Package device derives a stable device identity from the request's
// User-Agent and client IP.
package device

import (
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"

	"github.com/mssola/useragent"

	"stockify/internal/security"
)

const (
	maxUserAgentLength = 512
	unknown            = "Unknown"

	TypeDesktop = "desktop"
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeBot     = "bot"
)

type Info struct {
	Name    string
	Type    string
	Browser string
	OS      string
}

// Parse never fails; unrecognized agents map to "Unknown" on a desktop.
func Parse(userAgent string) Info {
	ua := useragent.New(truncate(userAgent, maxUserAgentLength))

	browser, _ := ua.Browser()
	if browser == "" {
		browser = unknown
	}
	os := ua.OSInfo().Name
	if os == "" {
		os = unknown
	}

	info := Info{
		Type:    TypeDesktop,
		Browser: browser,
		OS:      os,
	}
	platform := ua.Platform()
	switch {
	case ua.Bot():
		info.Type = TypeBot
	case platform == "iPad":
		info.Type = TypeTablet
	case ua.Mobile():
		info.Type = TypeMobile
	}

	info.Name = fmt.Sprintf("%s on %s", browser, os)
	if (info.Type == TypeMobile || info.Type == TypeTablet) && platform != "" && platform != os {
		info.Name = fmt.Sprintf("%s (%s)", platform, info.Name)
	}
	return info
}

// NormalizeIP strips ports, zones and IPv4-in-IPv6 mapping so the same
// client always yields the same address string.
func NormalizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.Unmap().WithZone("").String()
	}
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().Unmap().WithZone("").String()
	}
	return truncate(raw, 64)
}

// Fingerprint is deterministic for the same browser family, OS family,
// device type and client address.
func Fingerprint(secret string, info Info, ip string) string {
	return security.Digest(secret, info.Browser, info.OS, info.Type, NormalizeIP(ip))
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
