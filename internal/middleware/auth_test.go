package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockify/internal/models"
	"stockify/internal/security"
	"stockify/internal/service"
)

type fakeParser struct{}

func (fakeParser) ParseAccessToken(token string) (*security.AccessClaims, error) {
	if token != "good-access" {
		return nil, security.ErrInvalidToken
	}
	return &security.AccessClaims{UserID: 7, ActiveStatus: "active", Role: "user"}, nil
}

type fakeSessions struct {
	active  map[string]bool
	touched int
}

func (f *fakeSessions) Authenticate(ctx context.Context, userID int64, refreshToken string) (models.Session, error) {
	if userID != 7 || !f.active[refreshToken] {
		return models.Session{}, service.ErrSessionTerminated
	}
	f.touched++
	return models.Session{ID: "session-1", UserID: userID, IsActive: true}, nil
}

func newAuthEngine(sessions *fakeSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Errors(zerolog.Nop()))
	engine.GET("/private", Auth(fakeParser{}, sessions, CookieSettings{}), func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		session, _ := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"uid": claims.UserID, "session": session.ID})
	})
	return engine
}

func doPrivate(engine *gin.Engine, cookies map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthStateMachine(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{"live-refresh": true}}
	engine := newAuthEngine(sessions)

	tests := []struct {
		name    string
		cookies map[string]string
		status  int
		message string
	}{
		{"no access token", nil, http.StatusUnauthorized, "Access token is required"},
		{"bad access token", map[string]string{AccessTokenCookie: "forged"}, http.StatusForbidden, "Invalid or expired token"},
		{"no refresh token", map[string]string{AccessTokenCookie: "good-access"}, http.StatusUnauthorized, "Refresh token is required"},
		{"revoked session", map[string]string{AccessTokenCookie: "good-access", RefreshTokenCookie: "dead-refresh"}, http.StatusUnauthorized, "Session terminated, please login again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPrivate(engine, tt.cookies)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Message != tt.message {
				t.Fatalf("body = %+v", body)
			}
		})
	}
	if sessions.touched != 0 {
		t.Fatalf("rejected requests touched %d sessions", sessions.touched)
	}
}

func TestAuthClearsCookiesOnTerminatedSession(t *testing.T) {
	engine := newAuthEngine(&fakeSessions{active: map[string]bool{}})

	rec := doPrivate(engine, map[string]string{AccessTokenCookie: "good-access", RefreshTokenCookie: "dead-refresh"})
	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 && c.Value == "" {
			cleared[c.Name] = true
		}
	}
	if !cleared[AccessTokenCookie] || !cleared[RefreshTokenCookie] {
		t.Fatalf("cookies not cleared: %v", rec.Header().Values("Set-Cookie"))
	}
}

func TestAuthAdmitsActiveSession(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{"live-refresh": true}}
	engine := newAuthEngine(sessions)

	rec := doPrivate(engine, map[string]string{AccessTokenCookie: "good-access", RefreshTokenCookie: "live-refresh"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"session":"session-1"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if sessions.touched != 1 {
		t.Fatalf("touched = %d", sessions.touched)
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Errors(zerolog.Nop()))
	sessions := &fakeSessions{active: map[string]bool{"live-refresh": true}}
	engine.GET("/admin", Auth(fakeParser{}, sessions, CookieSettings{}), RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good-access"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "live-refresh"})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}
