package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockify/internal/config"
	"stockify/internal/handlers"
	"stockify/internal/observability/metrics"
	"stockify/internal/repository/memstore"
	"stockify/internal/server"
	"stockify/internal/service"
)

type outbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (o *outbox) SendOTP(ctx context.Context, to, name, code string, ttl time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[to] = code
	return nil
}

func (o *outbox) code(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[to]
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		HTTP:        config.HTTPConfig{RequestTimeout: 5 * time.Second},
		Storage:     config.StorageConfig{MaxUploadBytes: 2 << 20},
		Security: config.SecurityConfig{
			JWTAccessSecret:  "access-secret",
			JWTRefreshSecret: "refresh-secret",
			JWTAccessTTL:     15 * time.Minute,
			JWTRefreshTTL:    time.Hour,
			DeviceSecret:     "device-secret",
			BcryptCost:       10,
			MaxDevices:       3,
		},
		Cookies: config.CookieConfig{AccessMaxAge: 15 * time.Minute, RefreshMaxAge: time.Hour},
		OTP:     config.OTPConfig{Age: 10 * time.Minute, MaxAttempts: 5},
	}
}

// apiClient keeps cookies between requests like a browser would.
type apiClient struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newAPIClient(t *testing.T) (*apiClient, *outbox, *memstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	log := zerolog.Nop()
	store := memstore.New()
	mail := &outbox{codes: map[string]string{}}
	m := metrics.New("stockify-test")

	handlerSet := handlers.NewHandlerSet(handlers.Dependencies{
		Config:  cfg,
		Log:     log,
		Store:   store,
		Mailer:  mail,
		Uploads: service.NewUploadService(nil, cfg.Storage.MaxUploadBytes, log),
		Metrics: m,
		Checks:  []handlers.HealthCheck{{Name: "database", Ping: store.Ping}},
	})
	engine := server.NewEngine(cfg, log, m, handlerSet)
	return &apiClient{t: t, engine: engine, cookies: map[string]*http.Cookie{}}, mail, store
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	for _, cookie := range c.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func (c *apiClient) mustOK(method, path string, body any) map[string]any {
	c.t.Helper()
	status, out := c.do(method, path, body)
	if status != http.StatusOK || out["success"] != true {
		c.t.Fatalf("%s %s: status %d body %v", method, path, status, out)
	}
	return out
}

func data(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	d, ok := out["data"].(map[string]any)
	if !ok {
		t.Fatalf("data missing in %v", out)
	}
	return d
}

func TestLedgerScenario(t *testing.T) {
	api, mail, _ := newAPIClient(t)

	api.mustOK(http.MethodPost, "/api/v1/users/auth/register-user", map[string]string{
		"name":     "Shop Owner",
		"email":    "owner@example.com",
		"mobile":   "01711111111",
		"password": "password123",
	})

	login := map[string]string{"email_mobile": "owner@example.com", "password": "password123"}
	status, out := api.do(http.MethodPost, "/api/v1/users/auth/login", login)
	if status != http.StatusForbidden || out["message"] != "Your account is not active yet" {
		t.Fatalf("pending login: %d %v", status, out)
	}
	if len(api.cookies) != 0 {
		t.Fatal("pending login set cookies")
	}

	code := mail.code("owner@example.com")
	if code == "" {
		t.Fatal("no otp delivered")
	}
	api.mustOK(http.MethodPost, "/api/v1/users/auth/verify-otp", map[string]string{
		"email_mobile": "owner@example.com",
		"otp":          code,
	})

	api.mustOK(http.MethodPost, "/api/v1/users/auth/login", login)
	if api.cookies["accessToken"] == nil || api.cookies["refreshToken"] == nil {
		t.Fatalf("login cookies = %v", api.cookies)
	}
	if !api.cookies["accessToken"].HttpOnly {
		t.Fatal("access cookie is not HttpOnly")
	}

	api.mustOK(http.MethodPost, "/api/v1/brands/create-brand", map[string]string{
		"name":    "Corner Shop",
		"mobile":  "01711111111",
		"address": "12 Market Road",
		"city":    "Dhaka",
	})
	status, out = api.do(http.MethodPost, "/api/v1/brands/create-brand", map[string]string{
		"name":    "Second Shop",
		"mobile":  "01722222222",
		"address": "1 Other Road",
		"city":    "Khulna",
	})
	if status != http.StatusBadRequest || out["message"] != "User already has a brand" {
		t.Fatalf("second brand: %d %v", status, out)
	}

	out = api.mustOK(http.MethodPost, "/api/v1/clients/create-client", map[string]string{
		"name": "Rahim Traders",
		"type": "customer",
	})
	if out["message"] != "Client added successfully" {
		t.Fatalf("create client message = %v", out["message"])
	}
	clientID := int64(data(t, out)["id"].(float64))

	api.mustOK(http.MethodPost, fmt.Sprintf("/api/v1/transactions/add-transaction/%d", clientID), map[string]any{
		"amount":       100,
		"type":         "credit",
		"created_date": "2024-03-01",
	})
	api.mustOK(http.MethodPost, fmt.Sprintf("/api/v1/transactions/add-transaction/%d", clientID), map[string]any{
		"amount":       "40",
		"type":         "debit",
		"description":  "<b>cash</b> paid",
		"created_date": "2024-03-02",
	})

	out = api.mustOK(http.MethodGet, fmt.Sprintf("/api/v1/clients/get-client/%d", clientID), nil)
	client := data(t, out)
	if client["balance"] != "60.00" || client["creditSum"] != "100.00" || client["debitSum"] != "40.00" {
		t.Fatalf("client = %v", client)
	}

	out = api.mustOK(http.MethodGet, fmt.Sprintf("/api/v1/transactions/get-transactions/%d?limit=1", clientID), nil)
	txs := out["data"].([]any)
	pagination := out["pagination"].(map[string]any)
	if len(txs) != 1 || pagination["totalTransactions"] != float64(2) || pagination["hasNextPage"] != true {
		t.Fatalf("transactions = %v pagination = %v", txs, pagination)
	}
	newest := txs[0].(map[string]any)
	if newest["created_date"] != "2024-03-02" || newest["description"] != "cash paid" {
		t.Fatalf("newest = %v", newest)
	}

	out = api.mustOK(http.MethodGet, "/api/v1/clients/get-clients?search=rahim", nil)
	if out["total"] != float64(1) || out["customerCount"] != float64(1) {
		t.Fatalf("clients = %v", out)
	}

	// Logging out revokes the session; replaying the old cookies fails.
	stale := map[string]*http.Cookie{}
	for k, v := range api.cookies {
		stale[k] = v
	}
	api.mustOK(http.MethodPost, "/api/v1/users/auth/logout", nil)
	api.cookies = stale
	status, out = api.do(http.MethodGet, "/api/v1/users/user/me", nil)
	if status != http.StatusUnauthorized || out["message"] != "Session terminated, please login again" {
		t.Fatalf("after logout: %d %v", status, out)
	}
}

func TestManageTokenAndSessions(t *testing.T) {
	api, mail, _ := newAPIClient(t)

	api.mustOK(http.MethodPost, "/api/v1/users/auth/register-user", map[string]string{
		"name":     "Shop Owner",
		"email":    "owner@example.com",
		"mobile":   "01711111111",
		"password": "password123",
	})
	login := map[string]string{"email_mobile": "01711111111", "password": "password123"}
	api.do(http.MethodPost, "/api/v1/users/auth/login", login)
	api.mustOK(http.MethodPost, "/api/v1/users/auth/verify-otp", map[string]string{
		"email_mobile": "01711111111",
		"otp":          mail.code("owner@example.com"),
	})
	api.mustOK(http.MethodPost, "/api/v1/users/auth/login", login)

	delete(api.cookies, "accessToken")
	api.mustOK(http.MethodGet, "/api/v1/users/auth/manage-token", nil)
	if api.cookies["accessToken"] == nil || api.cookies["accessToken"].Value == "" {
		t.Fatal("manage-token did not set an access cookie")
	}

	out := api.mustOK(http.MethodGet, "/api/v1/users/auth/sessions", nil)
	sessions := out["data"].([]any)
	if len(sessions) != 1 || sessions[0].(map[string]any)["current"] != true {
		t.Fatalf("sessions = %v", sessions)
	}

	out = api.mustOK(http.MethodGet, "/api/v1/users/user/me", nil)
	user := out["user"].(map[string]any)
	if user["active_status"] != "active" || user["device_count"] != float64(1) {
		t.Fatalf("me = %v", user)
	}

	status, out := api.do(http.MethodGet, "/api/v1/admin/users", nil)
	if status != http.StatusForbidden {
		t.Fatalf("admin route as user: %d %v", status, out)
	}

	api.mustOK(http.MethodPost, "/api/v1/users/auth/logout-all", nil)
	if len(api.cookies) != 0 {
		t.Fatalf("cookies after logout-all = %v", api.cookies)
	}
	status, _ = api.do(http.MethodGet, "/api/v1/users/auth/manage-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("manage-token without cookie: %d", status)
	}
}

func TestUnknownRoute(t *testing.T) {
	api, _, _ := newAPIClient(t)
	status, out := api.do(http.MethodGet, "/api/v1/nope", nil)
	if status != http.StatusNotFound || out["message"] != "Route not found!" || out["success"] != false {
		t.Fatalf("unknown route: %d %v", status, out)
	}
}

func TestHealth(t *testing.T) {
	api, _, _ := newAPIClient(t)
	status, out := api.do(http.MethodGet, "/healthz", nil)
	if status != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("health: %d %v", status, out)
	}
}
