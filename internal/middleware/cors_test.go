package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRequest(t *testing.T, origins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORS(origins))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCORSConfiguredOrigins(t *testing.T) {
	origins := []string{"https://app.example"}

	rec := corsRequest(t, origins, http.MethodGet, "https://app.example")
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" ||
		rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("allowed origin headers = %v", rec.Header())
	}

	rec = corsRequest(t, origins, http.MethodGet, "https://evil.example")
	if rec.Header().Get("Access-Control-Allow-Origin") != "" || rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("foreign origin headers = %v", rec.Header())
	}
}

func TestCORSAllowAllWithoutCredentials(t *testing.T) {
	rec := corsRequest(t, nil, http.MethodGet, "https://evil.example")
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://evil.example" {
		t.Fatalf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("credentials shared with any origin: %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := corsRequest(t, []string{"https://app.example"}, http.MethodOptions, "https://app.example")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}
