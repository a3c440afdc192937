package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestLocalLimiter(t *testing.T) {
	limiter := NewLocalLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _, _ := limiter.Allow(ctx, "ip-a"); !ok {
			t.Fatalf("request %d denied", i+1)
		}
	}
	ok, wait, err := limiter.Allow(ctx, "ip-a")
	if err != nil || ok {
		t.Fatalf("third request allowed = %v err = %v", ok, err)
	}
	if wait <= 0 {
		t.Fatalf("wait = %s", wait)
	}
	if ok, _, _ := limiter.Allow(ctx, "ip-b"); !ok {
		t.Fatal("separate key throttled")
	}

	now = now.Add(30 * time.Second)
	if ok, _, _ := limiter.Allow(ctx, "ip-a"); !ok {
		t.Fatal("bucket did not refill")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Errors(zerolog.Nop()))
	engine.POST("/login", RateLimit(NewLocalLimiter(1, time.Hour), zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		return rec
	}

	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}
