package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"httpfetch/internal/config"
)

func TestRateLimiter_Disabled(t *testing.T) {
	if mw := RateLimiter(config.RateLimitConfig{Enabled: false, RequestsPerSecond: 1}); mw != nil {
		t.Error("RateLimiter() should be nil when disabled")
	}
}

func TestRateLimiter_Enabled(t *testing.T) {
	mw := RateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1})
	if mw == nil {
		t.Fatal("RateLimiter() returned nil when enabled")
	}

	e := echo.New()
	e.Use(mw)
	e.POST("/fetch", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	got429 := false
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/fetch", http.NoBody)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if i == 0 && rec.Code != http.StatusOK {
			t.Fatalf("first request: status = %d, want %d", rec.Code, http.StatusOK)
		}
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Error("expected at least one 429 response after burst, got none")
	}
}
