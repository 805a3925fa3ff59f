package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0), // 1 req/sec
		GeneralBurst:    2,
		AuthRate:        rate.Limit(1.0),
		AuthBurst:       1,
		CleanupInterval: time.Hour,
	}
}

func TestGeneralMiddleware_UnderLimit_Passes(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestGeneralMiddleware_OverLimit_Returns429WithRetryAfter(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastStatus int
	var lastRetryAfter string
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		lastStatus = w.Result().StatusCode
		lastRetryAfter = w.Result().Header.Get("Retry-After")
	}

	// バースト2なので3回目は拒否される
	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", lastStatus, http.StatusTooManyRequests)
	}
	if lastRetryAfter == "" {
		t.Error("Retry-After header should be set")
	}
}

func TestGeneralMiddleware_SeparateUsers_IndependentLimits(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1のバーストを使い切る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// user-2は影響を受けない
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-2"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestGeneralMiddleware_NoUserID_Returns401(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_LimitsByClientIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト1なので同一IPからの2回目は拒否される
	var statuses []int
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Result().StatusCode)
	}

	if statuses[0] != http.StatusOK {
		t.Errorf("first request status = %d, want %d", statuses[0], http.StatusOK)
	}
	if statuses[1] != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", statuses[1], http.StatusTooManyRequests)
	}

	// 別IPは独立して許可される
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.8:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("other IP status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRateLimiter_Cleanup_RemovesStaleEntries(t *testing.T) {
	cfg := testRateLimiterConfig()
	cfg.CleanupInterval = 10 * time.Millisecond
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	rl.getOrCreateLimiter(&rl.generalMu, rl.generalLimiters, "user-1", cfg.GeneralRate, cfg.GeneralBurst)
	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("count = %d, want 1", rl.GeneralLimiterCount())
	}

	// エントリのTTL（CleanupInterval*2）を強制的に過去へずらす
	rl.generalMu.Lock()
	rl.generalLimiters["user-1"].lastAccess = time.Now().Add(-time.Hour)
	rl.generalMu.Unlock()

	rl.cleanup()

	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("count = %d, want 0 after cleanup", rl.GeneralLimiterCount())
	}
}

func TestClientIP_StripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:12345"
	if ip := clientIP(req); ip != "203.0.113.7" {
		t.Errorf("clientIP = %q, want %q", ip, "203.0.113.7")
	}

	req.RemoteAddr = "no-port-here"
	if ip := clientIP(req); ip != "no-port-here" {
		t.Errorf("clientIP = %q, want raw RemoteAddr", ip)
	}
}
