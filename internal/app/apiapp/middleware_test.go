package apiapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	authsvc "github.com/amora-app/backend/internal/services/auth"
	ratesvc "github.com/amora-app/backend/internal/services/rate"
)

const testJWTSecret = "middleware-test-secret"

func signTestToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewService(testJWTSecret), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/discovery", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testJWTSecret, "1111", time.Now().Add(time.Hour)))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok || identity.UserID != "1111" {
			t.Fatalf("identity missing or wrong: %+v ok=%v", identity, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewService(testJWTSecret), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/discovery", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsBadSignatureAndExpiry(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewService(testJWTSecret), zap.NewNop())

	cases := map[string]string{
		"wrong secret": signTestToken(t, "other-secret", "1111", time.Now().Add(time.Hour)),
		"expired":      signTestToken(t, testJWTSecret, "1111", time.Now().Add(-time.Hour)),
		"garbage":      "not-a-jwt",
	}

	for name, token := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/discovery", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			t.Fatalf("%s: handler must not be called", name)
		})).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: unexpected status: got %d want %d", name, rr.Code, http.StatusUnauthorized)
		}
	}
}

type fakeWindowStore struct {
	counts  map[string]int64
	failure error
}

func (s *fakeWindowStore) IncrementWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s.failure != nil {
		return 0, 0, s.failure
	}
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], window, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitMiddlewareReturns429WithRetryAfter(t *testing.T) {
	store := &fakeWindowStore{}
	limiter := ratesvc.NewLimiter(store, ratesvc.Config{MaxRequests: 1, Window: time.Minute})
	mw := RateLimitMiddleware(limiter, "swipes", zap.NewNop())

	for i, wantCode := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/v1/swipes", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != wantCode {
			t.Fatalf("request %d: got %d want %d", i+1, rr.Code, wantCode)
		}
	}

	var body struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/swipes", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "RATE_LIMITED" || body.RetryAfterSec <= 0 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRateLimitMiddlewarePrefersUserIdentifier(t *testing.T) {
	store := &fakeWindowStore{}
	limiter := ratesvc.NewLimiter(store, ratesvc.Config{MaxRequests: 5, Window: time.Minute})
	mw := RateLimitMiddleware(limiter, "discovery", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/discovery", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: "1111"}))
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)

	if _, ok := store.counts["rate:user:1111:discovery"]; !ok {
		t.Fatalf("expected user-keyed counter, got %v", store.counts)
	}
	if _, ok := store.counts["rate:ip:10.0.0.1:discovery"]; ok {
		t.Fatalf("ip counter must not be touched for authenticated caller")
	}
}

func TestRateLimitMiddlewareFallsBackToIPIdentifier(t *testing.T) {
	store := &fakeWindowStore{}
	limiter := ratesvc.NewLimiter(store, ratesvc.Config{MaxRequests: 5, Window: time.Minute})
	mw := RateLimitMiddleware(limiter, "discovery", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/discovery", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)

	if _, ok := store.counts["rate:ip:10.0.0.1:discovery"]; !ok {
		t.Fatalf("expected ip-keyed counter, got %v", store.counts)
	}
}

func TestRateLimitMiddlewareFailsOpenOnStoreOutage(t *testing.T) {
	store := &fakeWindowStore{failure: errors.New("redis down")}
	limiter := ratesvc.NewLimiter(store, ratesvc.Config{MaxRequests: 1, Window: time.Minute})
	mw := RateLimitMiddleware(limiter, "swipes", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/swipes", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("limiter outage must fail open: got %d", rr.Code)
	}
}

func TestRateLimitMiddlewareNilLimiterPassesThrough(t *testing.T) {
	mw := RateLimitMiddleware(nil, "swipes", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/swipes", nil)
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("nil limiter must pass through: got %d", rr.Code)
	}
}
