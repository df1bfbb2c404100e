package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"uniadmin-console/internal/backend"
	"uniadmin-console/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

func newTestMiddleware(secret string) *Middleware {
	app := &config.Application{
		Config: config.Config{JWTSecret: secret, RateLimit: 1},
		Logger: zerolog.Nop(),
	}
	mw := New(app)
	mw.now = func() time.Time { return testNow }
	return mw
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// captured records what the auth middleware put on the context.
type captured struct {
	called   bool
	token    string
	actor    string
	userName string
}

func (c *captured) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.token = backend.TokenFromContext(r.Context())
		c.actor, _ = r.Context().Value(config.ActorKey).(string)
		c.userName, _ = r.Context().Value(config.UserNameKey).(string)
	})
}

func TestAuth(t *testing.T) {
	valid := jwt.MapClaims{"sub": "kamal", "exp": testNow.Add(time.Hour).Unix()}

	t.Run("MissingToken", func(t *testing.T) {
		var c captured
		rec := httptest.NewRecorder()
		newTestMiddleware("").Auth(c.handler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authentication required")
		assert.False(t, c.called)
	})

	t.Run("BearerUnverified", func(t *testing.T) {
		var c captured
		token := signToken(t, valid, "some-other-secret")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		newTestMiddleware("").Auth(c.handler()).ServeHTTP(rec, req)

		require.True(t, c.called)
		assert.Equal(t, token, c.token)
		assert.Equal(t, "kamal", c.actor)
		assert.Equal(t, "kamal", c.userName)
	})

	t.Run("UnverifiedCookiePicksProfileNotActor", func(t *testing.T) {
		var c captured
		token := signToken(t, valid, testSecret)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		req.AddCookie(&http.Cookie{Name: UsernameCookie, Value: "nimal"})
		rec := httptest.NewRecorder()

		newTestMiddleware("").Auth(c.handler()).ServeHTTP(rec, req)

		require.True(t, c.called)
		assert.Equal(t, "nimal", c.userName)
		assert.Equal(t, "kamal", c.actor)
	})

	t.Run("UnverifiedHeaderOverridesCookie", func(t *testing.T) {
		var c captured
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, valid, testSecret))
		req.Header.Set(UsernameHeader, "amara")
		req.AddCookie(&http.Cookie{Name: UsernameCookie, Value: "nimal"})
		rec := httptest.NewRecorder()

		newTestMiddleware("").Auth(c.handler()).ServeHTTP(rec, req)

		assert.Equal(t, "amara", c.userName)
		assert.Equal(t, "kamal", c.actor)
	})

	t.Run("UnverifiedWithoutClaimedName", func(t *testing.T) {
		var c captured
		anonymous := jwt.MapClaims{"id": "42", "exp": testNow.Add(time.Hour).Unix()}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, anonymous, testSecret))
		req.Header.Set(UsernameHeader, "amara")
		rec := httptest.NewRecorder()

		newTestMiddleware("").Auth(c.handler()).ServeHTTP(rec, req)

		assert.Equal(t, "amara", c.userName)
		assert.Equal(t, "amara", c.actor)
	})

	t.Run("VerifiedTokenIgnoresHeaderAndCookie", func(t *testing.T) {
		var c captured
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/nimal/role", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, valid, testSecret))
		req.Header.Set(UsernameHeader, "amara")
		req.AddCookie(&http.Cookie{Name: UsernameCookie, Value: "nimal"})
		rec := httptest.NewRecorder()

		newTestMiddleware(testSecret).Auth(c.handler()).ServeHTTP(rec, req)

		require.True(t, c.called)
		assert.Equal(t, "kamal", c.actor)
		assert.Equal(t, "kamal", c.userName)
	})

	t.Run("BadSignature", func(t *testing.T) {
		var c captured
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, valid, "wrong-secret-wrong-secret-wrong!!"))
		rec := httptest.NewRecorder()

		newTestMiddleware(testSecret).Auth(c.handler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid token")
		assert.False(t, c.called)
	})

	t.Run("Expired", func(t *testing.T) {
		var c captured
		expired := jwt.MapClaims{"sub": "kamal", "exp": testNow.Add(-time.Minute).Unix()}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, expired, testSecret))
		rec := httptest.NewRecorder()

		newTestMiddleware("").Auth(c.handler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Session expired")
		assert.False(t, c.called)
	})

	t.Run("NotAJWT", func(t *testing.T) {
		var c captured
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		newTestMiddleware("").Auth(c.handler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, c.called)
	})
}

func TestUserNameFromClaims(t *testing.T) {
	assert.Equal(t, "a", UserNameFromClaims(jwt.MapClaims{"sub": "a", "username": "b"}))
	assert.Equal(t, "b", UserNameFromClaims(jwt.MapClaims{"username": "b"}))
	assert.Equal(t, "c", UserNameFromClaims(jwt.MapClaims{"user": map[string]interface{}{"userName": "c"}}))
	assert.Equal(t, "", UserNameFromClaims(jwt.MapClaims{"id": "123"}))
}

func TestRequestID(t *testing.T) {
	mw := newTestMiddleware("")

	t.Run("Generated", func(t *testing.T) {
		var seen string
		rec := httptest.NewRecorder()
		mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = getRequestID(r.Context())
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEqual(t, "unknown", seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		mw.RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})
}

func TestRecovery(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMiddleware("").Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestRateLimit_MemoryFallback(t *testing.T) {
	// RateLimit 1 per minute gives a burst of 2 per IP
	handler := newTestMiddleware("").RateLimit(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMemoryRateLimiter_SweepsIdleVisitors(t *testing.T) {
	clock := testNow
	rl := NewMemoryRateLimiter(60, 2)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Len())

	clock = clock.Add(10 * time.Minute)
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Len(), "neither visitor has been idle long enough")

	clock = clock.Add(6 * time.Minute)
	assert.True(t, rl.Allow("10.0.0.3"))
	assert.Equal(t, 2, rl.Len(), "10.0.0.1 was idle for 16 minutes")
}

func TestMemoryRateLimiter_StartsNoGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		NewMemoryRateLimiter(60, 2).Allow("10.0.0.1")
	}
	assert.Less(t, runtime.NumGoroutine(), before+10)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	assert.Equal(t, "192.168.1.5", getClientIP(req))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	assert.Equal(t, "172.16.0.9", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.4, 10.0.0.1")
	assert.Equal(t, "203.0.113.4", getClientIP(req))
}

func TestSecurity(t *testing.T) {
	rec := httptest.NewRecorder()
	Security(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
