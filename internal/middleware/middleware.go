// File: internal/middleware/middleware.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"uniadmin-console/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type Middleware struct {
	app *config.Application
	now func() time.Time
}

func New(app *config.Application) *Middleware {
	return &Middleware{app: app, now: time.Now}
}

// --- RESPONSE WRITER for logging ---
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// --- REQUEST ID MIDDLEWARE ---
func (mw *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), config.RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// --- LOGGING MIDDLEWARE ---
func (mw *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := getRequestID(r.Context())

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		logEvent := mw.app.Logger.Info()
		if wrapped.statusCode >= 500 {
			logEvent = mw.app.Logger.Error()
		} else if wrapped.statusCode >= 400 {
			logEvent = mw.app.Logger.Warn()
		}

		logEvent.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", wrapped.statusCode).
			Dur("duration", duration).
			Str("ip", getClientIP(r)).
			Str("user_agent", r.UserAgent()).
			Int("response_size", wrapped.size).
			Msg("HTTP request processed")
	})
}

// --- RECOVERY MIDDLEWARE ---
func (mw *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := getRequestID(r.Context())

				mw.app.Logger.Error().
					Str("request_id", requestID).
					Str("panic", fmt.Sprintf("%v", err)).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("Panic recovered")

				writeJSONError(w, http.StatusInternalServerError, "Internal server error", requestID)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// --- REDIS-BASED RATE LIMITER ---
type RedisRateLimiter struct {
	app   *config.Application
	rate  int
	burst int
}

func NewRedisRateLimiter(app *config.Application, rate, burst int) *RedisRateLimiter {
	return &RedisRateLimiter{
		app:   app,
		rate:  rate,
		burst: burst,
	}
}

// Allow counts requests per IP in a one minute sliding window.
func (rl *RedisRateLimiter) Allow(ctx context.Context, ip string) bool {
	key := fmt.Sprintf("uniadmin:rate_limit:%s", ip)

	now := time.Now()
	windowStart := now.Add(-time.Minute).UnixNano()

	pipe := rl.app.Redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, time.Minute*2)

	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open
		rl.app.Logger.Warn().Err(err).Msg("Redis rate limiter failed, allowing request")
		return true
	}

	return countCmd.Val() < int64(rl.rate)
}

// --- FALLBACK IN-MEMORY RATE LIMITER ---
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	visitorTTL    = 15 * time.Minute
	sweepInterval = time.Minute
)

type MemoryRateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryRateLimiter allows perMinute requests per IP with the given burst.
// Idle visitors are swept on the request path, so the limiter owns no
// goroutine and needs no shutdown.
func NewMemoryRateLimiter(perMinute int, burst int) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *MemoryRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle for longer than visitorTTL. Callers hold mu.
func (rl *MemoryRateLimiter) sweep(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// Len reports how many visitors are tracked.
func (rl *MemoryRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (mw *Middleware) RateLimit(next http.Handler) http.Handler {
	// Redis when available, otherwise per-process limiting
	var redisLimiter *RedisRateLimiter
	var memoryLimiter *MemoryRateLimiter

	if mw.app.Redis != nil {
		redisLimiter = NewRedisRateLimiter(mw.app, mw.app.Config.RateLimit, mw.app.Config.RateLimit*2)
	} else {
		memoryLimiter = NewMemoryRateLimiter(mw.app.Config.RateLimit, mw.app.Config.RateLimit*2)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r.Context())
		ip := getClientIP(r)

		var allowed bool
		if redisLimiter != nil {
			allowed = redisLimiter.Allow(r.Context(), ip)
		} else {
			allowed = memoryLimiter.Allow(ip)
		}

		if !allowed {
			mw.app.Logger.Warn().
				Str("request_id", requestID).
				Str("ip", ip).
				Msg("Rate limit exceeded")
			writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded", requestID)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// --- SECURITY MIDDLEWARE ---
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// --- TIMEOUT MIDDLEWARE ---
func (mw *Middleware) Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"success":false,"error":"Request timeout"}`)
	}
}

// --- HELPER FUNCTIONS ---

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(config.RequestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	if colon := strings.LastIndex(ip, ":"); colon != -1 {
		ip = ip[:colon]
	}
	return ip
}

func writeJSONError(w http.ResponseWriter, status int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := fmt.Sprintf(`{"success":false,"error":%q,"request_id":%q}`, message, requestID)
	w.Write([]byte(response))
}
