package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"uniadmin-console/internal/database"

	"golang.org/x/sync/errgroup"
)

const version = "1.2.0"

type probeResult struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// probeDependencies pings Postgres, Redis and the backend API concurrently.
// Dependencies that are not configured are reported as such and do not
// degrade the service.
func (h *Handlers) probeDependencies(ctx context.Context) (map[string]probeResult, bool) {
	probes := map[string]func(context.Context) error{}
	if h.app.DB != nil {
		probes["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, h.app.DB) }
	}
	if h.app.Redis != nil {
		probes["redis"] = func(ctx context.Context) error { return h.app.Redis.Ping(ctx).Err() }
	}
	if h.app.Backend != nil {
		probes["backend"] = h.app.Backend.Ping
	}

	var (
		mu      sync.Mutex
		healthy = true
		results = map[string]probeResult{
			"database": {Status: "not_configured"},
			"redis":    {Status: "not_configured"},
			"backend":  {Status: "not_configured"},
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, probe := range probes {
		g.Go(func() error {
			start := time.Now()
			err := probe(gctx)

			res := probeResult{Status: "connected", Latency: time.Since(start).String()}
			if err != nil {
				res = probeResult{Status: "disconnected", Error: err.Error()}
				h.app.Logger.Error().
					Str("request_id", getRequestID(ctx)).
					Str("dependency", name).
					Err(err).
					Msg("Health probe failed")
			}

			mu.Lock()
			results[name] = res
			if err != nil {
				healthy = false
			}
			mu.Unlock()
			// Probe failures are reported in results, never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()

	return results, healthy
}

// Health handles health check requests
// @Summary      Health check
// @Description  Probe Postgres, Redis and the backend API
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	healthCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	services, healthy := h.probeDependencies(healthCtx)

	health := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"uptime":      time.Since(startTime).String(),
		"version":     version,
		"environment": h.app.Config.App_Env,
		"request_id":  getRequestID(r.Context()),
		"services":    services,
	}

	if !healthy {
		health["status"] = "degraded"
		writeResponse(w, h.app, http.StatusServiceUnavailable, false, health, "Service is degraded")
		return
	}

	writeSuccess(w, h.app, health, "Service is healthy")
}

// HealthDetailed adds pool statistics to the dependency probes
// @Summary      Detailed health check
// @Description  Dependency probes plus pool statistics
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health/detailed [get]
func (h *Handlers) HealthDetailed(w http.ResponseWriter, r *http.Request) {
	healthCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services, healthy := h.probeDependencies(healthCtx)

	health := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"uptime":      time.Since(startTime).String(),
		"version":     version,
		"environment": h.app.Config.App_Env,
		"request_id":  getRequestID(r.Context()),
		"services":    services,
		"backend_url": h.app.Config.BackendAPIURL,
	}
	if h.app.DB != nil {
		health["database_stats"] = database.GetConnectionStats(h.app.DB)
	}
	if h.app.Redis != nil {
		stats := h.app.Redis.PoolStats()
		health["redis_stats"] = map[string]interface{}{
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"timeouts":    stats.Timeouts,
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
		}
	}

	statusCode := http.StatusOK
	if !healthy {
		health["status"] = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	writeResponse(w, h.app, statusCode, healthy, health, "Detailed health check complete")
}
