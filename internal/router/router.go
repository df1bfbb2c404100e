package router

import (
	"net/http"

	"uniadmin-console/internal/config"
	"uniadmin-console/internal/core"
	"uniadmin-console/internal/handlers"
	"uniadmin-console/internal/middleware"
	"uniadmin-console/internal/repository"
	"uniadmin-console/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "A histogram of request latencies.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"code", "method"},
)

func Setup(app *config.Application) http.Handler {
	// Nil interfaces when the audit store is absent, so callers skip recording.
	var audit core.AuditRepository
	if app.DB != nil {
		audit = repository.NewAuditRepository(app.DB)
	}

	userService := service.NewUserService(app.Backend, audit, &app.Config, app.Logger)
	vacancyService := service.NewVacancyService(app.Backend, audit, &app.Config, app.Logger)
	profileService := service.NewProfileService(app.Backend, audit, app.Logger)

	h := handlers.New(app, userService, vacancyService, profileService, audit)
	return Build(app, h)
}

// Build wires routes and middleware around already constructed handlers.
func Build(app *config.Application, h *handlers.Handlers) http.Handler {
	router := mux.NewRouter()
	mw := middleware.New(app)

	// Apply global middleware in order of execution
	router.Use(mw.RequestID) // First: Add request ID
	router.Use(otelmux.Middleware(app.Config.ServiceName))
	router.Use(mw.Recovery)                                // Second: Catch panics
	router.Use(mw.Logging)                                 // Third: Log requests
	router.Use(middleware.Security)                        // Fourth: Security headers
	router.Use(mw.Timeout(app.Config.GetRequestTimeout())) // Fifth: Request timeout
	router.Use(mw.RateLimit)                               // Sixth: Rate limiting

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   app.Config.CORS_Allowed_Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", middleware.UsernameHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	})

	// Health and monitoring routes (no authentication required)
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/health/detailed", h.HealthDetailed).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Session routes; the token itself is issued by the backend at login
	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/session", h.SetSession).Methods("POST")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")

	// Protected API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(mw.Auth)

	// User management
	api.HandleFunc("/users", h.ListUsers).Methods("GET")
	api.HandleFunc("/users/{userName}", h.GetUser).Methods("GET")
	api.HandleFunc("/users/{userName}/role", h.UpdateUserRole).Methods("PUT")
	api.HandleFunc("/users/{userName}/block", h.ToggleUserBlock).Methods("PUT")

	// Vacancies
	api.HandleFunc("/vacancies", h.ListVacancies).Methods("GET")
	api.HandleFunc("/vacancies", h.CreateVacancy).Methods("POST")
	api.HandleFunc("/vacancies/{id}", h.GetVacancy).Methods("GET")
	api.HandleFunc("/vacancies/{id}", h.UpdateVacancy).Methods("PUT")
	api.HandleFunc("/vacancies/{id}/visibility", h.ToggleVacancyVisibility).Methods("PATCH")

	// Admin profile
	api.HandleFunc("/profile", h.GetProfile).Methods("GET")
	api.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/image", h.UploadProfileImage).Methods("POST")
	api.HandleFunc("/nic/decode", h.DecodeNIC).Methods("POST")

	// Audit trail and store statistics
	api.HandleFunc("/admin/audit", h.ListAudit).Methods("GET")
	api.HandleFunc("/admin/db-stats", h.GetDatabaseStats).Methods("GET")

	// CORS wraps the router so preflight requests never reach route matching
	return promhttp.InstrumentHandlerDuration(requestDuration, c.Handler(router))
}
