package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"uniadmin-console/internal/backend"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Application holds all the application-wide dependencies.
type Application struct {
	Config         Config
	Logger         zerolog.Logger
	DB             *pgxpool.Pool
	Redis          *redis.Client
	Backend        *backend.Client
	TracerProvider *trace.TracerProvider
}

// Config holds all the configuration variables for the application.
type Config struct {
	Port                 int      `mapstructure:"PORT"`
	App_Env              string   `mapstructure:"APP_ENV"`
	CORS_Allowed_Origins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel             string   `mapstructure:"LOG_LEVEL"`
	RequestTimeout       int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	RateLimit            int      `mapstructure:"RATE_LIMIT"`
	// Backend API
	BackendAPIURL         string `mapstructure:"BACKEND_API_URL"`
	BackendTimeoutSeconds int    `mapstructure:"BACKEND_TIMEOUT_SECONDS"`
	JWTSecret             string `mapstructure:"JWT_SECRET"`
	// Console
	UsersPageSize     int   `mapstructure:"USERS_PAGE_SIZE"`
	VacanciesPageSize int   `mapstructure:"VACANCIES_PAGE_SIZE"`
	MaxImageBytes     int64 `mapstructure:"MAX_IMAGE_BYTES"`
	// Audit store
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DbHost      string `mapstructure:"DB_HOST"`
	DbPort      int    `mapstructure:"DB_PORT"`
	DbUser      string `mapstructure:"DB_USER"`
	DbPassword  string `mapstructure:"DB_PASSWORD"`
	DbName      string `mapstructure:"DB_NAME"`
	DbSslMode   string `mapstructure:"DB_SSL_MODE"`
	// Rate limiter
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     int    `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// Tracing
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_ENDPOINT"`
	ServiceName  string `mapstructure:"SERVICE_NAME"`
}

type ContextKey string

const (
	UserNameKey  = ContextKey("userName")
	ActorKey     = ContextKey("actor")
	RequestIDKey = ContextKey("request_id")
)

// Load reads configuration from secrets, environment variables, or defaults.
func Load() (config Config, err error) {
	// 1. Determine Environment First
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	viper.Set("APP_ENV", env)

	// 2. Set Defaults based on Environment
	if env == "production" {
		viper.SetDefault("RATE_LIMIT", 1000)
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	} else {
		viper.SetDefault("RATE_LIMIT", 100)
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)
	}

	// Universal Defaults
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("BACKEND_API_URL", "http://localhost:5000/api")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	viper.SetDefault("USERS_PAGE_SIZE", 4)
	viper.SetDefault("VACANCIES_PAGE_SIZE", 10)
	viper.SetDefault("MAX_IMAGE_BYTES", 2<<20)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("OTEL_EXPORTER_ENDPOINT", "tempo:4318")
	viper.SetDefault("SERVICE_NAME", "uniadmin-console")

	// 3. Conditional Loading Logic
	if env == "development" {
		// We try loading from current and parent directory
		_ = loadEnvFile(".env")
		_ = loadEnvFile("../.env")
	} else {
		loadSecret("DATABASE_URL", "database_url")
		loadSecret("DB_USER", "db_user")
		loadSecret("DB_PASSWORD", "db_password")
		loadSecret("DB_NAME", "db_name")
		loadSecret("REDIS_PASSWORD", "redis_password")
		loadSecret("JWT_SECRET", "jwt_secret")
		loadSecret("BACKEND_API_URL", "backend_api_url")
	}

	// 4. AutomaticEnv (System Env Vars override everything loaded so far)
	viper.AutomaticEnv()

	// 5. Explicit Overrides
	bindExplicitEnvs()

	// 6. Unmarshal
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// 7. Post-Load Logic
	if config.DatabaseURL == "" {
		config.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.DbUser, config.DbPassword, config.DbHost, config.DbPort, config.DbName, config.DbSslMode,
		)
	}
	config.BackendAPIURL = strings.TrimRight(config.BackendAPIURL, "/")

	return
}

// loadSecret reads a file from /run/secrets and sets it in Viper
func loadSecret(key, name string) {
	candidates := []string{name, strings.ToUpper(name), strings.ToLower(name)}
	for _, filename := range candidates {
		path := fmt.Sprintf("/run/secrets/%s", filename)
		if _, err := os.Stat(path); err == nil {
			content, _ := os.ReadFile(path)
			if len(content) > 0 {
				viper.Set(key, strings.TrimSpace(string(content)))
				return
			}
		}
	}
}

// loadEnvFile reads a .env file into Viper and the process environment.
// Variables already set in the environment win.
func loadEnvFile(filename string) error {
	values, err := godotenv.Read(filename)
	if err != nil {
		return err
	}

	for key, value := range values {
		if os.Getenv(key) == "" {
			viper.Set(key, value)
			os.Setenv(key, value)
		}
	}
	return nil
}

func bindExplicitEnvs() {
	// Comma separated list in the environment
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		var list []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				list = append(list, o)
			}
		}
		viper.Set("CORS_ALLOWED_ORIGINS", list)
	}
	if legacy := os.Getenv("BACKEND_URL"); legacy != "" && os.Getenv("BACKEND_API_URL") == "" {
		viper.Set("BACKEND_API_URL", legacy)
	}
}

// Validate performs comprehensive configuration validation
func (c *Config) Validate() error {
	var errors []string

	if c.BackendAPIURL == "" {
		errors = append(errors, "BACKEND_API_URL is required")
	} else if u, err := url.Parse(c.BackendAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, "BACKEND_API_URL must be an absolute URL")
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters long")
	}

	if c.UsersPageSize < 1 {
		errors = append(errors, "USERS_PAGE_SIZE must be positive")
	}
	if c.VacanciesPageSize < 1 {
		errors = append(errors, "VACANCIES_PAGE_SIZE must be positive")
	}
	if c.MaxImageBytes < 1 {
		errors = append(errors, "MAX_IMAGE_BYTES must be positive")
	}

	if c.DbUser == "" {
		errors = append(errors, "DB_USER is required")
	}
	if c.DbPassword == "" {
		errors = append(errors, "DB_PASSWORD is required")
	}
	if c.DbName == "" {
		errors = append(errors, "DB_NAME is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App_Env == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App_Env == "production"
}

// GetRequestTimeout returns the request timeout duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetBackendTimeout returns the timeout applied to each backend call
func (c *Config) GetBackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}
