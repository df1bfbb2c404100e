// Package backend is the HTTP client for the job-vacancy backend API. Every
// call forwards the bearer token of the inbound admin request.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"uniadmin-console/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Requests sent to the backend API by operation and status code.",
	}, []string{"operation", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Latency of backend API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

type tokenKey struct{}

// WithToken returns a context carrying the bearer token forwarded to the
// backend.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the backend API.
type Client struct {
	http    *http.Client
	baseURL string
	logger  zerolog.Logger
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  opts.Logger,
	}
}

// --- Users ---

// ListUsers calls GET /users.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.doJSON(ctx, "ListUsers", http.MethodGet, "/users", nil, listEnvelope(&users)); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser calls GET /users/:name.
func (c *Client) GetUser(ctx context.Context, userName string) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, "GetUser", http.MethodGet, "/users/"+url.PathEscape(userName), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser calls PUT /users/:name with an arbitrary partial body.
func (c *Client) UpdateUser(ctx context.Context, userName string, body any) error {
	return c.doJSON(ctx, "UpdateUser", http.MethodPut, "/users/"+url.PathEscape(userName), body, nil)
}

// ToggleBlock calls PUT /users/toggle-block/:name.
func (c *Client) ToggleBlock(ctx context.Context, userName string) error {
	return c.doJSON(ctx, "ToggleBlock", http.MethodPut, "/users/toggle-block/"+url.PathEscape(userName), nil, nil)
}

// --- Jobs ---

// ListJobs calls GET /job.
func (c *Client) ListJobs(ctx context.Context) ([]models.Vacancy, error) {
	var jobs []models.Vacancy
	if err := c.doJSON(ctx, "ListJobs", http.MethodGet, "/job", nil, listEnvelope(&jobs)); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob calls GET /job/:id.
func (c *Client) GetJob(ctx context.Context, id string) (*models.Vacancy, error) {
	var job models.Vacancy
	if err := c.doJSON(ctx, "GetJob", http.MethodGet, "/job/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob calls POST /job.
func (c *Client) CreateJob(ctx context.Context, job *models.Vacancy) error {
	return c.doJSON(ctx, "CreateJob", http.MethodPost, "/job", job, nil)
}

// UpdateJob calls PUT /job/:id.
func (c *Client) UpdateJob(ctx context.Context, id string, job *models.Vacancy) error {
	return c.doJSON(ctx, "UpdateJob", http.MethodPut, "/job/"+url.PathEscape(id), job, nil)
}

// SetJobAvailability calls PATCH /job/:id.
func (c *Client) SetJobAvailability(ctx context.Context, id string, available bool) error {
	return c.doJSON(ctx, "SetJobAvailability", http.MethodPatch, "/job/"+url.PathEscape(id),
		models.VisibilityRequest{IsAvailable: available}, nil)
}

// Ping reports whether the backend answers HTTP at all. Any status code counts
// as reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// doJSON sends a request and decodes a JSON response into target when provided.
func (c *Client) doJSON(ctx context.Context, operation, method, path string, body, target any) (err error) {
	ctx, span := otel.Tracer("backend").Start(ctx, "Backend."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("backend.path", path),
	)

	start := time.Now()
	code := "error"
	defer func() {
		requestsTotal.WithLabelValues(operation, code).Inc()
		requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request %s %s: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Str("path", path).Msg("Failed to close backend response body")
		}
	}()

	code = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := newAPIError(method, path, resp)
		c.logger.Warn().
			Str("operation", operation).
			Int("status", apiErr.StatusCode).
			Str("backend_message", apiErr.Message).
			Msg("Backend request failed")
		return apiErr
	}

	if target == nil {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return fmt.Errorf("drain response body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	return nil
}

// listDecoder accepts either a bare JSON array or an object wrapping the
// array in "list" or "data".
type listDecoder[T any] struct {
	items *[]T
}

func listEnvelope[T any](items *[]T) *listDecoder[T] {
	return &listDecoder[T]{items: items}
}

func (l *listDecoder[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, l.items)
	}

	var wrapped struct {
		List []T `json:"list"`
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	switch {
	case wrapped.List != nil:
		*l.items = wrapped.List
	case wrapped.Data != nil:
		*l.items = wrapped.Data
	default:
		return errors.New("response has no list")
	}
	return nil
}
