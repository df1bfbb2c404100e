package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"uniadmin-console/internal/backend"
	"uniadmin-console/internal/config"
	"uniadmin-console/internal/core"
	"uniadmin-console/internal/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
)

type UserService struct {
	users  core.UserGateway
	audit  core.AuditRepository
	config *config.Config
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(users core.UserGateway, audit core.AuditRepository, cfg *config.Config, logger zerolog.Logger) core.UserService {
	return &UserService{users: users, audit: audit, config: cfg, logger: logger, now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context, q models.UserQuery) (*models.UserPage, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "UserService.ListUsers")
	defer span.End()

	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	counts := map[string]int{"all": 0}
	for _, role := range models.Roles {
		counts[role] = 0
	}

	filtered := make([]models.User, 0, len(all))
	for _, u := range all {
		if !matchesSearch(term, u.UserName, u.Email) {
			continue
		}
		counts["all"]++
		counts[strings.ToLower(u.Role)]++
		if matchesRole(q.Role, u) {
			filtered = append(filtered, u)
		}
	}

	meta, start, end := models.Paginate(len(filtered), q.Page, s.config.UsersPageSize)
	span.SetAttributes(
		attribute.Int("users.total", len(all)),
		attribute.Int("users.filtered", len(filtered)),
	)

	return &models.UserPage{
		Users:      filtered[start:end],
		Pagination: meta,
		RoleCounts: counts,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, userName string) (*models.UserDetails, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "UserService.GetUser")
	defer span.End()

	user, err := s.fetchUser(ctx, userName)
	if err != nil {
		return nil, err
	}

	details := &models.UserDetails{User: *user, Status: user.Status()}
	if strings.TrimSpace(user.NIC) != "" {
		derived := deriveDetails(user.NIC, s.now())
		details.Derived = &derived
	}
	return details, nil
}

func (s *UserService) UpdateRole(ctx context.Context, actor, userName, role string) error {
	ctx, span := otel.Tracer("service").Start(ctx, "UserService.UpdateRole")
	defer span.End()

	role = strings.ToLower(strings.TrimSpace(role))
	if !isRole(role) {
		return ErrInvalidRole
	}

	if err := s.users.UpdateUser(ctx, userName, map[string]string{"role": role}); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}

	recordAudit(ctx, s.audit, s.logger, s.now(), actor, models.ActionUpdateRole, userName, map[string]any{"role": role})
	return nil
}

func (s *UserService) ToggleBlock(ctx context.Context, actor, userName string) (*models.BlockStatus, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "UserService.ToggleBlock")
	defer span.End()

	before, err := s.fetchUser(ctx, userName)
	if err != nil {
		return nil, err
	}

	if err := s.users.ToggleBlock(ctx, userName); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("toggle block: %w", err)
	}

	blocked := !before.IsBlocked
	if after, err := s.users.GetUser(ctx, userName); err == nil {
		blocked = after.IsBlocked
	} else {
		s.logger.Warn().Err(err).Str("user", userName).Msg("Could not read back block status, assuming toggled")
	}

	status := &models.BlockStatus{UserName: userName, IsBlocked: blocked, Status: "Active"}
	if blocked {
		status.Status = "Blocked"
	}

	recordAudit(ctx, s.audit, s.logger, s.now(), actor, models.ActionToggleBlock, userName, map[string]any{"blocked": blocked})
	return status, nil
}

func (s *UserService) fetchUser(ctx context.Context, userName string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userName)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// matchesSearch reports whether any field contains term. term must already be
// lowercase; an empty term matches everything.
func matchesSearch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func matchesRole(filter string, u models.User) bool {
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "", "all", "all roles":
		return true
	}
	return u.HasRole(strings.TrimSpace(filter))
}

func isRole(role string) bool {
	for _, r := range models.Roles {
		if r == role {
			return true
		}
	}
	return false
}
