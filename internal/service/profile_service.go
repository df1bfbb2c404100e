package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"uniadmin-console/internal/backend"
	"uniadmin-console/internal/core"
	"uniadmin-console/internal/models"
	"uniadmin-console/internal/nic"
	"uniadmin-console/internal/validation"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

// DefaultAvatar is shown until the admin uploads a picture.
const DefaultAvatar = "https://avatar.iran.liara.run/public/boy?username=Admin"

type ProfileService struct {
	users  core.UserGateway
	audit  core.AuditRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewProfileService(users core.UserGateway, audit core.AuditRepository, logger zerolog.Logger) core.ProfileService {
	return &ProfileService{users: users, audit: audit, logger: logger, now: time.Now}
}

func (s *ProfileService) GetProfile(ctx context.Context, userName string) (*models.AdminProfile, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "ProfileService.GetProfile")
	defer span.End()

	user, err := s.fetchUser(ctx, userName)
	if err != nil {
		return nil, err
	}

	img := user.Img
	if img == "" {
		img = DefaultAvatar
	}

	return &models.AdminProfile{
		Username:     user.UserName,
		Email:        user.Email,
		NIC:          user.NIC,
		ProfileImage: img,
		Derived:      s.DecodeNIC(ctx, user.NIC),
	}, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, actor, currentUserName string, req models.UpdateProfileRequest) (*models.AdminProfile, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "ProfileService.UpdateProfile")
	defer span.End()

	img := req.ProfileImage
	if img == "" {
		existing, err := s.fetchUser(ctx, currentUserName)
		if err != nil {
			return nil, err
		}
		img = existing.Img
	}

	profile := &models.AdminProfile{
		Username:     validation.SanitizeString(req.Username),
		Email:        strings.TrimSpace(req.Email),
		NIC:          strings.TrimSpace(req.NIC),
		ProfileImage: img,
	}
	profile.Derived = s.DecodeNIC(ctx, profile.NIC)

	payload := buildPayload(profile, s.now())
	if err := s.users.UpdateUser(ctx, currentUserName, payload); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	details := map[string]any{"email": profile.Email, "nic_valid": profile.Derived.Valid}
	if profile.Username != currentUserName {
		details["renamed_to"] = profile.Username
	}
	recordAudit(ctx, s.audit, s.logger, s.now(), actor, models.ActionUpdateProfile, currentUserName, details)

	if profile.ProfileImage == "" {
		profile.ProfileImage = DefaultAvatar
	}
	return profile, nil
}

func (s *ProfileService) UpdateImage(ctx context.Context, actor, userName, dataURL string) error {
	ctx, span := otel.Tracer("service").Start(ctx, "ProfileService.UpdateImage")
	defer span.End()

	user, err := s.fetchUser(ctx, userName)
	if err != nil {
		return err
	}

	profile := &models.AdminProfile{
		Username:     user.UserName,
		Email:        user.Email,
		NIC:          user.NIC,
		ProfileImage: dataURL,
	}
	profile.Derived = s.DecodeNIC(ctx, user.NIC)

	if err := s.users.UpdateUser(ctx, userName, buildPayload(profile, s.now())); err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}

	recordAudit(ctx, s.audit, s.logger, s.now(), actor, models.ActionUpdateProfileImage, userName,
		map[string]any{"bytes": len(dataURL)})
	return nil
}

// DecodeNIC derives birthday, age and gender, falling back to placeholders.
func (s *ProfileService) DecodeNIC(_ context.Context, number string) models.DerivedDetails {
	return deriveDetails(number, s.now())
}

func (s *ProfileService) fetchUser(ctx context.Context, userName string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userName)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func deriveDetails(number string, today time.Time) models.DerivedDetails {
	if strings.TrimSpace(number) == "" {
		return models.EmptyDerivedDetails()
	}
	id, err := nic.Parse(number, today)
	if err != nil {
		return models.EmptyDerivedDetails()
	}
	return models.DerivedDetails{
		Birthday: id.BirthdayString(),
		Age:      strconv.Itoa(id.Age),
		Gender:   string(id.Gender),
		Valid:    true,
	}
}

// buildPayload maps a profile onto the backend's user document. Derived
// fields are sent as null unless the NIC decoded.
func buildPayload(p *models.AdminProfile, today time.Time) models.ProfileUpdatePayload {
	payload := models.ProfileUpdatePayload{
		UserName: p.Username,
		Email:    p.Email,
		ID:       p.NIC,
		Img:      p.ProfileImage,
	}
	if p.NIC == "" {
		return payload
	}
	if id, err := nic.Parse(p.NIC, today); err == nil {
		age := id.Age
		gender := string(id.Gender)
		birthday := id.BirthdayString()
		payload.Age = &age
		payload.Gender = &gender
		payload.Birthday = &birthday
	}
	return payload
}
