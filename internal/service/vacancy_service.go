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
	"uniadmin-console/internal/validation"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrVacancyNotFound = errors.New("vacancy not found")
	ErrInvalidDeadline = errors.New("invalid deadline")
)

const deadlineLayout = "2006-01-02"

type VacancyService struct {
	jobs   core.VacancyGateway
	audit  core.AuditRepository
	config *config.Config
	logger zerolog.Logger
	now    func() time.Time
}

func NewVacancyService(jobs core.VacancyGateway, audit core.AuditRepository, cfg *config.Config, logger zerolog.Logger) core.VacancyService {
	return &VacancyService{jobs: jobs, audit: audit, config: cfg, logger: logger, now: time.Now}
}

func (s *VacancyService) ListVacancies(ctx context.Context, q models.VacancyQuery) (*models.VacancyPage, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "VacancyService.ListVacancies")
	defer span.End()

	all, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	status := strings.ToLower(strings.TrimSpace(q.Status))

	filtered := make([]models.Vacancy, 0, len(all))
	for _, v := range all {
		if !matchesSearch(term, v.JobRole, v.Department, v.Faculty, v.Location) {
			continue
		}
		switch status {
		case "active":
			if !v.IsAvailable {
				continue
			}
		case "hidden":
			if v.IsAvailable {
				continue
			}
		}
		filtered = append(filtered, v)
	}

	meta, start, end := models.Paginate(len(filtered), q.Page, s.config.VacanciesPageSize)
	span.SetAttributes(attribute.Int("vacancies.filtered", len(filtered)))

	return &models.VacancyPage{Vacancies: filtered[start:end], Pagination: meta}, nil
}

func (s *VacancyService) GetVacancy(ctx context.Context, id string) (*models.Vacancy, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "VacancyService.GetVacancy")
	defer span.End()
	span.SetAttributes(attribute.String("vacancy.id", id))

	v, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrVacancyNotFound
		}
		return nil, fmt.Errorf("get vacancy: %w", err)
	}
	return v, nil
}

func (s *VacancyService) CreateVacancy(ctx context.Context, actor string, req models.VacancyRequest) (*models.Vacancy, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "VacancyService.CreateVacancy")
	defer span.End()

	v := &models.Vacancy{
		JobID:       fmt.Sprintf("JOB-%d", s.now().UnixMilli()),
		IsAvailable: true,
	}
	if err := applyRequest(v, req); err != nil {
		return nil, err
	}

	if err := s.jobs.CreateJob(ctx, v); err != nil {
		return nil, fmt.Errorf("create vacancy: %w", err)
	}

	recordAudit(ctx, s.audit, s.logger, s.now(), actor, models.ActionCreateVacancy, v.JobID,
		map[string]any{"jobRole": v.JobRole})
	return v, nil
}

func (s *VacancyService) UpdateVacancy(ctx context.Context, actor, id string, req models.VacancyRequest) (*models.Vacancy, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "VacancyService.UpdateVacancy")
	defer span.End()

	existing, err := s.GetVacancy(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := &models.Vacancy{
		ID:          existing.ID,
		JobID:       existing.JobID,
		IsAvailable: existing.IsAvailable,
	}
	if err := applyRequest(updated, req); err != nil {
		return nil, err
	}

	if err := s.jobs.UpdateJob(ctx, id, updated); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrVacancyNotFound
		}
		return nil, fmt.Errorf("update vacancy: %w", err)
	}

	recordAudit(ctx, s.audit, s.logger, s.now(), actor, models.ActionUpdateVacancy, updated.JobID,
		map[string]any{"jobRole": updated.JobRole})
	return updated, nil
}

func (s *VacancyService) ToggleVisibility(ctx context.Context, actor, id string) (*models.Vacancy, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "VacancyService.ToggleVisibility")
	defer span.End()

	v, err := s.GetVacancy(ctx, id)
	if err != nil {
		return nil, err
	}

	available := !v.IsAvailable
	if err := s.jobs.SetJobAvailability(ctx, id, available); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrVacancyNotFound
		}
		return nil, fmt.Errorf("toggle visibility: %w", err)
	}
	v.IsAvailable = available

	recordAudit(ctx, s.audit, s.logger, s.now(), actor, models.ActionToggleVisibility, v.JobID,
		map[string]any{"status": v.Status()})
	return v, nil
}

// applyRequest copies the form onto v, filling the form defaults and
// stripping markup from free text.
func applyRequest(v *models.Vacancy, req models.VacancyRequest) error {
	v.JobRole = validation.SanitizeString(req.JobRole)
	v.Department = validation.SanitizeString(req.Department)
	v.JobDescription = validation.SanitizeString(req.JobDescription)
	v.JobResponsibilities = validation.SanitizeString(req.JobResponsibilities)
	v.JobQualifications = validation.SanitizeString(req.JobQualifications)

	v.Location = orDefault(req.Location, models.DefaultLocation)
	v.Faculty = orDefault(req.Faculty, models.DefaultFaculty)
	v.JobType = orDefault(req.JobType, models.DefaultJobType)

	v.Salary = 0
	if req.Salary != nil {
		v.Salary = *req.Salary
	}
	if req.IsAvailable != nil {
		v.IsAvailable = *req.IsAvailable
	}

	v.Deadline = nil
	if req.Deadline != "" {
		deadline, err := time.Parse(deadlineLayout, req.Deadline)
		if err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidDeadline, req.Deadline, err)
		}
		v.Deadline = &deadline
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
