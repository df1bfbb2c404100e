package core

import (
	"context"

	"uniadmin-console/internal/models"
)

// UserGateway is the backend's user API.
type UserGateway interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, userName string) (*models.User, error)
	UpdateUser(ctx context.Context, userName string, body any) error
	ToggleBlock(ctx context.Context, userName string) error
}

// VacancyGateway is the backend's job API.
type VacancyGateway interface {
	ListJobs(ctx context.Context) ([]models.Vacancy, error)
	GetJob(ctx context.Context, id string) (*models.Vacancy, error)
	CreateJob(ctx context.Context, job *models.Vacancy) error
	UpdateJob(ctx context.Context, id string, job *models.Vacancy) error
	SetJobAvailability(ctx context.Context, id string, available bool) error
}

// AuditRepository stores the admin action trail.
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// UserService defines the user management logic.
type UserService interface {
	ListUsers(ctx context.Context, q models.UserQuery) (*models.UserPage, error)
	GetUser(ctx context.Context, userName string) (*models.UserDetails, error)
	UpdateRole(ctx context.Context, actor, userName, role string) error
	ToggleBlock(ctx context.Context, actor, userName string) (*models.BlockStatus, error)
}

// VacancyService defines the job posting logic.
type VacancyService interface {
	ListVacancies(ctx context.Context, q models.VacancyQuery) (*models.VacancyPage, error)
	GetVacancy(ctx context.Context, id string) (*models.Vacancy, error)
	CreateVacancy(ctx context.Context, actor string, req models.VacancyRequest) (*models.Vacancy, error)
	UpdateVacancy(ctx context.Context, actor, id string, req models.VacancyRequest) (*models.Vacancy, error)
	ToggleVisibility(ctx context.Context, actor, id string) (*models.Vacancy, error)
}

// ProfileService defines the admin profile logic.
type ProfileService interface {
	GetProfile(ctx context.Context, userName string) (*models.AdminProfile, error)
	UpdateProfile(ctx context.Context, actor, currentUserName string, req models.UpdateProfileRequest) (*models.AdminProfile, error)
	UpdateImage(ctx context.Context, actor, userName, dataURL string) error
	DecodeNIC(ctx context.Context, number string) models.DerivedDetails
}
