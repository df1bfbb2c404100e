package mocks

import (
	"context"

	"uniadmin-console/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserGateway is a mock implementation of core.UserGateway
type MockUserGateway struct {
	mock.Mock
}

func (m *MockUserGateway) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserGateway) GetUser(ctx context.Context, userName string) (*models.User, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserGateway) UpdateUser(ctx context.Context, userName string, body any) error {
	return m.Called(ctx, userName, body).Error(0)
}

func (m *MockUserGateway) ToggleBlock(ctx context.Context, userName string) error {
	return m.Called(ctx, userName).Error(0)
}

// MockVacancyGateway is a mock implementation of core.VacancyGateway
type MockVacancyGateway struct {
	mock.Mock
}

func (m *MockVacancyGateway) ListJobs(ctx context.Context) ([]models.Vacancy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vacancy), args.Error(1)
}

func (m *MockVacancyGateway) GetJob(ctx context.Context, id string) (*models.Vacancy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacancy), args.Error(1)
}

func (m *MockVacancyGateway) CreateJob(ctx context.Context, job *models.Vacancy) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockVacancyGateway) UpdateJob(ctx context.Context, id string, job *models.Vacancy) error {
	return m.Called(ctx, id, job).Error(0)
}

func (m *MockVacancyGateway) SetJobAvailability(ctx context.Context, id string, available bool) error {
	return m.Called(ctx, id, available).Error(0)
}

// MockAuditRepository is a mock implementation of core.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEntry), args.Error(1)
}
