package mocks

import (
	"context"

	"uniadmin-console/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of core.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, q models.UserQuery) (*models.UserPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPage), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userName string) (*models.UserDetails, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserDetails), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, actor, userName, role string) error {
	return m.Called(ctx, actor, userName, role).Error(0)
}

func (m *MockUserService) ToggleBlock(ctx context.Context, actor, userName string) (*models.BlockStatus, error) {
	args := m.Called(ctx, actor, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlockStatus), args.Error(1)
}

// MockVacancyService is a mock implementation of core.VacancyService
type MockVacancyService struct {
	mock.Mock
}

func (m *MockVacancyService) ListVacancies(ctx context.Context, q models.VacancyQuery) (*models.VacancyPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VacancyPage), args.Error(1)
}

func (m *MockVacancyService) GetVacancy(ctx context.Context, id string) (*models.Vacancy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacancy), args.Error(1)
}

func (m *MockVacancyService) CreateVacancy(ctx context.Context, actor string, req models.VacancyRequest) (*models.Vacancy, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacancy), args.Error(1)
}

func (m *MockVacancyService) UpdateVacancy(ctx context.Context, actor, id string, req models.VacancyRequest) (*models.Vacancy, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacancy), args.Error(1)
}

func (m *MockVacancyService) ToggleVisibility(ctx context.Context, actor, id string) (*models.Vacancy, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacancy), args.Error(1)
}

// MockProfileService is a mock implementation of core.ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, userName string) (*models.AdminProfile, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminProfile), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, actor, currentUserName string, req models.UpdateProfileRequest) (*models.AdminProfile, error) {
	args := m.Called(ctx, actor, currentUserName, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminProfile), args.Error(1)
}

func (m *MockProfileService) UpdateImage(ctx context.Context, actor, userName, dataURL string) error {
	return m.Called(ctx, actor, userName, dataURL).Error(0)
}

func (m *MockProfileService) DecodeNIC(ctx context.Context, number string) models.DerivedDetails {
	return m.Called(ctx, number).Get(0).(models.DerivedDetails)
}
