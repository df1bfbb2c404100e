package service

import (
	"context"
	"testing"
	"time"

	"uniadmin-console/internal/backend"
	"uniadmin-console/internal/core"
	"uniadmin-console/internal/mocks"
	"uniadmin-console/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProfileService(users *mocks.MockUserGateway, audit core.AuditRepository) *ProfileService {
	svc := NewProfileService(users, audit, zerolog.Nop()).(*ProfileService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("DerivesFromNIC", func(t *testing.T) {
		users := new(mocks.MockUserGateway)
		users.On("GetUser", mock.Anything, "kamal").
			Return(&models.User{UserName: "kamal", Email: "kamal@uni.lk", NIC: "905634567V", Img: "data:image/png;base64,AA=="}, nil).Once()
		svc := newProfileService(users, nil)

		profile, err := svc.GetProfile(ctx, "kamal")

		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,AA==", profile.ProfileImage)
		assert.Equal(t, models.DerivedDetails{Birthday: "1990-03-04", Age: "36", Gender: "Female", Valid: true}, profile.Derived)
	})

	t.Run("PlaceholdersAndDefaultAvatar", func(t *testing.T) {
		users := new(mocks.MockUserGateway)
		users.On("GetUser", mock.Anything, "kamal").
			Return(&models.User{UserName: "kamal", NIC: "12345"}, nil).Once()
		svc := newProfileService(users, nil)

		profile, err := svc.GetProfile(ctx, "kamal")

		require.NoError(t, err)
		assert.Equal(t, DefaultAvatar, profile.ProfileImage)
		assert.Equal(t, models.EmptyDerivedDetails(), profile.Derived)
	})

	t.Run("NotFound", func(t *testing.T) {
		users := new(mocks.MockUserGateway)
		users.On("GetUser", mock.Anything, "ghost").Return(nil, &backend.APIError{StatusCode: 404}).Once()
		svc := newProfileService(users, nil)

		_, err := svc.GetProfile(ctx, "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidNICSendsDerivedFields", func(t *testing.T) {
		users := new(mocks.MockUserGateway)
		audit := new(mocks.MockAuditRepository)
		users.On("UpdateUser", mock.Anything, "kamal", mock.MatchedBy(func(p models.ProfileUpdatePayload) bool {
			return p.UserName == "kamal2" && p.ID == "199012345678" && p.Img == "data:x" &&
				p.Age != nil && *p.Age == 36 &&
				p.Gender != nil && *p.Gender == "Male" &&
				p.Birthday != nil && *p.Birthday == "1990-05-03"
		})).Return(nil).Once()
		audit.On("Record", mock.Anything, mock.MatchedBy(func(e *models.AuditEntry) bool {
			return e.Action == models.ActionUpdateProfile && e.Details["renamed_to"] == "kamal2"
		})).Return(nil).Once()
		svc := newProfileService(users, audit)

		profile, err := svc.UpdateProfile(ctx, "kamal", "kamal", models.UpdateProfileRequest{
			Username:     "kamal2",
			Email:        " kamal@uni.lk ",
			NIC:          "199012345678",
			ProfileImage: "data:x",
		})

		require.NoError(t, err)
		assert.Equal(t, "kamal2", profile.Username)
		assert.Equal(t, "kamal@uni.lk", profile.Email)
		assert.True(t, profile.Derived.Valid)
		users.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("ApostropheSurvivesAndActorRecorded", func(t *testing.T) {
		users := new(mocks.MockUserGateway)
		audit := new(mocks.MockAuditRepository)
		users.On("UpdateUser", mock.Anything, "oneil", mock.MatchedBy(func(p models.ProfileUpdatePayload) bool {
			return p.UserName == "o'neil"
		})).Return(nil).Once()
		audit.On("Record", mock.Anything, mock.MatchedBy(func(e *models.AuditEntry) bool {
			return e.Actor == "kamal" && e.Target == "oneil" && e.Details["renamed_to"] == "o'neil"
		})).Return(nil).Once()
		svc := newProfileService(users, audit)

		profile, err := svc.UpdateProfile(ctx, "kamal", "oneil", models.UpdateProfileRequest{
			Username:     "o'neil",
			Email:        "oneil@uni.lk",
			ProfileImage: "data:x",
		})

		require.NoError(t, err)
		assert.Equal(t, "o'neil", profile.Username)
		users.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("EmptyImageKeepsExisting", func(t *testing.T) {
		users := new(mocks.MockUserGateway)
		users.On("GetUser", mock.Anything, "kamal").Return(&models.User{UserName: "kamal", Img: "data:old"}, nil).Once()
		users.On("UpdateUser", mock.Anything, "kamal", mock.MatchedBy(func(p models.ProfileUpdatePayload) bool {
			return p.Img == "data:old" && p.Age == nil && p.Gender == nil && p.Birthday == nil
		})).Return(nil).Once()
		svc := newProfileService(users, nil)

		profile, err := svc.UpdateProfile(ctx, "kamal", "kamal", models.UpdateProfileRequest{Username: "kamal", Email: "k@uni.lk"})

		require.NoError(t, err)
		assert.Equal(t, "data:old", profile.ProfileImage)
		assert.Equal(t, models.EmptyDerivedDetails(), profile.Derived)
		users.AssertExpectations(t)
	})
}

func TestUpdateImage(t *testing.T) {
	ctx := context.Background()

	users := new(mocks.MockUserGateway)
	audit := new(mocks.MockAuditRepository)
	users.On("GetUser", mock.Anything, "kamal").
		Return(&models.User{UserName: "kamal", Email: "kamal@uni.lk", NIC: "901234567V"}, nil).Once()
	users.On("UpdateUser", mock.Anything, "kamal", mock.MatchedBy(func(p models.ProfileUpdatePayload) bool {
		return p.Img == "data:image/png;base64,AA==" && p.Email == "kamal@uni.lk" && p.Age != nil
	})).Return(nil).Once()
	audit.On("Record", mock.Anything, mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.Action == models.ActionUpdateProfileImage && e.Target == "kamal"
	})).Return(nil).Once()
	svc := newProfileService(users, audit)

	require.NoError(t, svc.UpdateImage(ctx, "kamal", "kamal", "data:image/png;base64,AA=="))
	users.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestDecodeNIC(t *testing.T) {
	svc := newProfileService(new(mocks.MockUserGateway), nil)

	assert.Equal(t, models.DerivedDetails{Birthday: "2000-12-31", Age: "25", Gender: "Male", Valid: true},
		svc.DecodeNIC(context.Background(), "200036612345"))
	assert.Equal(t, models.EmptyDerivedDetails(), svc.DecodeNIC(context.Background(), "199036612345"))
	assert.Equal(t, models.EmptyDerivedDetails(), svc.DecodeNIC(context.Background(), ""))
}
