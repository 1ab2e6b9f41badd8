package service

import (
	"context"
	"testing"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/internal/service/mocks"
	"SJ_storefront_backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_Register(t *testing.T) {
	t.Run("With referral code", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByReferralCode", mock.Anything, "ABC-DEF-GHI").
			Return(&model.User{ID: 7, ReferralCode: "ABC-DEF-GHI"}, nil)
		mockRepo.On("ReferralCodeExists", mock.Anything, mock.AnythingOfType("string")).
			Return(false, nil)
		mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.ReferrerID != nil && *u.ReferrerID == 7
		})).Return(nil)

		service := NewUserService(mockRepo)
		code := "ABC-DEF-GHI"
		user, err := service.Register(context.Background(), &model.Registration{
			Username:     "priya",
			Email:        "priya@example.com",
			MobileNumber: "9876543210",
			Password:     "secret123",
			ReferralCode: &code,
		})

		assert.NoError(t, err)
		assert.NotNil(t, user.ReferrerID)
		assert.Equal(t, int64(7), *user.ReferrerID)
		// stored hash must verify against the raw password
		assert.NoError(t, auth.ComparePassword(user.PasswordHash, "secret123"))
		assert.Regexp(t, `^[A-Z0-9]{3}-[A-Z0-9]{3}-[A-Z0-9]{3}$`, user.ReferralCode)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Without referral code defaults to the company root", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetCompanyRoot", mock.Anything).
			Return(&model.User{ID: 1}, nil)
		mockRepo.On("ReferralCodeExists", mock.Anything, mock.AnythingOfType("string")).
			Return(false, nil)
		mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.ReferrerID != nil && *u.ReferrerID == 1
		})).Return(nil)

		service := NewUserService(mockRepo)
		user, err := service.Register(context.Background(), &model.Registration{
			Username:     "arun",
			Email:        "arun@example.com",
			MobileNumber: "9876543211",
			Password:     "secret123",
		})

		assert.NoError(t, err)
		assert.NotNil(t, user.ReferrerID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("First account has no referrer", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetCompanyRoot", mock.Anything).
			Return(nil, repository.ErrNoRootAccount)
		mockRepo.On("ReferralCodeExists", mock.Anything, mock.AnythingOfType("string")).
			Return(false, nil)
		mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.ReferrerID == nil
		})).Return(nil)

		service := NewUserService(mockRepo)
		user, err := service.Register(context.Background(), &model.Registration{
			Username:     "owner",
			Email:        "owner@example.com",
			MobileNumber: "9876543212",
			Password:     "secret123",
		})

		assert.NoError(t, err)
		assert.Nil(t, user.ReferrerID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown referral code", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByReferralCode", mock.Anything, "NON-EXI-STS").
			Return(nil, repository.ErrNotFound)

		service := NewUserService(mockRepo)
		code := "NON-EXI-STS"
		_, err := service.Register(context.Background(), &model.Registration{
			Username:     "x",
			Email:        "x@example.com",
			MobileNumber: "9876543213",
			Password:     "secret123",
			ReferralCode: &code,
		})

		assert.ErrorIs(t, err, ErrInvalidReferralCode)
	})

	t.Run("Duplicate email or mobile", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetCompanyRoot", mock.Anything).
			Return(&model.User{ID: 1}, nil)
		mockRepo.On("ReferralCodeExists", mock.Anything, mock.AnythingOfType("string")).
			Return(false, nil)
		mockRepo.On("CreateUser", mock.Anything, mock.Anything).
			Return(repository.ErrAlreadyExists)

		service := NewUserService(mockRepo)
		_, err := service.Register(context.Background(), &model.Registration{
			Username:     "dup",
			Email:        "dup@example.com",
			MobileNumber: "9876543214",
			Password:     "secret123",
		})

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestUserService_Login(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	assert.NoError(t, err)

	t.Run("Valid credentials", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByEmail", mock.Anything, "priya@example.com").
			Return(&model.User{ID: 2, Email: "priya@example.com", PasswordHash: hash}, nil)

		service := NewUserService(mockRepo)
		user, err := service.Login(context.Background(), "priya@example.com", "secret123")

		assert.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByEmail", mock.Anything, "priya@example.com").
			Return(&model.User{ID: 2, PasswordHash: hash}, nil)

		service := NewUserService(mockRepo)
		_, err := service.Login(context.Background(), "priya@example.com", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
			Return(nil, repository.ErrNotFound)

		service := NewUserService(mockRepo)
		_, err := service.Login(context.Background(), "nobody@example.com", "secret123")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_SetReferrer(t *testing.T) {
	t.Run("By referral code", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByReferralCode", mock.Anything, "ABC-DEF-GHI").
			Return(&model.User{ID: 7}, nil)
		mockRepo.On("SetReferrer", mock.Anything, int64(3), int64(7)).
			Return(nil)

		service := NewUserService(mockRepo)
		code := "ABC-DEF-GHI"
		referrer, err := service.SetReferrer(context.Background(), 3, &code)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), referrer.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Nil code falls back to the company root", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetCompanyRoot", mock.Anything).
			Return(&model.User{ID: 1}, nil)
		mockRepo.On("SetReferrer", mock.Anything, int64(3), int64(1)).
			Return(nil)

		service := NewUserService(mockRepo)
		referrer, err := service.SetReferrer(context.Background(), 3, nil)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), referrer.ID)
	})

	t.Run("Self referral rejected", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByReferralCode", mock.Anything, "ABC-DEF-GHI").
			Return(&model.User{ID: 3}, nil)

		service := NewUserService(mockRepo)
		code := "ABC-DEF-GHI"
		_, err := service.SetReferrer(context.Background(), 3, &code)

		assert.ErrorIs(t, err, ErrInvalidReferralCode)
	})

	t.Run("Already referred", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByReferralCode", mock.Anything, "ABC-DEF-GHI").
			Return(&model.User{ID: 7}, nil)
		mockRepo.On("SetReferrer", mock.Anything, int64(3), int64(7)).
			Return(repository.ErrAlreadyReferred)

		service := NewUserService(mockRepo)
		code := "ABC-DEF-GHI"
		_, err := service.SetReferrer(context.Background(), 3, &code)

		assert.ErrorIs(t, err, ErrAlreadyReferred)
	})
}

func TestUserService_GetReferrer(t *testing.T) {
	t.Run("No referrer yields nil", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByID", mock.Anything, int64(1)).
			Return(&model.User{ID: 1}, nil)

		service := NewUserService(mockRepo)
		referrer, err := service.GetReferrer(context.Background(), 1)

		assert.NoError(t, err)
		assert.Nil(t, referrer)
	})

	t.Run("Referrer resolves", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("GetUserByID", mock.Anything, int64(2)).
			Return(&model.User{ID: 2, ReferrerID: ptrInt64(1)}, nil)
		mockRepo.On("GetUserByID", mock.Anything, int64(1)).
			Return(&model.User{ID: 1, Username: "root"}, nil)

		service := NewUserService(mockRepo)
		referrer, err := service.GetReferrer(context.Background(), 2)

		assert.NoError(t, err)
		assert.Equal(t, "root", referrer.Username)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	update := &model.ProfileUpdate{
		Username:     "priya",
		Email:        "priya@example.com",
		MobileNumber: "9876543210",
	}

	t.Run("Successful update", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("UpdateUserProfile", mock.Anything, int64(2), update).
			Return(&model.User{ID: 2, Username: "priya"}, nil)

		service := NewUserService(mockRepo)
		user, err := service.UpdateProfile(context.Background(), 2, update)

		assert.NoError(t, err)
		assert.Equal(t, "priya", user.Username)
	})

	t.Run("Taken email or mobile", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("UpdateUserProfile", mock.Anything, int64(2), update).
			Return(nil, repository.ErrAlreadyExists)

		service := NewUserService(mockRepo)
		_, err := service.UpdateProfile(context.Background(), 2, update)

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("Unknown user", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("UpdateUserProfile", mock.Anything, int64(99), update).
			Return(nil, repository.ErrNotFound)

		service := NewUserService(mockRepo)
		_, err := service.UpdateProfile(context.Background(), 99, update)

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
