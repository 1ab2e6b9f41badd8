package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/pkg/auth"
)

const referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// Register creates an account with a freshly generated referral code. When
// the signup carries a referral code the matching user becomes the
// referrer; otherwise the company root does.
func (s *UserService) Register(ctx context.Context, reg *model.Registration) (*model.User, error) {
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var referrerID *int64
	if reg.ReferralCode != nil && strings.TrimSpace(*reg.ReferralCode) != "" {
		referrer, err := s.repo.GetUserByReferralCode(ctx, strings.TrimSpace(*reg.ReferralCode))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
		referrerID = &referrer.ID
	} else {
		root, err := s.repo.GetCompanyRoot(ctx)
		if err != nil && !errors.Is(err, repository.ErrNoRootAccount) {
			return nil, fmt.Errorf("failed to resolve company root: %w", err)
		}
		// The very first registered account has no one to hang off.
		if err == nil {
			referrerID = &root.ID
		}
	}

	code, err := s.generateReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     reg.Username,
		Email:        reg.Email,
		MobileNumber: reg.MobileNumber,
		PasswordHash: hash,
		ReferralCode: code,
		ReferrerID:   referrerID,
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, update *model.ProfileUpdate) (*model.User, error) {
	user, err := s.repo.UpdateUserProfile(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) GetReferrer(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	if user.ReferrerID == nil {
		return nil, nil
	}

	referrer, err := s.repo.GetUserByID(ctx, *user.ReferrerID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return referrer, nil
}

// SetReferrer assigns a referrer once for a user that has none. A nil code
// assigns the company root. Re-parenting is rejected.
func (s *UserService) SetReferrer(ctx context.Context, userID int64, referralCode *string) (*model.User, error) {
	var referrer *model.User
	var err error

	if referralCode != nil && strings.TrimSpace(*referralCode) != "" {
		referrer, err = s.repo.GetUserByReferralCode(ctx, strings.TrimSpace(*referralCode))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
	} else {
		referrer, err = s.repo.GetCompanyRoot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve company root: %w", err)
		}
	}

	if referrer.ID == userID {
		return nil, ErrInvalidReferralCode
	}

	err = s.repo.SetReferrer(ctx, userID, referrer.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrAlreadyReferred):
			return nil, ErrAlreadyReferred
		default:
			return nil, fmt.Errorf("failed to set referrer: %w", err)
		}
	}

	return referrer, nil
}

// generateReferralCode draws XXX-XXX-XXX codes until one is unused.
func (s *UserService) generateReferralCode(ctx context.Context) (string, error) {
	for {
		var b strings.Builder
		for i := 0; i < 9; i++ {
			b.WriteByte(referralCodeCharset[rand.Intn(len(referralCodeCharset))])
			if (i+1)%3 == 0 && i != 8 {
				b.WriteByte('-')
			}
		}
		code := b.String()

		exists, err := s.repo.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check referral code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
}
