package service

import (
	"context"
	"fmt"

	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/repository"
)

var ErrUserNotFound = repository.ErrUserNotFound

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdateRole(ctx context.Context, userID uint, role domain.Role) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// ProfileUpdate carries the editable profile fields. Role and email are
// deliberately absent.
type ProfileUpdate struct {
	Name        string
	Avatar      string
	Bio         string
	Faculty     string
	Year        string
	Major       string
	LinkedinURL string
	Diet        []string
	Interests   []string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.Name = update.Name
	user.Avatar = update.Avatar
	user.Bio = update.Bio
	user.Faculty = update.Faculty
	user.Year = update.Year
	user.Major = update.Major
	user.LinkedinURL = update.LinkedinURL
	user.Diet = update.Diet
	user.Interests = update.Interests

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// CompleteOnboarding applies the onboarding answers and marks the flow
// done. Calling it again simply overwrites the same fields.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID uint, update ProfileUpdate) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.Name = update.Name
	user.Faculty = update.Faculty
	user.Year = update.Year
	user.Major = update.Major
	user.Diet = update.Diet
	user.Interests = update.Interests
	user.OnboardingComplete = true

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}
