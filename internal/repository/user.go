package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	Update(ctx context.Context, user dao.User) (dao.User, error)
	UpdateRole(ctx context.Context, userID uint, role string) error
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID uint, role domain.Role) error {
	if err := r.dao.UpdateRole(ctx, userID, string(role)); err != nil {
		return fmt.Errorf("r.dao.UpdateRole -> %w", err)
	}

	return nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:                 u.ID,
		Email:              u.Email,
		Password:           u.Password,
		Name:               u.Name,
		Role:               domain.Role(u.Role),
		Avatar:             u.Avatar,
		Bio:                u.Bio,
		Faculty:            u.Faculty,
		Year:               u.Year,
		Major:              u.Major,
		LinkedinURL:        u.LinkedinURL,
		Diet:               splitList(u.Diet),
		Interests:          splitList(u.Interests),
		OnboardingComplete: u.OnboardingComplete,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (r *UserRepository) domainToDAO(u domain.User) dao.User {
	return dao.User{
		ID:                 u.ID,
		Email:              u.Email,
		Password:           u.Password,
		Name:               u.Name,
		Role:               string(u.Role),
		Avatar:             u.Avatar,
		Bio:                u.Bio,
		Faculty:            u.Faculty,
		Year:               u.Year,
		Major:              u.Major,
		LinkedinURL:        u.LinkedinURL,
		Diet:               joinList(u.Diet),
		Interests:          joinList(u.Interests),
		OnboardingComplete: u.OnboardingComplete,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}
