package repository

import (
	"context"
	"fmt"

	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/repository/dao"
)

var ErrJobNotFound = dao.ErrJobNotFound

type JobDAO interface {
	Insert(ctx context.Context, job dao.Job) (dao.Job, error)
	FindByID(ctx context.Context, id uint) (dao.Job, error)
	FindAll(ctx context.Context) ([]dao.Job, error)
	Delete(ctx context.Context, id uint) error
}

type JobRepository struct {
	dao JobDAO
}

func NewJobRepository(dao JobDAO) *JobRepository {
	return &JobRepository{
		dao: dao,
	}
}

func (r *JobRepository) Create(ctx context.Context, job domain.Job) (domain.Job, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(job))
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uint) (domain.Job, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *JobRepository) FindAll(ctx context.Context) ([]domain.Job, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	jobs := make([]domain.Job, len(found))
	for i, job := range found {
		jobs[i] = r.daoToDomain(job)
	}

	return jobs, nil
}

func (r *JobRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *JobRepository) daoToDomain(j dao.Job) domain.Job {
	return domain.Job{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Type:        domain.JobType(j.Type),
		Description: j.Description,
		ApplyURL:    j.ApplyURL,
		PostedByID:  j.PostedByID,
		ExpiresAt:   j.ExpiresAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func (r *JobRepository) domainToDAO(j domain.Job) dao.Job {
	return dao.Job{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Type:        string(j.Type),
		Description: j.Description,
		ApplyURL:    j.ApplyURL,
		PostedByID:  j.PostedByID,
		ExpiresAt:   j.ExpiresAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
