package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/repository"
)

var ErrJobNotFound = repository.ErrJobNotFound

type JobRepository interface {
	Create(ctx context.Context, job domain.Job) (domain.Job, error)
	FindByID(ctx context.Context, id uint) (domain.Job, error)
	FindAll(ctx context.Context) ([]domain.Job, error)
	Delete(ctx context.Context, id uint) error
}

type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{
		repo: repo,
	}
}

// ListJobs returns the live job board: expired listings are filtered
// out.
func (s *JobService) ListJobs(ctx context.Context) ([]domain.Job, error) {
	jobs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	now := time.Now()
	live := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.IsExpired(now) {
			continue
		}
		live = append(live, job)
	}

	return live, nil
}

func (s *JobService) GetJob(ctx context.Context, id uint) (domain.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return job, nil
}

func (s *JobService) CreateJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return domain.Job{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *JobService) DeleteJob(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
