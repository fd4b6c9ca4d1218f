package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrJobNotFound = errors.New("job not found")

type Job struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Company     string `gorm:"not null"`
	Location    string
	Type        string `gorm:"not null"` // "full_time", "part_time" or "internship"
	Description string
	ApplyURL    string

	PostedByID uint `gorm:"not null"`
	ExpiresAt  time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type JobDAO struct {
	db *gorm.DB
}

func NewJobDAO(db *gorm.DB) *JobDAO {
	return &JobDAO{
		db: db,
	}
}

func (d *JobDAO) Insert(ctx context.Context, job Job) (Job, error) {
	result := d.db.WithContext(ctx).Create(&job)
	if result.Error != nil {
		return Job{}, result.Error
	}

	return job, nil
}

func (d *JobDAO) FindByID(ctx context.Context, id uint) (Job, error) {
	var job Job
	result := d.db.WithContext(ctx).First(&job, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Job{}, ErrJobNotFound
		}

		return Job{}, result.Error
	}

	return job, nil
}

func (d *JobDAO) FindAll(ctx context.Context) ([]Job, error) {
	var jobs []Job
	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}

	return jobs, nil
}

func (d *JobDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Job{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}
