package postgres

import (
	"context"

	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type JobPostgreSQL struct {
	db *gorm.DB
}

func NewJobPostgreSQL(db *gorm.DB) repositories.JobRepository {
	return &JobPostgreSQL{db: db}
}

func (r *JobPostgreSQL) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobPostgreSQL) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}
