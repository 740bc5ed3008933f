package postgres

import (
	"context"
	"fmt"

	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type InterviewPostgreSQL struct {
	db *gorm.DB
}

func NewInterviewPostgreSQL(db *gorm.DB) repositories.InterviewRepository {
	return &InterviewPostgreSQL{db: db}
}

func (r *InterviewPostgreSQL) Create(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

func (r *InterviewPostgreSQL) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.WithContext(ctx).First(&interview, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *InterviewPostgreSQL) GetByIDWithDetails(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Sessions").
		Preload("Sessions.Questions").
		First(&interview, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *InterviewPostgreSQL) Update(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Save(interview).Error
}

func (r *InterviewPostgreSQL) UpdateStatus(ctx context.Context, id string, status models.InterviewStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *InterviewPostgreSQL) List(ctx context.Context, filters repositories.InterviewFilters) ([]*models.Interview, int64, error) {
	var interviews []*models.Interview
	var total int64

	// apply filter first
	query := r.db.WithContext(ctx).Model(&models.Interview{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = r.applyPaginationAndSort(query, filters)

	if err := query.Preload("Job").Find(&interviews).Error; err != nil {
		return nil, 0, err
	}
	return interviews, total, nil
}

func (r *InterviewPostgreSQL) GetByCandidate(ctx context.Context, candidateID string, filters repositories.InterviewFilters) ([]*models.Interview, int64, error) {
	filters.CandidateID = &candidateID
	return r.List(ctx, filters)
}

func (r *InterviewPostgreSQL) applyFilters(query *gorm.DB, filters repositories.InterviewFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filters.CandidateID)
	}
	if filters.RecruiterID != nil {
		query = query.Where("recruiter_id = ?", *filters.RecruiterID)
	}
	if filters.JobID != nil {
		query = query.Where("job_id = ?", *filters.JobID)
	}
	if filters.DateFrom != nil {
		query = query.Where("scheduled_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("scheduled_at <= ?", *filters.DateTo)
	}
	return query
}

func (r *InterviewPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.InterviewFilters) *gorm.DB {
	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "scheduled_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
