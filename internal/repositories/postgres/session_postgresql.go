package postgres

import (
	"context"

	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (r *SessionPostgreSQL) Create(ctx context.Context, session *models.InterviewSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionPostgreSQL) GetByID(ctx context.Context, id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) GetByIDWithQuestions(ctx context.Context, id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number ASC")
		}).
		First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) GetActiveByInterview(ctx context.Context, interviewID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.WithContext(ctx).
		Where("interview_id = ? AND ended_at IS NULL", interviewID).
		Order("started_at DESC").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) Update(ctx context.Context, session *models.InterviewSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}
