package postgres

import (
	"context"

	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (r *QuestionPostgreSQL) Create(ctx context.Context, question *models.InterviewQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.InterviewQuestion, error) {
	var question models.InterviewQuestion
	if err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionPostgreSQL) GetBySession(ctx context.Context, sessionID string) ([]*models.InterviewQuestion, error) {
	var questions []*models.InterviewQuestion
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionPostgreSQL) GetCurrent(ctx context.Context, sessionID string) (*models.InterviewQuestion, error) {
	var question models.InterviewQuestion
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number DESC").
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionPostgreSQL) Update(ctx context.Context, question *models.InterviewQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}
