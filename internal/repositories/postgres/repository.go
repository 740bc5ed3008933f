package postgres

import (
	"context"

	"github.com/iiuc-platform/interview-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed implementation of the aggregate repository.
type Repository struct {
	db *gorm.DB

	interview    repositories.InterviewRepository
	session      repositories.SessionRepository
	question     repositories.QuestionRepository
	attentionLog repositories.AttentionLogRepository
	job          repositories.JobRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:           db,
		interview:    NewInterviewPostgreSQL(db),
		session:      NewSessionPostgreSQL(db),
		question:     NewQuestionPostgreSQL(db),
		attentionLog: NewAttentionLogPostgreSQL(db),
		job:          NewJobPostgreSQL(db),
	}
}

func (r *Repository) Interview() repositories.InterviewRepository       { return r.interview }
func (r *Repository) Session() repositories.SessionRepository           { return r.session }
func (r *Repository) Question() repositories.QuestionRepository         { return r.question }
func (r *Repository) AttentionLog() repositories.AttentionLogRepository { return r.attentionLog }
func (r *Repository) Job() repositories.JobRepository                   { return r.job }

func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
