package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/iiuc-platform/interview-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type InterviewFilters struct {
	Status      *models.InterviewStatus `json:"status"`
	CandidateID *string                 `json:"candidate_id"`
	RecruiterID *string                 `json:"recruiter_id"`
	JobID       *string                 `json:"job_id"`
	DateFrom    *time.Time              `json:"date_from"`
	DateTo      *time.Time              `json:"date_to"`
	Limit       int                     `json:"limit"`
	Offset      int                     `json:"offset"`
	SortBy      string                  `json:"sort_by"`    // "scheduled_at", "created_at"
	SortOrder   string                  `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	GetByIDWithDetails(ctx context.Context, id string) (*models.Interview, error) // Include job, sessions
	Update(ctx context.Context, interview *models.Interview) error
	UpdateStatus(ctx context.Context, id string, status models.InterviewStatus) error
	List(ctx context.Context, filters InterviewFilters) ([]*models.Interview, int64, error)
	GetByCandidate(ctx context.Context, candidateID string, filters InterviewFilters) ([]*models.Interview, int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.InterviewSession) error
	GetByID(ctx context.Context, id string) (*models.InterviewSession, error)
	GetByIDWithQuestions(ctx context.Context, id string) (*models.InterviewSession, error)
	GetActiveByInterview(ctx context.Context, interviewID string) (*models.InterviewSession, error)
	Update(ctx context.Context, session *models.InterviewSession) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.InterviewQuestion) error
	GetByID(ctx context.Context, id string) (*models.InterviewQuestion, error)
	GetBySession(ctx context.Context, sessionID string) ([]*models.InterviewQuestion, error)
	GetCurrent(ctx context.Context, sessionID string) (*models.InterviewQuestion, error) // Highest-numbered question
	Update(ctx context.Context, question *models.InterviewQuestion) error
}

type AttentionLogRepository interface {
	Create(ctx context.Context, log *models.AttentionLog) error
	GetBySession(ctx context.Context, sessionID string) ([]*models.AttentionLog, error)
	CountBySession(ctx context.Context, sessionID string) (total, attentive int64, err error)
}

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
}

// Repository aggregates the entity repositories behind one handle.
type Repository interface {
	Interview() InterviewRepository
	Session() SessionRepository
	Question() QuestionRepository
	AttentionLog() AttentionLogRepository
	Job() JobRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError checks whether a repository error means "no such row".
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
