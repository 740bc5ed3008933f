package services

import (
	"context"
	"time"

	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
)

// ===== REQUEST / RESPONSE DTOS =====

type CreateInterviewRequest struct {
	JobID           string    `json:"job_id" validate:"required,uuid"`
	CandidateID     string    `json:"candidate_id" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,min=5,max=120"`
}

type ListInterviewsRequest struct {
	Status    *models.InterviewStatus `json:"status" validate:"omitempty,interview_status"`
	JobID     *string                 `json:"job_id" validate:"omitempty,uuid"`
	Limit     int                     `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset    int                     `json:"offset" validate:"omitempty,min=0"`
	SortBy    string                  `json:"sort_by" validate:"omitempty,oneof=scheduled_at created_at"`
	SortOrder string                  `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type InterviewListResponse struct {
	Interviews []*models.Interview `json:"interviews"`
	Total      int64               `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

type StartSessionResponse struct {
	SessionID      string `json:"session_id"`
	QuestionID     string `json:"question_id"`
	Question       string `json:"question"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
}

type SubmitAnswerRequest struct {
	QuestionID      string  `json:"question_id" validate:"required"`
	AnswerText      *string `json:"answer_text"`
	AudioBase64     *string `json:"audio_base64"`
	DurationSeconds int     `json:"answer_duration_seconds" validate:"omitempty,min=0"`
}

type SubmitAnswerResponse struct {
	Score          float64 `json:"score"`
	Feedback       string  `json:"feedback"`
	NextQuestionID string  `json:"next_question_id,omitempty"`
	NextQuestion   string  `json:"next_question,omitempty"`
	QuestionNumber int     `json:"question_number,omitempty"`
	IsComplete     bool    `json:"is_complete"`
}

type LogAttentionRequest struct {
	AttentionDetected bool             `json:"attention_detected"`
	FaceDetected      bool             `json:"face_detected"`
	EyesOnScreen      bool             `json:"eyes_on_screen"`
	HeadPose          *models.HeadPose `json:"head_pose"`
}

type CompleteSessionRequest struct {
	TabSwitches     int  `json:"tab_switches" validate:"min=0"`
	FullscreenExits int  `json:"fullscreen_exits" validate:"min=0"`
	TerminatedEarly bool `json:"terminated_early"`
}

type SessionReport struct {
	SessionID       string           `json:"session_id"`
	InterviewID     string           `json:"interview_id"`
	OverallScore    int              `json:"overall_score"`
	AttentionScore  int              `json:"attention_score"`
	Feedback        string           `json:"feedback"`
	TabSwitches     int              `json:"tab_switches"`
	FullscreenExits int              `json:"fullscreen_exits"`
	Questions       []QuestionReport `json:"questions"`
}

type QuestionReport struct {
	QuestionNumber int      `json:"question_number"`
	QuestionText   string   `json:"question_text"`
	AnswerText     *string  `json:"answer_text"`
	AnswerAudioURL *string  `json:"answer_audio_url"`
	AIScore        *float64 `json:"ai_score"`
	AIFeedback     *string  `json:"ai_feedback"`
}

// ===== SERVICE INTERFACES =====

type InterviewService interface {
	Create(ctx context.Context, req *CreateInterviewRequest, recruiterID string) (*models.Interview, error)
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	List(ctx context.Context, req *ListInterviewsRequest) (*InterviewListResponse, error)
	ListByCandidate(ctx context.Context, candidateID string, req *ListInterviewsRequest) (*InterviewListResponse, error)
	Cancel(ctx context.Context, id string, recruiterID string) error
}

type SessionService interface {
	Start(ctx context.Context, interviewID, candidateID string) (*StartSessionResponse, error)
	SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
	LogAttention(ctx context.Context, sessionID string, req *LogAttentionRequest) error
	Complete(ctx context.Context, sessionID string, req *CompleteSessionRequest) (*SessionReport, error)
}

type ReportService interface {
	Get(ctx context.Context, sessionID string) (*SessionReport, error)
	ExportXLSX(ctx context.Context, sessionID string) ([]byte, error)
}

// ServiceManager bundles the services the HTTP layer depends on.
type ServiceManager struct {
	Interview InterviewService
	Session   SessionService
	Report    ReportService
	Repo      repositories.Repository
}
