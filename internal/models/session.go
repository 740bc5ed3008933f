package models

import (
	"time"

	"gorm.io/datatypes"
)

// Skills is a jsonb-backed list of skill names.
type Skills = datatypes.JSONSlice[string]

// InterviewSession is one live attempt at an Interview. The session id is
// the opaque handle the client holds; violation counters and the attention
// score are filled in at completion.
type InterviewSession struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	InterviewID string `json:"interview_id" gorm:"not null;size:36;index"`

	StartedAt time.Time  `json:"started_at" gorm:"not null"`
	EndedAt   *time.Time `json:"ended_at"`

	// Violation counters reported by the client at completion; monotonic
	// within a session, never decremented server-side.
	TabSwitches     int `json:"tab_switches" gorm:"default:0"`
	FullscreenExits int `json:"fullscreen_exits" gorm:"default:0"`

	// Aggregates computed at completion.
	AttentionScore *int    `json:"attention_score"`
	OverallScore   *int    `json:"overall_score"`
	AIFeedback     *string `json:"ai_feedback" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Interview Interview           `json:"interview" gorm:"foreignKey:InterviewID"`
	Questions []InterviewQuestion `json:"questions,omitempty" gorm:"foreignKey:SessionID"`
}

func (InterviewSession) TableName() string {
	return "ai_interview_sessions"
}

// Completed reports whether the session has been finalized.
func (s *InterviewSession) Completed() bool {
	return s.EndedAt != nil
}

// InterviewQuestion is one generated question and, once answered, its
// scored answer. question_number is 1-based and strictly sequential within
// a session.
type InterviewQuestion struct {
	ID             string `json:"id" gorm:"primaryKey;size:36"`
	SessionID      string `json:"session_id" gorm:"not null;size:36;index"`
	QuestionNumber int    `json:"question_number" gorm:"not null"`
	QuestionText   string `json:"question_text" gorm:"type:text;not null"`

	AnswerText            *string  `json:"answer_text" gorm:"type:text"`
	AnswerAudioURL        *string  `json:"answer_audio_url" gorm:"size:500"`
	AnswerDurationSeconds int      `json:"answer_duration_seconds" gorm:"default:0"`
	AIScore               *float64 `json:"ai_score"` // 0-10
	AIFeedback            *string  `json:"ai_feedback" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InterviewQuestion) TableName() string {
	return "ai_interview_questions"
}

// Answered reports whether an answer has been recorded for the question.
func (q *InterviewQuestion) Answered() bool {
	return q.AnswerText != nil || q.AnswerAudioURL != nil
}
