package models

import (
	"time"

	"gorm.io/gorm"
)

type InterviewStatus string

const (
	InterviewScheduled  InterviewStatus = "scheduled"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
	InterviewCancelled  InterviewStatus = "cancelled"
)

// Interview is a scheduled proctoring engagement between a candidate and a
// job opening. It is created by the recruiter workflow and transitions to
// in_progress when a session starts and to completed when the session
// finalizes.
type Interview struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	JobID       string `json:"job_id" gorm:"not null;size:36;index" validate:"required"`
	CandidateID string `json:"candidate_id" gorm:"not null;size:36;index" validate:"required"`
	RecruiterID string `json:"recruiter_id" gorm:"not null;size:36;index"`

	ScheduledAt     time.Time       `json:"scheduled_at" gorm:"not null" validate:"required"`
	DurationMinutes int             `json:"duration_minutes" gorm:"default:30" validate:"min=5,max=120"`
	Status          InterviewStatus `json:"status" gorm:"default:scheduled;index" validate:"omitempty,interview_status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Job      Job                `json:"job" gorm:"foreignKey:JobID"`
	Sessions []InterviewSession `json:"sessions,omitempty" gorm:"foreignKey:InterviewID"`
}

func (Interview) TableName() string {
	return "ai_interviews"
}

// Job carries the context the question generator needs: title, description
// and required skills of the opening.
type Job struct {
	ID             string  `json:"id" gorm:"primaryKey;size:36"`
	RecruiterID    string  `json:"recruiter_id" gorm:"not null;size:36;index"`
	Title          string  `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Department     *string `json:"department" gorm:"size:100"`
	Description    string  `json:"description" gorm:"type:text"`
	RequiredSkills Skills  `json:"required_skills" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Job) TableName() string {
	return "jobs"
}
