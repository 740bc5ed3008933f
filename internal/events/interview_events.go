package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/iiuc-platform/interview-service/internal/models"
)

// EventType represents different types of interview events
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "interview.session.started"
	EventSessionCompleted EventType = "interview.session.completed"

	// Proctoring events
	EventViolationRecorded EventType = "interview.violation.recorded"
	EventSessionTerminated EventType = "interview.session.terminated"
)

// InterviewEvent is the base event structure for all interview events
type InterviewEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID   string    `json:"session_id"`
	InterviewID string    `json:"interview_id"`
	CandidateID string    `json:"candidate_id"`
	JobID       string    `json:"job_id"`
	StartedAt   time.Time `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID       string    `json:"session_id"`
	InterviewID     string    `json:"interview_id"`
	CandidateID     string    `json:"candidate_id"`
	CompletedAt     time.Time `json:"completed_at"`
	OverallScore    int       `json:"overall_score"`
	AttentionScore  int       `json:"attention_score"`
	TabSwitches     int       `json:"tab_switches"`
	FullscreenExits int       `json:"fullscreen_exits"`
	TerminatedEarly bool      `json:"terminated_early"`
}

type ViolationRecordedEvent struct {
	SessionID   string               `json:"session_id"`
	InterviewID string               `json:"interview_id"`
	Type        models.ViolationType `json:"type"`
	Count       int                  `json:"count"`
	RecordedAt  time.Time            `json:"recorded_at"`
}

// Event factory functions

func NewSessionStartedEvent(sessionID, interviewID, candidateID, jobID string, startedAt time.Time) *InterviewEvent {
	return &InterviewEvent{
		ID:        uuid.NewString(),
		Type:      EventSessionStarted,
		Timestamp: time.Now(),
		Source:    "interview-service",
		Version:   "1.0",
		Data: SessionStartedEvent{
			SessionID:   sessionID,
			InterviewID: interviewID,
			CandidateID: candidateID,
			JobID:       jobID,
			StartedAt:   startedAt,
		},
	}
}

func NewSessionCompletedEvent(sessionID, interviewID, candidateID string, completedAt time.Time, overallScore, attentionScore, tabSwitches, fullscreenExits int, terminatedEarly bool) *InterviewEvent {
	eventType := EventSessionCompleted
	if terminatedEarly {
		eventType = EventSessionTerminated
	}
	return &InterviewEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "interview-service",
		Version:   "1.0",
		Data: SessionCompletedEvent{
			SessionID:       sessionID,
			InterviewID:     interviewID,
			CandidateID:     candidateID,
			CompletedAt:     completedAt,
			OverallScore:    overallScore,
			AttentionScore:  attentionScore,
			TabSwitches:     tabSwitches,
			FullscreenExits: fullscreenExits,
			TerminatedEarly: terminatedEarly,
		},
	}
}

func NewViolationRecordedEvent(sessionID, interviewID string, violationType models.ViolationType, count int, recordedAt time.Time) *InterviewEvent {
	return &InterviewEvent{
		ID:        uuid.NewString(),
		Type:      EventViolationRecorded,
		Timestamp: time.Now(),
		Source:    "interview-service",
		Version:   "1.0",
		Data: ViolationRecordedEvent{
			SessionID:   sessionID,
			InterviewID: interviewID,
			Type:        violationType,
			Count:       count,
			RecordedAt:  recordedAt,
		},
	}
}
