package models

import (
	"time"

	"gorm.io/datatypes"
)

// AttentionLog is one telemetry sample pushed by the client during a
// session. Samples are loss-tolerant: a missing or out-of-order row only
// degrades the completeness of the attention history, never session state.
type AttentionLog struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SessionID string `json:"session_id" gorm:"not null;size:36;index"`

	AttentionDetected bool           `json:"attention_detected"`
	FaceDetected      bool           `json:"face_detected"`
	EyesOnScreen      bool           `json:"eyes_on_screen"`
	HeadPose          datatypes.JSON `json:"head_pose" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (AttentionLog) TableName() string {
	return "ai_interview_attention_logs"
}

// HeadPose mirrors the client's head-pose estimate in degrees.
type HeadPose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

type ViolationType string

const (
	ViolationTabSwitch      ViolationType = "tab_switch"
	ViolationFullscreenExit ViolationType = "fullscreen_exit"
)
