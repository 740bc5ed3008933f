package proctor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPAuthority implements Authority against the interview service's REST
// API. Every request carries the bearer credential issued by the auth
// collaborator.
type HTTPAuthority struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPAuthority(baseURL, token string) *HTTPAuthority {
	return &HTTPAuthority{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ===== WIRE TYPES =====

type startResponse struct {
	SessionID      string `json:"session_id"`
	Question       string `json:"question"`
	QuestionID     string `json:"question_id"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
}

type submitAnswerRequest struct {
	SessionID            string `json:"session_id"`
	QuestionID           string `json:"question_id"`
	AnswerText           string `json:"answer_text,omitempty"`
	AudioBase64          string `json:"audio_base64,omitempty"`
	AnswerDurationSecond int    `json:"answer_duration_seconds,omitempty"`
}

type submitAnswerResponse struct {
	Score          float64 `json:"score"`
	Feedback       string  `json:"feedback"`
	NextQuestion   string  `json:"next_question,omitempty"`
	NextQuestionID string  `json:"next_question_id,omitempty"`
	QuestionNumber int     `json:"question_number,omitempty"`
	IsComplete     bool    `json:"is_complete"`
}

type logAttentionRequest struct {
	SessionID         string   `json:"session_id"`
	AttentionDetected bool     `json:"attention_detected"`
	FaceDetected      bool     `json:"face_detected"`
	EyesOnScreen      bool     `json:"eyes_on_screen"`
	HeadPose          HeadPose `json:"head_pose"`
}

type completeRequest struct {
	SessionID       string `json:"session_id"`
	TabSwitches     int    `json:"tab_switches"`
	FullscreenExits int    `json:"fullscreen_exits"`
	TerminatedEarly bool   `json:"terminated_early"`
}

type completeResponse struct {
	OverallScore   int    `json:"overall_score"`
	AttentionScore int    `json:"attention_score"`
	Feedback       string `json:"feedback"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ===== AUTHORITY IMPLEMENTATION =====

func (a *HTTPAuthority) Start(ctx context.Context, interviewID string) (*SessionStart, error) {
	var resp startResponse
	path := fmt.Sprintf("/api/v1/interviews/%s/start", interviewID)
	if err := a.post(ctx, "start", path, nil, &resp); err != nil {
		return nil, err
	}
	return &SessionStart{
		SessionID:      resp.SessionID,
		QuestionID:     resp.QuestionID,
		Question:       resp.Question,
		QuestionNumber: resp.QuestionNumber,
		TotalQuestions: resp.TotalQuestions,
	}, nil
}

func (a *HTTPAuthority) SubmitAnswer(ctx context.Context, sessionID, questionID string, content AnswerContent) (*AnswerResult, error) {
	req := submitAnswerRequest{
		SessionID:            sessionID,
		QuestionID:           questionID,
		AnswerText:           content.Text,
		AudioBase64:          content.AudioBase64,
		AnswerDurationSecond: int(content.AudioDuration.Seconds()),
	}
	var resp submitAnswerResponse
	path := fmt.Sprintf("/api/v1/interviews/sessions/%s/answers", sessionID)
	if err := a.post(ctx, "submit_answer", path, req, &resp); err != nil {
		return nil, err
	}
	return &AnswerResult{
		Score:          resp.Score,
		Feedback:       resp.Feedback,
		NextQuestionID: resp.NextQuestionID,
		NextQuestion:   resp.NextQuestion,
		QuestionNumber: resp.QuestionNumber,
		IsComplete:     resp.IsComplete,
	}, nil
}

func (a *HTTPAuthority) LogAttention(ctx context.Context, sessionID string, sample AttentionSample) error {
	req := logAttentionRequest{
		SessionID:         sessionID,
		AttentionDetected: sample.FaceDetected && sample.EyesOnScreen,
		FaceDetected:      sample.FaceDetected,
		EyesOnScreen:      sample.EyesOnScreen,
		HeadPose:          sample.HeadPose,
	}
	path := fmt.Sprintf("/api/v1/interviews/sessions/%s/attention", sessionID)
	return a.post(ctx, "log_attention", path, req, nil)
}

func (a *HTTPAuthority) Complete(ctx context.Context, sessionID string, tabSwitches, fullscreenExits int, terminatedEarly bool) (*Report, error) {
	req := completeRequest{
		SessionID:       sessionID,
		TabSwitches:     tabSwitches,
		FullscreenExits: fullscreenExits,
		TerminatedEarly: terminatedEarly,
	}
	var resp completeResponse
	path := fmt.Sprintf("/api/v1/interviews/sessions/%s/complete", sessionID)
	if err := a.post(ctx, "complete", path, req, &resp); err != nil {
		return nil, err
	}
	return &Report{
		OverallScore:   resp.OverallScore,
		AttentionScore: resp.AttentionScore,
		Feedback:       resp.Feedback,
	}, nil
}

func (a *HTTPAuthority) post(ctx context.Context, op, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return a.decodeError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func (a *HTTPAuthority) decodeError(op string, resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch {
	case body.Code == "out_of_order":
		return fmt.Errorf("%s: %s: %w", op, body.Message, ErrOutOfOrder)
	case body.Code == "conflict" || resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %s: %w", op, body.Message, ErrConflict)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", op, body.Message, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %s: %w", op, body.Message, ErrUnauthorized)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Client errors the authority did not classify. Retrying the same
		// request cannot change the outcome, so do not dress them up as
		// transport failures.
		return fmt.Errorf("%s: authority rejected request: status %d: %s", op, resp.StatusCode, body.Message)
	default:
		return &TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body.Message)}
	}
}
