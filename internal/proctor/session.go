package proctor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SessionState is the controller's position in the interview state machine.
type SessionState string

const (
	StateNotStarted      SessionState = "not_started"
	StateAwaitingAnswer  SessionState = "awaiting_answer"
	StateSubmitting      SessionState = "submitting"
	StateCompleting      SessionState = "completing"
	StateCompleted       SessionState = "completed"
	StateTerminatedEarly SessionState = "terminated_early"
)

// SessionStart is the authority's response to starting a session.
type SessionStart struct {
	SessionID      string
	QuestionID     string
	Question       string
	QuestionNumber int // 1-based
	TotalQuestions int
}

// AnswerContent carries the candidate's answer: non-empty text, a non-empty
// encoded audio payload, or both.
type AnswerContent struct {
	Text          string
	AudioBase64   string
	AudioDuration time.Duration
}

func (c AnswerContent) empty() bool {
	return c.Text == "" && c.AudioBase64 == ""
}

// AnswerResult is the scorer's verdict plus, unless the session is done,
// the next question.
type AnswerResult struct {
	Score          float64
	Feedback       string
	NextQuestionID string
	NextQuestion   string
	QuestionNumber int
	IsComplete     bool
}

// Report is the aggregate produced when a session completes.
type Report struct {
	OverallScore   int
	AttentionScore int
	Feedback       string
}

// Authority is the remote question/scoring service. All calls carry the
// bearer credential configured on the concrete client.
type Authority interface {
	Start(ctx context.Context, interviewID string) (*SessionStart, error)
	SubmitAnswer(ctx context.Context, sessionID, questionID string, content AnswerContent) (*AnswerResult, error)
	LogAttention(ctx context.Context, sessionID string, sample AttentionSample) error
	Complete(ctx context.Context, sessionID string, tabSwitches, fullscreenExits int, terminatedEarly bool) (*Report, error)
}

// Question is the session's current question as the controller tracks it.
type Question struct {
	ID    string
	Text  string
	Index int // 0-based, strictly increasing, no gaps
}

// SubmittedAnswer is the controller's record of one scored answer.
type SubmittedAnswer struct {
	QuestionID string
	Index      int
	Score      float64
	Feedback   string
}

// ControllerConfig configures the session controller.
type ControllerConfig struct {
	// TelemetryInterval is the cadence of fire-and-forget attention pushes.
	TelemetryInterval time.Duration
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{TelemetryInterval: 2 * time.Second}
}

// Controller drives the candidate through the ordered question sequence,
// submits answers to the authority, feeds it attention telemetry, and
// finalizes the session into a report. The estimator and monitor are
// optional collaborators; a nil estimator simply disables telemetry.
type Controller struct {
	authority Authority
	estimator *Estimator
	monitor   *Monitor
	logger    *slog.Logger
	cfg       ControllerConfig

	mu              sync.Mutex
	state           SessionState
	interviewID     string
	sessionID       string
	current         Question
	totalQuestions  int
	answers         []SubmittedAnswer
	inFlight        bool
	report          *Report
	cancelTelemetry context.CancelFunc
}

func NewController(authority Authority, estimator *Estimator, monitor *Monitor, logger *slog.Logger, cfg ControllerConfig) *Controller {
	if cfg.TelemetryInterval <= 0 {
		cfg.TelemetryInterval = DefaultControllerConfig().TelemetryInterval
	}
	return &Controller{
		authority: authority,
		estimator: estimator,
		monitor:   monitor,
		logger:    logger,
		cfg:       cfg,
		state:     StateNotStarted,
	}
}

// Start requests the first question from the authority and begins the
// session. The background monitors are started for the session's lifetime.
func (c *Controller) Start(ctx context.Context, interviewID string) (*SessionStart, error) {
	c.mu.Lock()
	if c.state != StateNotStarted {
		c.mu.Unlock()
		return nil, ErrSessionStarted
	}
	c.mu.Unlock()

	start, err := c.authority.Start(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state = StateAwaitingAnswer
	c.interviewID = interviewID
	c.sessionID = start.SessionID
	c.totalQuestions = start.TotalQuestions
	c.current = Question{
		ID:    start.QuestionID,
		Text:  start.Question,
		Index: start.QuestionNumber - 1,
	}
	c.mu.Unlock()

	c.logger.Info("interview session started",
		"interview_id", interviewID,
		"session_id", start.SessionID,
		"total_questions", start.TotalQuestions)

	if c.estimator != nil {
		c.estimator.Start(ctx)
		c.startTelemetry(ctx)
	}
	if c.monitor != nil {
		c.monitor.Start()
	}

	return start, nil
}

// SubmitAnswer submits the answer for the current question and advances the
// controller by exactly one question. Submissions are strictly sequential:
// a second call while one is in flight fails with ErrConflict, and a
// questionId mismatch fails with ErrOutOfOrder without mutating the index.
func (c *Controller) SubmitAnswer(ctx context.Context, questionID string, content AnswerContent) (*AnswerResult, error) {
	if content.empty() {
		return nil, fmt.Errorf("answer content is empty")
	}

	c.mu.Lock()
	switch c.state {
	case StateAwaitingAnswer:
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrConflict
	default:
		c.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if questionID != c.current.ID {
		c.mu.Unlock()
		return nil, fmt.Errorf("question %s is not current: %w", questionID, ErrOutOfOrder)
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrConflict
	}
	c.inFlight = true
	c.state = StateSubmitting
	sessionID := c.sessionID
	index := c.current.Index
	c.mu.Unlock()

	result, err := c.authority.SubmitAnswer(ctx, sessionID, questionID, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	// The session may have been terminated while the submission was in
	// flight. Terminal states are absorbing: the result is discarded and
	// the cursor stays wherever termination left it.
	if c.state != StateSubmitting {
		return nil, ErrSessionClosed
	}

	if err != nil {
		// Failed submissions never advance the question index; the
		// candidate retries against the same question.
		c.state = StateAwaitingAnswer
		return nil, err
	}

	c.answers = append(c.answers, SubmittedAnswer{
		QuestionID: questionID,
		Index:      index,
		Score:      result.Score,
		Feedback:   result.Feedback,
	})

	if result.IsComplete {
		c.state = StateCompleting
		c.logger.Info("final answer submitted", "session_id", sessionID, "answers", len(c.answers))
		return result, nil
	}

	c.state = StateAwaitingAnswer
	c.current = Question{
		ID:    result.NextQuestionID,
		Text:  result.NextQuestion,
		Index: index + 1,
	}
	return result, nil
}

// Complete finalizes the session with the monitor's violation counters.
// Idempotent: the report is cached after the first success and returned on
// every subsequent call without re-contacting the authority.
func (c *Controller) Complete(ctx context.Context) (*Report, error) {
	return c.complete(ctx, StateCompleted)
}

// HandleMaxViolations is the termination path for violation-budget
// exhaustion; hosts wire it as the monitor's max-violations callback. The
// session ends immediately regardless of remaining questions.
func (c *Controller) HandleMaxViolations(ctx context.Context) (*Report, error) {
	c.logger.Warn("violation budget exhausted, terminating session early")
	return c.complete(ctx, StateTerminatedEarly)
}

func (c *Controller) complete(ctx context.Context, terminal SessionState) (*Report, error) {
	c.mu.Lock()
	if c.report != nil {
		report := *c.report
		c.mu.Unlock()
		return &report, nil
	}
	if c.state == StateNotStarted {
		c.mu.Unlock()
		return nil, ErrSessionClosed
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	var tabSwitches, fullscreenExits int
	if c.monitor != nil {
		tabSwitches, fullscreenExits = c.monitor.Counts()
	}

	report, err := c.authority.Complete(ctx, sessionID, tabSwitches, fullscreenExits, terminal == StateTerminatedEarly)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state = terminal
	c.report = report
	cancel := c.cancelTelemetry
	c.cancelTelemetry = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c.monitor != nil {
		c.monitor.Stop()
	}
	if c.estimator != nil {
		c.estimator.Stop()
	}

	c.logger.Info("interview session completed",
		"session_id", sessionID,
		"state", terminal,
		"overall_score", report.OverallScore,
		"attention_score", report.AttentionScore)

	report2 := *report
	return &report2, nil
}

// State returns the controller's current state.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentQuestion returns the single active question.
func (c *Controller) CurrentQuestion() Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Answers returns the submitted answers so far, in order.
func (c *Controller) Answers() []SubmittedAnswer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SubmittedAnswer, len(c.answers))
	copy(out, c.answers)
	return out
}

// startTelemetry launches the fire-and-forget attention push loop. Pushes
// never block frame inference and transport failures are swallowed; the
// next tick simply tries again.
func (c *Controller) startTelemetry(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancelTelemetry = cancel
	sessionID := c.sessionID
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.cfg.TelemetryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				sample := c.estimator.Sample()
				if err := c.authority.LogAttention(loopCtx, sessionID, sample); err != nil {
					c.logger.Debug("attention push failed", "error", err)
				}
			}
		}
	}()
}
