package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/iiuc-platform/interview-service/internal/ai"
	"github.com/iiuc-platform/interview-service/internal/cache"
	"github.com/iiuc-platform/interview-service/internal/events"
	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"github.com/iiuc-platform/interview-service/internal/storage"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/iiuc-platform/interview-service/internal/validator"
	"gorm.io/datatypes"
)

const (
	// totalQuestions is how many questions every session asks.
	totalQuestions = 5

	// Weights for the final score: answer quality dominates, sustained
	// attention contributes the rest.
	answerWeight    = 0.7
	attentionWeight = 0.3

	// Fallbacks applied when the AI provider is unavailable. The
	// interview must keep moving regardless.
	fallbackScore    = 5.0
	fallbackFeedback = "Unable to score answer automatically."

	activeSessionTTL = 3 * time.Hour
)

type sessionService struct {
	repo      repositories.Repository
	sessions  cache.SessionCache
	provider  ai.Provider
	audio     storage.AudioStore
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewSessionService(
	repo repositories.Repository,
	sessions cache.SessionCache,
	provider ai.Provider,
	audio storage.AudioStore,
	publisher events.EventPublisher,
	logger utils.Logger,
	v *validator.Validator,
) SessionService {
	return &sessionService{
		repo:      repo,
		sessions:  sessions,
		provider:  provider,
		audio:     audio,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, interviewID, candidateID string) (*StartSessionResponse, error) {
	s.logger.InfoContext(ctx, "Starting interview session",
		"interview_id", interviewID,
		"candidate_id", candidateID)

	interview, err := s.repo.Interview().GetByIDWithDetails(ctx, interviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	if interview.CandidateID != candidateID {
		return nil, ErrForbidden
	}
	if err := interviewStartable(interview); err != nil {
		return nil, err
	}

	// Only one live session per interview.
	if active, err := s.sessions.ActiveSession(ctx, interviewID); err != nil {
		s.logger.WarnContext(ctx, "Session cache unavailable, falling back to database check", "error", err)
	} else if active != "" {
		return nil, ErrSessionConflict
	}
	if existing, err := s.repo.Session().GetActiveByInterview(ctx, interviewID); err == nil && existing != nil {
		return nil, ErrSessionConflict
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active sessions: %w", err)
	}

	session := &models.InterviewSession{
		ID:          uuid.NewString(),
		InterviewID: interviewID,
		StartedAt:   time.Now(),
	}
	firstQuestion := &models.InterviewQuestion{
		ID:             uuid.NewString(),
		SessionID:      session.ID,
		QuestionNumber: 1,
		QuestionText:   s.generateQuestion(ctx, &interview.Job, nil, 1),
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Session().Create(ctx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		if err := tx.Question().Create(ctx, firstQuestion); err != nil {
			return fmt.Errorf("failed to create first question: %w", err)
		}
		return tx.Interview().UpdateStatus(ctx, interviewID, models.InterviewInProgress)
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.SetActive(ctx, interviewID, session.ID, activeSessionTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache active session", "error", err)
	}

	if err := s.publisher.PublishInterviewEvent(ctx, events.NewSessionStartedEvent(
		session.ID, interviewID, candidateID, interview.JobID, session.StartedAt,
	)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish session started event", "error", err)
	}

	resp := &StartSessionResponse{
		SessionID:      session.ID,
		QuestionID:     firstQuestion.ID,
		Question:       firstQuestion.QuestionText,
		QuestionNumber: 1,
		TotalQuestions: totalQuestions,
	}

	s.logger.InfoContext(ctx, "Interview session started", "session_id", session.ID)
	return resp, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validator.ToValidationErrors(err).Error())
	}

	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Completed() {
		return nil, ErrSessionCompleted
	}

	current, err := s.repo.Question().GetCurrent(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get current question: %w", err)
	}

	// The answer must target the question the session is waiting on. A
	// stale or duplicate submission is rejected without advancing.
	if current.ID != req.QuestionID {
		return nil, ErrAnswerOutOfOrder
	}
	if current.Answered() {
		return nil, ErrAnswerInProgress
	}

	answerText := ""
	if req.AnswerText != nil {
		answerText = *req.AnswerText
	}

	// Score the answer; fall back to a neutral score on provider failure.
	score, feedback := s.scoreAnswer(ctx, current.QuestionText, answerText)
	current.AnswerText = req.AnswerText
	current.AnswerDurationSeconds = req.DurationSeconds
	current.AIScore = &score
	current.AIFeedback = &feedback

	if req.AudioBase64 != nil && *req.AudioBase64 != "" {
		url, err := s.audio.PutAnswerAudio(ctx, sessionID, current.ID, *req.AudioBase64)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to store answer audio",
				"session_id", sessionID,
				"question_id", current.ID,
				"error", err)
		} else {
			current.AnswerAudioURL = &url
		}
	}

	resp := &SubmitAnswerResponse{
		Score:    score,
		Feedback: feedback,
	}
	if current.QuestionNumber >= totalQuestions {
		if err := s.repo.Question().Update(ctx, current); err != nil {
			return nil, fmt.Errorf("failed to save answer: %w", err)
		}
		resp.IsComplete = true
		return resp, nil
	}

	// The answer and its follow-up question land together. A partial
	// write would strand the session: the answer guard above would
	// reject every retry while no next question exists.
	next, err := s.buildNextQuestion(ctx, session, current)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Question().Update(ctx, current); err != nil {
			return fmt.Errorf("failed to save answer: %w", err)
		}
		if err := tx.Question().Create(ctx, next); err != nil {
			return fmt.Errorf("failed to create next question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.NextQuestionID = next.ID
	resp.NextQuestion = next.QuestionText
	resp.QuestionNumber = next.QuestionNumber
	return resp, nil
}

func (s *sessionService) LogAttention(ctx context.Context, sessionID string, req *LogAttentionRequest) error {
	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.Completed() {
		return ErrSessionCompleted
	}

	log := &models.AttentionLog{
		SessionID:         sessionID,
		AttentionDetected: req.AttentionDetected,
		FaceDetected:      req.FaceDetected,
		EyesOnScreen:      req.EyesOnScreen,
	}
	if req.HeadPose != nil {
		if poseJSON, err := json.Marshal(req.HeadPose); err == nil {
			log.HeadPose = datatypes.JSON(poseJSON)
		}
	}

	return s.repo.AttentionLog().Create(ctx, log)
}

func (s *sessionService) Complete(ctx context.Context, sessionID string, req *CompleteSessionRequest) (*SessionReport, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validator.ToValidationErrors(err).Error())
	}

	session, err := s.repo.Session().GetByIDWithQuestions(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// Completion is idempotent: a retry returns the stored report.
	if session.Completed() {
		return buildReport(session), nil
	}

	interview, err := s.repo.Interview().GetByIDWithDetails(ctx, session.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	attentionScore, err := s.attentionScore(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	overall := overallScore(session.Questions, attentionScore)
	feedback := s.finalFeedback(ctx, &interview.Job, session.Questions)

	now := time.Now()
	session.EndedAt = &now
	session.TabSwitches = req.TabSwitches
	session.FullscreenExits = req.FullscreenExits
	session.AttentionScore = &attentionScore
	session.OverallScore = &overall
	session.AIFeedback = &feedback

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Session().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to finalize session: %w", err)
		}
		return tx.Interview().UpdateStatus(ctx, session.InterviewID, models.InterviewCompleted)
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Clear(ctx, session.InterviewID); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear active session cache", "error", err)
	}

	// Violations reach the bus once, with the final counters.
	if req.TabSwitches > 0 {
		if err := s.publisher.PublishInterviewEvent(ctx, events.NewViolationRecordedEvent(
			session.ID, session.InterviewID, models.ViolationTabSwitch, req.TabSwitches, now,
		)); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish violation event", "error", err)
		}
	}
	if req.FullscreenExits > 0 {
		if err := s.publisher.PublishInterviewEvent(ctx, events.NewViolationRecordedEvent(
			session.ID, session.InterviewID, models.ViolationFullscreenExit, req.FullscreenExits, now,
		)); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish violation event", "error", err)
		}
	}

	if err := s.publisher.PublishInterviewEvent(ctx, events.NewSessionCompletedEvent(
		session.ID, session.InterviewID, interview.CandidateID, now,
		overall, attentionScore, req.TabSwitches, req.FullscreenExits, req.TerminatedEarly,
	)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish session completed event", "error", err)
	}

	s.logger.InfoContext(ctx, "Interview session completed",
		"session_id", sessionID,
		"overall_score", overall,
		"attention_score", attentionScore,
		"terminated_early", req.TerminatedEarly)

	return buildReport(session), nil
}

// ===== SCORING HELPERS =====

// attentionScore is the share of telemetry samples where the candidate
// was looking at the screen, as a 0-100 percentage. No samples means a
// neutral 100; absence of telemetry is not evidence of inattention.
func (s *sessionService) attentionScore(ctx context.Context, sessionID string) (int, error) {
	total, attentive, err := s.repo.AttentionLog().CountBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to count attention logs: %w", err)
	}
	if total == 0 {
		return 100, nil
	}
	return int(math.Round(float64(attentive) / float64(total) * 100)), nil
}

// overallScore blends the average answer score (scaled to 0-100) with
// the attention percentage.
func overallScore(questions []models.InterviewQuestion, attentionScore int) int {
	var sum float64
	var scored int
	for i := range questions {
		if questions[i].AIScore != nil {
			sum += *questions[i].AIScore
			scored++
		}
	}

	var answerComponent float64
	if scored > 0 {
		answerComponent = sum / float64(scored) * 10
	}
	overall := answerComponent*answerWeight + float64(attentionScore)*attentionWeight
	return int(math.Round(overall))
}

func (s *sessionService) scoreAnswer(ctx context.Context, questionText, answerText string) (float64, string) {
	eval, err := s.provider.ScoreAnswer(ctx, questionText, answerText)
	if err != nil {
		s.logger.WarnContext(ctx, "Answer scoring failed, using fallback", "error", err)
		return fallbackScore, fallbackFeedback
	}
	return eval.Score, eval.Feedback
}

func (s *sessionService) generateQuestion(ctx context.Context, job *models.Job, previous []ai.AnsweredQuestion, number int) string {
	text, err := s.provider.GenerateQuestion(ctx, job, previous, number)
	if err != nil {
		s.logger.WarnContext(ctx, "Question generation failed, using fallback",
			"question_number", number,
			"error", err)
		return fallbackQuestion(job, number)
	}
	return text
}

func (s *sessionService) finalFeedback(ctx context.Context, job *models.Job, questions []models.InterviewQuestion) string {
	answered := answeredQuestions(questions)
	text, err := s.provider.FinalFeedback(ctx, job, answered)
	if err != nil {
		s.logger.WarnContext(ctx, "Final feedback generation failed, using fallback", "error", err)
		return "The interview was completed. A detailed evaluation could not be generated automatically."
	}
	return text
}

// fallbackQuestion produces a deterministic question from the job's
// skill list when the provider is down.
func fallbackQuestion(job *models.Job, number int) string {
	topic := job.Title
	if len(job.RequiredSkills) > 0 {
		topic = job.RequiredSkills[(number-1)%len(job.RequiredSkills)]
	}
	return fmt.Sprintf("Tell me about your experience with %s.", topic)
}

// buildNextQuestion generates the follow-up question from the answered
// history. It performs no writes; the caller persists the result alongside
// the answer.
func (s *sessionService) buildNextQuestion(ctx context.Context, session *models.InterviewSession, answered *models.InterviewQuestion) (*models.InterviewQuestion, error) {
	interview, err := s.repo.Interview().GetByIDWithDetails(ctx, session.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	previous, err := s.repo.Question().GetBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answered questions: %w", err)
	}

	history := make([]ai.AnsweredQuestion, 0, len(previous))
	for _, q := range previous {
		// The triggering answer is not yet persisted; take it from the
		// in-memory record.
		if q.ID == answered.ID {
			q = answered
		}
		if q.AnswerText == nil {
			continue
		}
		history = append(history, ai.AnsweredQuestion{
			Question: q.QuestionText,
			Answer:   *q.AnswerText,
			Score:    q.AIScore,
		})
	}

	return &models.InterviewQuestion{
		ID:             uuid.NewString(),
		SessionID:      session.ID,
		QuestionNumber: answered.QuestionNumber + 1,
		QuestionText:   s.generateQuestion(ctx, &interview.Job, history, answered.QuestionNumber+1),
	}, nil
}

func answeredQuestions(questions []models.InterviewQuestion) []ai.AnsweredQuestion {
	answered := make([]ai.AnsweredQuestion, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		if q.AnswerText == nil {
			continue
		}
		answered = append(answered, ai.AnsweredQuestion{
			Question: q.QuestionText,
			Answer:   *q.AnswerText,
			Score:    q.AIScore,
		})
	}
	return answered
}

func buildReport(session *models.InterviewSession) *SessionReport {
	report := &SessionReport{
		SessionID:       session.ID,
		InterviewID:     session.InterviewID,
		TabSwitches:     session.TabSwitches,
		FullscreenExits: session.FullscreenExits,
	}
	if session.OverallScore != nil {
		report.OverallScore = *session.OverallScore
	}
	if session.AttentionScore != nil {
		report.AttentionScore = *session.AttentionScore
	}
	if session.AIFeedback != nil {
		report.Feedback = *session.AIFeedback
	}
	for i := range session.Questions {
		q := &session.Questions[i]
		report.Questions = append(report.Questions, QuestionReport{
			QuestionNumber: q.QuestionNumber,
			QuestionText:   q.QuestionText,
			AnswerText:     q.AnswerText,
			AnswerAudioURL: q.AnswerAudioURL,
			AIScore:        q.AIScore,
			AIFeedback:     q.AIFeedback,
		})
	}
	return report
}
