package services

import (
	"context"
	"testing"
	"time"

	"github.com/iiuc-platform/interview-service/internal/ai"
	"github.com/iiuc-platform/interview-service/internal/events"
	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sessionServiceFixture struct {
	repo      *MockRepository
	cache     *fakeSessionCache
	provider  *MockProvider
	audio     *fakeAudioStore
	publisher *events.MockEventPublisher
	service   SessionService
}

func newSessionServiceFixture(t *testing.T) *sessionServiceFixture {
	t.Helper()
	repo := newMockRepository()
	sessionCache := newFakeSessionCache()
	provider := &MockProvider{}
	audio := newFakeAudioStore()
	publisher := events.NewMockEventPublisher(quietSlog())

	return &sessionServiceFixture{
		repo:      repo,
		cache:     sessionCache,
		provider:  provider,
		audio:     audio,
		publisher: publisher,
		service:   NewSessionService(repo, sessionCache, provider, audio, publisher, quietLogger(), validator.New()),
	}
}

func scheduledInterview() *models.Interview {
	return &models.Interview{
		ID:          "int-1",
		JobID:       "job-1",
		CandidateID: "cand-1",
		RecruiterID: "rec-1",
		Status:      models.InterviewScheduled,
		ScheduledAt: time.Now(),
		Job: models.Job{
			ID:             "job-1",
			Title:          "Backend Engineer",
			RequiredSkills: models.Skills{"Go", "PostgreSQL", "Kafka"},
		},
	}
}

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

// ===== START =====

func TestSessionService_Start(t *testing.T) {
	f := newSessionServiceFixture(t)
	ctx := context.Background()

	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.session.On("GetActiveByInterview", mock.Anything, "int-1").Return(nil, gorm.ErrRecordNotFound)
	f.repo.session.On("Create", mock.Anything, mock.AnythingOfType("*models.InterviewSession")).Return(nil)
	f.repo.question.On("Create", mock.Anything, mock.MatchedBy(func(q *models.InterviewQuestion) bool {
		return q.QuestionNumber == 1 && q.QuestionText != ""
	})).Return(nil)
	f.repo.interview.On("UpdateStatus", mock.Anything, "int-1", models.InterviewInProgress).Return(nil)
	f.provider.On("GenerateQuestion", mock.Anything, mock.Anything, mock.Anything, 1).
		Return("What draws you to backend work?", nil)

	resp, err := f.service.Start(ctx, "int-1", "cand-1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.QuestionID)
	assert.Equal(t, "What draws you to backend work?", resp.Question)
	assert.Equal(t, 1, resp.QuestionNumber)
	assert.Equal(t, 5, resp.TotalQuestions)

	// The new session id is cached as the interview's single live session.
	cached, _ := f.cache.ActiveSession(ctx, "int-1")
	assert.Equal(t, resp.SessionID, cached)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSessionStarted, published[0].Type)

	f.repo.interview.AssertExpectations(t)
	f.repo.session.AssertExpectations(t)
	f.repo.question.AssertExpectations(t)
}

func TestSessionService_Start_QuestionFallbackWhenProviderDown(t *testing.T) {
	f := newSessionServiceFixture(t)

	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.session.On("GetActiveByInterview", mock.Anything, "int-1").Return(nil, gorm.ErrRecordNotFound)
	f.repo.session.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.question.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.interview.On("UpdateStatus", mock.Anything, "int-1", models.InterviewInProgress).Return(nil)
	f.provider.On("GenerateQuestion", mock.Anything, mock.Anything, mock.Anything, 1).
		Return("", assert.AnError)

	resp, err := f.service.Start(context.Background(), "int-1", "cand-1")
	require.NoError(t, err)

	// First skill from the job drives the canned question.
	assert.Equal(t, "Tell me about your experience with Go.", resp.Question)
}

func TestSessionService_Start_Forbidden(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)

	_, err := f.service.Start(context.Background(), "int-1", "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSessionService_Start_NotFound(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.Start(context.Background(), "missing", "cand-1")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
	assert.True(t, IsNotFound(err))
}

func TestSessionService_Start_CancelledInterview(t *testing.T) {
	f := newSessionServiceFixture(t)
	interview := scheduledInterview()
	interview.Status = models.InterviewCancelled
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(interview, nil)

	_, err := f.service.Start(context.Background(), "int-1", "cand-1")
	assert.ErrorIs(t, err, ErrInterviewCancelled)
}

func TestSessionService_Start_ConflictFromCache(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	require.NoError(t, f.cache.SetActive(context.Background(), "int-1", "sess-live", time.Hour))

	_, err := f.service.Start(context.Background(), "int-1", "cand-1")
	assert.ErrorIs(t, err, ErrSessionConflict)
	assert.True(t, IsConflict(err))

	// The conflict is decided from the cache; no session rows are touched.
	f.repo.session.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSessionService_Start_ConflictFromDatabaseWhenCacheDown(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.cache.getErr = assert.AnError
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.session.On("GetActiveByInterview", mock.Anything, "int-1").
		Return(&models.InterviewSession{ID: "sess-live", InterviewID: "int-1"}, nil)

	_, err := f.service.Start(context.Background(), "int-1", "cand-1")
	assert.ErrorIs(t, err, ErrSessionConflict)
}

// ===== SUBMIT ANSWER =====

func liveSession() *models.InterviewSession {
	return &models.InterviewSession{
		ID:          "sess-1",
		InterviewID: "int-1",
		StartedAt:   time.Now().Add(-5 * time.Minute),
	}
}

func TestSessionService_SubmitAnswer(t *testing.T) {
	f := newSessionServiceFixture(t)
	current := &models.InterviewQuestion{
		ID:             "q-2",
		SessionID:      "sess-1",
		QuestionNumber: 2,
		QuestionText:   "How do you handle failures?",
	}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)
	f.provider.On("ScoreAnswer", mock.Anything, current.QuestionText, "With retries.").
		Return(&ai.AnswerEvaluation{Score: 7.5, Feedback: "Reasonable depth."}, nil)
	f.repo.question.On("Update", mock.Anything, mock.MatchedBy(func(q *models.InterviewQuestion) bool {
		return q.ID == "q-2" && q.AIScore != nil && *q.AIScore == 7.5
	})).Return(nil)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.question.On("GetBySession", mock.Anything, "sess-1").Return([]*models.InterviewQuestion{current}, nil)
	f.provider.On("GenerateQuestion", mock.Anything, mock.Anything, mock.Anything, 3).
		Return("Describe a production incident you resolved.", nil)
	f.repo.question.On("Create", mock.Anything, mock.MatchedBy(func(q *models.InterviewQuestion) bool {
		return q.QuestionNumber == 3
	})).Return(nil)

	resp, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID: "q-2",
		AnswerText: strPtr("With retries."),
	})
	require.NoError(t, err)
	assert.Equal(t, 7.5, resp.Score)
	assert.False(t, resp.IsComplete)
	assert.Equal(t, 3, resp.QuestionNumber)
	assert.NotEmpty(t, resp.NextQuestionID)

	// Answer save and next-question create share one transaction.
	assert.Equal(t, 1, f.repo.transactions)
}

func TestSessionService_SubmitAnswer_NextQuestionFailureSavesNothing(t *testing.T) {
	f := newSessionServiceFixture(t)
	current := &models.InterviewQuestion{
		ID:             "q-2",
		SessionID:      "sess-1",
		QuestionNumber: 2,
		QuestionText:   "How do you handle failures?",
	}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)
	f.provider.On("ScoreAnswer", mock.Anything, mock.Anything, mock.Anything).
		Return(&ai.AnswerEvaluation{Score: 7, Feedback: "fine"}, nil)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.question.On("GetBySession", mock.Anything, "sess-1").Return([]*models.InterviewQuestion{current}, nil)
	f.provider.On("GenerateQuestion", mock.Anything, mock.Anything, mock.Anything, 3).Return("Next?", nil)
	f.repo.question.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.repo.question.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID: "q-2",
		AnswerText: strPtr("With retries."),
	})
	require.Error(t, err)

	// Both writes ran inside the transaction that the create failure
	// rolls back, so a retry starts from an unanswered question.
	assert.Equal(t, 1, f.repo.transactions)
}

func TestSessionService_SubmitAnswer_OutOfOrder(t *testing.T) {
	f := newSessionServiceFixture(t)
	current := &models.InterviewQuestion{ID: "q-3", SessionID: "sess-1", QuestionNumber: 3}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)

	_, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID: "q-2",
		AnswerText: strPtr("stale answer"),
	})
	assert.ErrorIs(t, err, ErrAnswerOutOfOrder)
	assert.True(t, IsOutOfOrder(err))

	// A rejected answer writes nothing.
	f.repo.question.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSessionService_SubmitAnswer_AlreadyAnswered(t *testing.T) {
	f := newSessionServiceFixture(t)
	current := &models.InterviewQuestion{
		ID:             "q-2",
		SessionID:      "sess-1",
		QuestionNumber: 2,
		AnswerText:     strPtr("earlier answer"),
	}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)

	_, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID: "q-2",
		AnswerText: strPtr("second attempt"),
	})
	assert.ErrorIs(t, err, ErrAnswerInProgress)
	assert.True(t, IsConflict(err))
}

func TestSessionService_SubmitAnswer_CompletedSession(t *testing.T) {
	f := newSessionServiceFixture(t)
	session := liveSession()
	now := time.Now()
	session.EndedAt = &now
	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(session, nil)

	_, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID: "q-1",
		AnswerText: strPtr("too late"),
	})
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestSessionService_SubmitAnswer_FallbackScoreOnProviderFailure(t *testing.T) {
	f := newSessionServiceFixture(t)
	current := &models.InterviewQuestion{
		ID:             "q-5",
		SessionID:      "sess-1",
		QuestionNumber: 5,
		QuestionText:   "Any questions for us?",
	}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)
	f.provider.On("ScoreAnswer", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)
	f.repo.question.On("Update", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID: "q-5",
		AnswerText: strPtr("No, thank you."),
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, resp.Score)
	assert.Equal(t, "Unable to score answer automatically.", resp.Feedback)
	assert.True(t, resp.IsComplete)
}

func TestSessionService_SubmitAnswer_LastQuestionCompletes(t *testing.T) {
	f := newSessionServiceFixture(t)
	current := &models.InterviewQuestion{
		ID:             "q-5",
		SessionID:      "sess-1",
		QuestionNumber: 5,
		QuestionText:   "Final question.",
	}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)
	f.provider.On("ScoreAnswer", mock.Anything, mock.Anything, mock.Anything).
		Return(&ai.AnswerEvaluation{Score: 9, Feedback: "Strong close."}, nil)
	f.repo.question.On("Update", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID: "q-5",
		AnswerText: strPtr("Closing thoughts."),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsComplete)
	assert.Empty(t, resp.NextQuestionID)

	// No sixth question is ever generated.
	f.repo.question.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSessionService_SubmitAnswer_StoresAudio(t *testing.T) {
	f := newSessionServiceFixture(t)
	current := &models.InterviewQuestion{
		ID:             "q-5",
		SessionID:      "sess-1",
		QuestionNumber: 5,
		QuestionText:   "Final question.",
	}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)
	f.provider.On("ScoreAnswer", mock.Anything, mock.Anything, mock.Anything).
		Return(&ai.AnswerEvaluation{Score: 6, Feedback: "ok"}, nil)
	f.repo.question.On("Update", mock.Anything, mock.MatchedBy(func(q *models.InterviewQuestion) bool {
		return q.AnswerAudioURL != nil
	})).Return(nil)

	_, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID:  "q-5",
		AnswerText:  strPtr("spoken"),
		AudioBase64: strPtr("aGVsbG8="),
	})
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", f.audio.stored["q-5"])
}

func TestSessionService_SubmitAnswer_AudioFailureDoesNotBlock(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.audio.putErr = assert.AnError
	current := &models.InterviewQuestion{
		ID:             "q-5",
		SessionID:      "sess-1",
		QuestionNumber: 5,
		QuestionText:   "Final question.",
	}

	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.question.On("GetCurrent", mock.Anything, "sess-1").Return(current, nil)
	f.provider.On("ScoreAnswer", mock.Anything, mock.Anything, mock.Anything).
		Return(&ai.AnswerEvaluation{Score: 6, Feedback: "ok"}, nil)
	f.repo.question.On("Update", mock.Anything, mock.MatchedBy(func(q *models.InterviewQuestion) bool {
		return q.AnswerAudioURL == nil && q.AnswerText != nil
	})).Return(nil)

	_, err := f.service.SubmitAnswer(context.Background(), "sess-1", &SubmitAnswerRequest{
		QuestionID:  "q-5",
		AnswerText:  strPtr("spoken"),
		AudioBase64: strPtr("aGVsbG8="),
	})
	require.NoError(t, err)
}

// ===== ATTENTION =====

func TestSessionService_LogAttention(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(liveSession(), nil)
	f.repo.attention.On("Create", mock.Anything, mock.MatchedBy(func(l *models.AttentionLog) bool {
		return l.SessionID == "sess-1" && l.FaceDetected && !l.AttentionDetected && len(l.HeadPose) > 0
	})).Return(nil)

	err := f.service.LogAttention(context.Background(), "sess-1", &LogAttentionRequest{
		AttentionDetected: false,
		FaceDetected:      true,
		EyesOnScreen:      false,
		HeadPose:          &models.HeadPose{Yaw: 31.5, Pitch: -2},
	})
	require.NoError(t, err)
	f.repo.attention.AssertExpectations(t)
}

func TestSessionService_LogAttention_CompletedSession(t *testing.T) {
	f := newSessionServiceFixture(t)
	session := liveSession()
	now := time.Now()
	session.EndedAt = &now
	f.repo.session.On("GetByID", mock.Anything, "sess-1").Return(session, nil)

	err := f.service.LogAttention(context.Background(), "sess-1", &LogAttentionRequest{FaceDetected: true})
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

// ===== COMPLETE =====

func answeredSession() *models.InterviewSession {
	session := liveSession()
	session.Questions = []models.InterviewQuestion{
		{ID: "q-1", SessionID: "sess-1", QuestionNumber: 1, QuestionText: "one",
			AnswerText: strPtr("a1"), AIScore: floatPtr(8)},
		{ID: "q-2", SessionID: "sess-1", QuestionNumber: 2, QuestionText: "two",
			AnswerText: strPtr("a2"), AIScore: floatPtr(6)},
	}
	return session
}

func TestSessionService_Complete_BlendsAnswerAndAttentionScores(t *testing.T) {
	f := newSessionServiceFixture(t)
	session := answeredSession()

	f.repo.session.On("GetByIDWithQuestions", mock.Anything, "sess-1").Return(session, nil)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.attention.On("CountBySession", mock.Anything, "sess-1").Return(int64(10), int64(8), nil)
	f.provider.On("FinalFeedback", mock.Anything, mock.Anything, mock.Anything).
		Return("Confident answers throughout.", nil)
	f.repo.session.On("Update", mock.Anything, mock.MatchedBy(func(s *models.InterviewSession) bool {
		return s.EndedAt != nil && s.TabSwitches == 3 && s.FullscreenExits == 1
	})).Return(nil)
	f.repo.interview.On("UpdateStatus", mock.Anything, "int-1", models.InterviewCompleted).Return(nil)

	report, err := f.service.Complete(context.Background(), "sess-1", &CompleteSessionRequest{
		TabSwitches:     3,
		FullscreenExits: 1,
	})
	require.NoError(t, err)

	// avg(8, 6) = 7 -> 70 on the 0-100 scale; blended 70*0.7 + 80*0.3 = 73.
	assert.Equal(t, 80, report.AttentionScore)
	assert.Equal(t, 73, report.OverallScore)
	assert.Equal(t, "Confident answers throughout.", report.Feedback)
	assert.Equal(t, 3, report.TabSwitches)
	assert.Len(t, report.Questions, 2)

	// Cache entry for the interview is released.
	assert.Contains(t, f.cache.cleared, "int-1")

	// Both violation types plus the completion land on the bus.
	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 3)
	assert.Equal(t, events.EventViolationRecorded, published[0].Type)
	assert.Equal(t, events.EventViolationRecorded, published[1].Type)
	assert.Equal(t, events.EventSessionCompleted, published[2].Type)
}

func TestSessionService_Complete_NoTelemetryMeansNeutralAttention(t *testing.T) {
	f := newSessionServiceFixture(t)
	session := answeredSession()

	f.repo.session.On("GetByIDWithQuestions", mock.Anything, "sess-1").Return(session, nil)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.attention.On("CountBySession", mock.Anything, "sess-1").Return(int64(0), int64(0), nil)
	f.provider.On("FinalFeedback", mock.Anything, mock.Anything, mock.Anything).Return("fine", nil)
	f.repo.session.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.repo.interview.On("UpdateStatus", mock.Anything, "int-1", models.InterviewCompleted).Return(nil)

	report, err := f.service.Complete(context.Background(), "sess-1", &CompleteSessionRequest{})
	require.NoError(t, err)

	// No samples reads as full attention: 70*0.7 + 100*0.3 = 79.
	assert.Equal(t, 100, report.AttentionScore)
	assert.Equal(t, 79, report.OverallScore)
}

func TestSessionService_Complete_Idempotent(t *testing.T) {
	f := newSessionServiceFixture(t)
	session := answeredSession()
	now := time.Now()
	score := 73
	attention := 80
	feedback := "stored verdict"
	session.EndedAt = &now
	session.OverallScore = &score
	session.AttentionScore = &attention
	session.AIFeedback = &feedback

	f.repo.session.On("GetByIDWithQuestions", mock.Anything, "sess-1").Return(session, nil)

	report, err := f.service.Complete(context.Background(), "sess-1", &CompleteSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, 73, report.OverallScore)
	assert.Equal(t, "stored verdict", report.Feedback)

	// A replayed completion re-reads, never re-scores or re-writes.
	f.repo.session.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestSessionService_Complete_FeedbackFallback(t *testing.T) {
	f := newSessionServiceFixture(t)
	session := answeredSession()

	f.repo.session.On("GetByIDWithQuestions", mock.Anything, "sess-1").Return(session, nil)
	f.repo.interview.On("GetByIDWithDetails", mock.Anything, "int-1").Return(scheduledInterview(), nil)
	f.repo.attention.On("CountBySession", mock.Anything, "sess-1").Return(int64(4), int64(4), nil)
	f.provider.On("FinalFeedback", mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)
	f.repo.session.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.repo.interview.On("UpdateStatus", mock.Anything, "int-1", models.InterviewCompleted).Return(nil)

	report, err := f.service.Complete(context.Background(), "sess-1", &CompleteSessionRequest{TerminatedEarly: true})
	require.NoError(t, err)
	assert.Equal(t, "The interview was completed. A detailed evaluation could not be generated automatically.", report.Feedback)
}

// ===== PURE SCORING =====

func TestOverallScoreWeighting(t *testing.T) {
	tests := []struct {
		name      string
		scores    []*float64
		attention int
		expected  int
	}{
		{"perfect everything", []*float64{floatPtr(10), floatPtr(10)}, 100, 100},
		{"average answers full attention", []*float64{floatPtr(5), floatPtr(5)}, 100, 65},
		{"no scored answers", []*float64{nil, nil}, 80, 24},
		{"no questions at all", nil, 50, 15},
		{"mixed scored and unscored", []*float64{floatPtr(9), nil, floatPtr(7)}, 90, 83},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := make([]models.InterviewQuestion, len(tt.scores))
			for i, s := range tt.scores {
				questions[i] = models.InterviewQuestion{QuestionNumber: i + 1, AIScore: s}
			}
			assert.Equal(t, tt.expected, overallScore(questions, tt.attention))
		})
	}
}

func TestFallbackQuestionCyclesSkills(t *testing.T) {
	job := &models.Job{
		Title:          "Platform Engineer",
		RequiredSkills: models.Skills{"Go", "Kubernetes"},
	}

	assert.Equal(t, "Tell me about your experience with Go.", fallbackQuestion(job, 1))
	assert.Equal(t, "Tell me about your experience with Kubernetes.", fallbackQuestion(job, 2))
	assert.Equal(t, "Tell me about your experience with Go.", fallbackQuestion(job, 3))

	// Without skills the job title is the topic.
	bare := &models.Job{Title: "Platform Engineer"}
	assert.Equal(t, "Tell me about your experience with Platform Engineer.", fallbackQuestion(bare, 1))
}
