package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/iiuc-platform/interview-service/internal/ai"
	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/stretchr/testify/mock"
)

func quietSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quietLogger() utils.Logger {
	return utils.NewSlogLogger(quietSlog())
}

// MockInterviewRepository is a mock implementation of InterviewRepository
type MockInterviewRepository struct {
	mock.Mock
}

func (m *MockInterviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	args := m.Called(ctx, interview)
	return args.Error(0)
}

func (m *MockInterviewRepository) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) GetByIDWithDetails(ctx context.Context, id string) (*models.Interview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) Update(ctx context.Context, interview *models.Interview) error {
	args := m.Called(ctx, interview)
	return args.Error(0)
}

func (m *MockInterviewRepository) UpdateStatus(ctx context.Context, id string, status models.InterviewStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockInterviewRepository) List(ctx context.Context, filters repositories.InterviewFilters) ([]*models.Interview, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Interview), args.Get(1).(int64), args.Error(2)
}

func (m *MockInterviewRepository) GetByCandidate(ctx context.Context, candidateID string, filters repositories.InterviewFilters) ([]*models.Interview, int64, error) {
	args := m.Called(ctx, candidateID, filters)
	return args.Get(0).([]*models.Interview), args.Get(1).(int64), args.Error(2)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.InterviewSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.InterviewSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterviewSession), args.Error(1)
}

func (m *MockSessionRepository) GetByIDWithQuestions(ctx context.Context, id string) (*models.InterviewSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterviewSession), args.Error(1)
}

func (m *MockSessionRepository) GetActiveByInterview(ctx context.Context, interviewID string) (*models.InterviewSession, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterviewSession), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, session *models.InterviewSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.InterviewQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.InterviewQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterviewQuestion), args.Error(1)
}

func (m *MockQuestionRepository) GetBySession(ctx context.Context, sessionID string) ([]*models.InterviewQuestion, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InterviewQuestion), args.Error(1)
}

func (m *MockQuestionRepository) GetCurrent(ctx context.Context, sessionID string) (*models.InterviewQuestion, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterviewQuestion), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.InterviewQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

// MockAttentionLogRepository is a mock implementation of AttentionLogRepository
type MockAttentionLogRepository struct {
	mock.Mock
}

func (m *MockAttentionLogRepository) Create(ctx context.Context, log *models.AttentionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAttentionLogRepository) GetBySession(ctx context.Context, sessionID string) ([]*models.AttentionLog, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]*models.AttentionLog), args.Error(1)
}

func (m *MockAttentionLogRepository) CountBySession(ctx context.Context, sessionID string) (int64, int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

// MockRepository aggregates the entity mocks behind the Repository interface.
// WithTransaction runs the callback against the same mock set.
type MockRepository struct {
	interview *MockInterviewRepository
	session   *MockSessionRepository
	question  *MockQuestionRepository
	attention *MockAttentionLogRepository
	job       *MockJobRepository

	transactions int
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		interview: &MockInterviewRepository{},
		session:   &MockSessionRepository{},
		question:  &MockQuestionRepository{},
		attention: &MockAttentionLogRepository{},
		job:       &MockJobRepository{},
	}
}

func (m *MockRepository) Interview() repositories.InterviewRepository       { return m.interview }
func (m *MockRepository) Session() repositories.SessionRepository           { return m.session }
func (m *MockRepository) Question() repositories.QuestionRepository        { return m.question }
func (m *MockRepository) AttentionLog() repositories.AttentionLogRepository { return m.attention }
func (m *MockRepository) Job() repositories.JobRepository                   { return m.job }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	m.transactions++
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

// MockProvider is a mock implementation of ai.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GenerateQuestion(ctx context.Context, job *models.Job, previous []ai.AnsweredQuestion, questionNumber int) (string, error) {
	args := m.Called(ctx, job, previous, questionNumber)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) ScoreAnswer(ctx context.Context, questionText, answerText string) (*ai.AnswerEvaluation, error) {
	args := m.Called(ctx, questionText, answerText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.AnswerEvaluation), args.Error(1)
}

func (m *MockProvider) FinalFeedback(ctx context.Context, job *models.Job, answered []ai.AnsweredQuestion) (string, error) {
	args := m.Called(ctx, job, answered)
	return args.String(0), args.Error(1)
}

// fakeSessionCache is an in-memory SessionCache.
type fakeSessionCache struct {
	mu      sync.Mutex
	active  map[string]string
	setErr  error
	getErr  error
	cleared []string
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{active: make(map[string]string)}
}

func (c *fakeSessionCache) SetActive(ctx context.Context, interviewID, sessionID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.active[interviewID] = sessionID
	return nil
}

func (c *fakeSessionCache) ActiveSession(ctx context.Context, interviewID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.active[interviewID], nil
}

func (c *fakeSessionCache) Clear(ctx context.Context, interviewID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, interviewID)
	c.cleared = append(c.cleared, interviewID)
	return nil
}

// fakeAudioStore is an in-memory AudioStore.
type fakeAudioStore struct {
	putErr error
	stored map[string]string // questionID -> payload
}

func newFakeAudioStore() *fakeAudioStore {
	return &fakeAudioStore{stored: make(map[string]string)}
}

func (s *fakeAudioStore) PutAnswerAudio(ctx context.Context, sessionID, questionID, audioBase64 string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.stored[questionID] = audioBase64
	return "s3://interview-audio/sessions/" + sessionID + "/answers/" + questionID + ".webm", nil
}

func (s *fakeAudioStore) EnsureBucket(ctx context.Context) error { return nil }
