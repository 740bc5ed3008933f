package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/iiuc-platform/interview-service/internal/validator"
)

type interviewService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

func NewInterviewService(repo repositories.Repository, logger utils.Logger, v *validator.Validator) InterviewService {
	return &interviewService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// ===== CORE INTERVIEW OPERATIONS =====

func (s *interviewService) Create(ctx context.Context, req *CreateInterviewRequest, recruiterID string) (*models.Interview, error) {
	s.logger.InfoContext(ctx, "Scheduling interview",
		"job_id", req.JobID,
		"candidate_id", req.CandidateID,
		"recruiter_id", recruiterID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validator.ToValidationErrors(err).Error())
	}

	// The job must exist; question generation needs its context later.
	if _, err := s.repo.Job().GetByID(ctx, req.JobID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = 30
	}

	interview := &models.Interview{
		ID:              uuid.NewString(),
		JobID:           req.JobID,
		CandidateID:     req.CandidateID,
		RecruiterID:     recruiterID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Status:          models.InterviewScheduled,
	}

	if err := s.repo.Interview().Create(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	s.logger.InfoContext(ctx, "Interview scheduled", "interview_id", interview.ID)
	return interview, nil
}

func (s *interviewService) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	interview, err := s.repo.Interview().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return interview, nil
}

func (s *interviewService) List(ctx context.Context, req *ListInterviewsRequest) (*InterviewListResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validator.ToValidationErrors(err).Error())
	}

	filters := s.buildFilters(req)
	interviews, total, err := s.repo.Interview().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

	return &InterviewListResponse{
		Interviews: interviews,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

func (s *interviewService) ListByCandidate(ctx context.Context, candidateID string, req *ListInterviewsRequest) (*InterviewListResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validator.ToValidationErrors(err).Error())
	}

	filters := s.buildFilters(req)
	interviews, total, err := s.repo.Interview().GetByCandidate(ctx, candidateID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

	return &InterviewListResponse{
		Interviews: interviews,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

func (s *interviewService) Cancel(ctx context.Context, id string, recruiterID string) error {
	interview, err := s.repo.Interview().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInterviewNotFound
		}
		return fmt.Errorf("failed to get interview: %w", err)
	}

	if interview.RecruiterID != recruiterID {
		return ErrForbidden
	}
	if interview.Status == models.InterviewCompleted {
		return ErrSessionCompleted
	}

	if err := s.repo.Interview().UpdateStatus(ctx, id, models.InterviewCancelled); err != nil {
		return fmt.Errorf("failed to cancel interview: %w", err)
	}

	s.logger.InfoContext(ctx, "Interview cancelled", "interview_id", id)
	return nil
}

func (s *interviewService) buildFilters(req *ListInterviewsRequest) repositories.InterviewFilters {
	limit := req.Limit
	if limit == 0 {
		limit = 20
	}
	return repositories.InterviewFilters{
		Status:    req.Status,
		JobID:     req.JobID,
		Limit:     limit,
		Offset:    req.Offset,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
}

// interviewStartable reports whether a session may begin for the interview.
func interviewStartable(interview *models.Interview) error {
	switch interview.Status {
	case models.InterviewCancelled:
		return ErrInterviewCancelled
	case models.InterviewCompleted:
		return ErrSessionCompleted
	case models.InterviewScheduled, models.InterviewInProgress:
		return nil
	default:
		return ErrInterviewNotStartable
	}
}
