package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/services"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/iiuc-platform/interview-service/internal/validator"
)

type InterviewHandler struct {
	BaseHandler
	interviews services.InterviewService
	sessions   services.SessionService
	reports    services.ReportService
	validator  *validator.Validator
}

func NewInterviewHandler(
	interviews services.InterviewService,
	sessions services.SessionService,
	reports services.ReportService,
	v *validator.Validator,
	logger utils.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		BaseHandler: NewBaseHandler(logger),
		interviews:  interviews,
		sessions:    sessions,
		reports:     reports,
		validator:   v,
	}
}

// ===== INTERVIEW MANAGEMENT =====

// CreateInterview schedules a new interview
// @Summary Schedule interview
// @Tags interviews
// @Accept json
// @Produce json
// @Param interview body services.CreateInterviewRequest true "Interview data"
// @Success 201 {object} models.Interview
// @Failure 400 {object} ErrorResponse
// @Router /interviews [post]
func (h *InterviewHandler) CreateInterview(c *gin.Context) {
	var req services.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	recruiterID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	interview, err := h.interviews.Create(c.Request.Context(), &req, recruiterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, interview)
}

// GetInterview retrieves an interview by ID
// @Summary Get interview
// @Tags interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} models.Interview
// @Failure 404 {object} ErrorResponse
// @Router /interviews/{id} [get]
func (h *InterviewHandler) GetInterview(c *gin.Context) {
	interview, err := h.interviews.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// ListInterviews lists interviews with filtering and pagination
func (h *InterviewHandler) ListInterviews(c *gin.Context) {
	req, ok := h.bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.interviews.List(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMyInterviews lists interviews for the authenticated candidate
func (h *InterviewHandler) ListMyInterviews(c *gin.Context) {
	candidateID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	req, ok := h.bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.interviews.ListByCandidate(c.Request.Context(), candidateID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelInterview cancels a scheduled interview
func (h *InterviewHandler) CancelInterview(c *gin.Context) {
	recruiterID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.interviews.Cancel(c.Request.Context(), c.Param("id"), recruiterID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Interview cancelled"})
}

// ===== SESSION OPERATIONS =====

// StartSession begins a proctored session for an interview
// @Summary Start session
// @Tags sessions
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} services.StartSessionResponse
// @Failure 409 {object} ErrorResponse
// @Router /interviews/{id}/start [post]
func (h *InterviewHandler) StartSession(c *gin.Context) {
	candidateID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	resp, err := h.sessions.Start(c.Request.Context(), c.Param("id"), candidateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitAnswer records the answer to the session's current question
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.sessions.SubmitAnswer(c.Request.Context(), c.Param("session_id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LogAttention ingests one attention telemetry sample
func (h *InterviewHandler) LogAttention(c *gin.Context) {
	var req services.LogAttentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessions.LogAttention(c.Request.Context(), c.Param("session_id"), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "Attention sample recorded"})
}

// CompleteSession finalizes the session and returns the report
func (h *InterviewHandler) CompleteSession(c *gin.Context) {
	var req services.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	report, err := h.sessions.Complete(c.Request.Context(), c.Param("session_id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ===== REPORTS =====

// GetReport returns the finalized session report
func (h *InterviewHandler) GetReport(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportReport streams the session report as an xlsx workbook
func (h *InterviewHandler) ExportReport(c *gin.Context) {
	sessionID := c.Param("session_id")
	data, err := h.reports.ExportXLSX(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("interview-report-%s.xlsx", sessionID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ===== HELPERS =====

func (h *InterviewHandler) bindListRequest(c *gin.Context) (*services.ListInterviewsRequest, bool) {
	var req services.ListInterviewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return nil, false
	}
	if status := c.Query("status"); status != "" {
		s := models.InterviewStatus(status)
		req.Status = &s
	}
	if jobID := c.Query("job_id"); jobID != "" {
		req.JobID = &jobID
	}
	return &req, true
}

// handleServiceError maps service errors onto HTTP statuses. Sequencing
// and concurrency failures carry a machine-readable code so clients can
// distinguish them from generic conflicts.
func (h *InterviewHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsOutOfOrder(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
			Code:    "out_of_order",
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
			Code:    "conflict",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrSessionNoFindings):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
			Code:    "conflict",
		})
	case errors.Is(err, services.ErrInterviewCancelled),
		errors.Is(err, services.ErrInterviewNotStartable):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation failed",
				Details: validationErrs,
			})
			return
		}
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
