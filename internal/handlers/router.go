package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/iiuc-platform/interview-service/internal/services"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/iiuc-platform/interview-service/internal/validator"
)

type HandlerManager struct {
	interviewHandler *InterviewHandler
	logger           utils.Logger
}

func NewHandlerManager(
	serviceManager *services.ServiceManager,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		interviewHandler: NewInterviewHandler(
			serviceManager.Interview,
			serviceManager.Session,
			serviceManager.Report,
			v,
			logger,
		),
		logger: logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "interview-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.logger))
	{
		interviews := v1.Group("/interviews")
		{
			interviews.POST("", hm.interviewHandler.CreateInterview)
			interviews.GET("", hm.interviewHandler.ListInterviews)
			interviews.GET("/mine", hm.interviewHandler.ListMyInterviews)
			interviews.GET("/:id", hm.interviewHandler.GetInterview)
			interviews.POST("/:id/cancel", hm.interviewHandler.CancelInterview)
			interviews.POST("/:id/start", hm.interviewHandler.StartSession)

			// Session-scoped routes driven by the client during a live
			// proctored interview.
			sessions := interviews.Group("/sessions/:session_id")
			{
				sessions.POST("/answers", hm.interviewHandler.SubmitAnswer)
				sessions.POST("/attention", hm.interviewHandler.LogAttention)
				sessions.POST("/complete", hm.interviewHandler.CompleteSession)
				sessions.GET("/report", hm.interviewHandler.GetReport)
				sessions.GET("/report/export", hm.interviewHandler.ExportReport)
			}
		}
	}
}
