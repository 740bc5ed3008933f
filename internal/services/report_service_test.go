package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func completedSession() *models.InterviewSession {
	session := answeredSession()
	now := time.Now()
	score := 73
	attention := 80
	feedback := "Confident answers throughout."
	session.EndedAt = &now
	session.OverallScore = &score
	session.AttentionScore = &attention
	session.AIFeedback = &feedback
	session.TabSwitches = 3
	session.FullscreenExits = 1
	return session
}

func TestReportService_Get(t *testing.T) {
	repo := newMockRepository()
	service := NewReportService(repo, quietLogger())

	repo.session.On("GetByIDWithQuestions", mock.Anything, "sess-1").Return(completedSession(), nil)

	report, err := service.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 73, report.OverallScore)
	assert.Equal(t, 80, report.AttentionScore)
	assert.Equal(t, 3, report.TabSwitches)
	require.Len(t, report.Questions, 2)
	assert.Equal(t, 1, report.Questions[0].QuestionNumber)
}

func TestReportService_Get_SessionStillRunning(t *testing.T) {
	repo := newMockRepository()
	service := NewReportService(repo, quietLogger())

	repo.session.On("GetByIDWithQuestions", mock.Anything, "sess-1").Return(liveSession(), nil)

	_, err := service.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrSessionNoFindings)
}

func TestReportService_Get_NotFound(t *testing.T) {
	repo := newMockRepository()
	service := NewReportService(repo, quietLogger())

	repo.session.On("GetByIDWithQuestions", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReportService_ExportXLSX(t *testing.T) {
	repo := newMockRepository()
	service := NewReportService(repo, quietLogger())

	repo.session.On("GetByIDWithQuestions", mock.Anything, "sess-1").Return(completedSession(), nil)

	data, err := service.ExportXLSX(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer workbook.Close()

	// Only the two report sheets survive; the default sheet is dropped.
	assert.ElementsMatch(t, []string{"Summary", "Questions"}, workbook.GetSheetList())

	sessionID, err := workbook.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sessionID)

	overall, err := workbook.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "73", overall)

	firstQuestion, err := workbook.GetCellValue("Questions", "B2")
	require.NoError(t, err)
	assert.Equal(t, "one", firstQuestion)

	firstScore, err := workbook.GetCellValue("Questions", "E2")
	require.NoError(t, err)
	assert.Equal(t, "8", firstScore)
}
