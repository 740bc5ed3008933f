package services

import (
	"context"
	"fmt"

	"github.com/iiuc-platform/interview-service/internal/repositories"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

type reportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewReportService(repo repositories.Repository, logger utils.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *reportService) Get(ctx context.Context, sessionID string) (*SessionReport, error) {
	session, err := s.repo.Session().GetByIDWithQuestions(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !session.Completed() {
		return nil, ErrSessionNoFindings
	}
	return buildReport(session), nil
}

// ExportXLSX renders the session report as a two-sheet workbook: a
// summary sheet and a per-question breakdown.
func (s *reportService) ExportXLSX(ctx context.Context, sessionID string) ([]byte, error) {
	report, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	summarySheet := "Summary"
	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	summaryRows := [][]interface{}{
		{"Session ID", report.SessionID},
		{"Interview ID", report.InterviewID},
		{"Overall Score", report.OverallScore},
		{"Attention Score", report.AttentionScore},
		{"Tab Switches", report.TabSwitches},
		{"Fullscreen Exits", report.FullscreenExits},
		{"Feedback", report.Feedback},
	}
	for rowIndex, row := range summaryRows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(summarySheet, cell, value)
		}
	}

	questionSheet := "Questions"
	if _, err := f.NewSheet(questionSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"#", "Question", "Answer", "Audio URL", "AI Score", "AI Feedback"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(questionSheet, cell, header)
	}

	for rowIndex, q := range report.Questions {
		row := []interface{}{
			q.QuestionNumber,
			q.QuestionText,
			stringOrEmpty(q.AnswerText),
			stringOrEmpty(q.AnswerAudioURL),
		}
		if q.AIScore != nil {
			row = append(row, *q.AIScore)
		} else {
			row = append(row, "")
		}
		row = append(row, stringOrEmpty(q.AIFeedback))

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(questionSheet, cell, value)
		}
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported session report", "session_id", sessionID)
	return buf.Bytes(), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
