package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iiuc-platform/interview-service/internal/models"
	yandexgpt "github.com/sheeiavellie/go-yandexgpt"
)

// Provider generates interview questions and scores candidate answers.
// Callers must treat every method as fallible and degrade gracefully; a
// provider outage never blocks an interview.
type Provider interface {
	GenerateQuestion(ctx context.Context, job *models.Job, previous []AnsweredQuestion, questionNumber int) (string, error)
	ScoreAnswer(ctx context.Context, questionText, answerText string) (*AnswerEvaluation, error)
	FinalFeedback(ctx context.Context, job *models.Job, answered []AnsweredQuestion) (string, error)
}

// AnsweredQuestion is the question/answer pair context fed back into the
// model for follow-up generation and final feedback.
type AnsweredQuestion struct {
	Question string
	Answer   string
	Score    *float64
}

// AnswerEvaluation is the model's judgment of a single answer.
type AnswerEvaluation struct {
	Score    float64 `json:"score"` // 0-10
	Feedback string  `json:"feedback"`
}

type yandexProvider struct {
	client  *yandexgpt.YandexGPTClient
	catalog string
}

func NewYandexProvider(iamToken, catalogID string) Provider {
	return &yandexProvider{
		client:  yandexgpt.NewYandexGPTClientWithIAMToken(iamToken),
		catalog: catalogID,
	}
}

func (p *yandexProvider) complete(ctx context.Context, system, user string) (string, error) {
	request := yandexgpt.YandexGPTRequest{
		ModelURI: yandexgpt.MakeModelURI(p.catalog, yandexgpt.YandexGPTModelLite),
		CompletionOptions: yandexgpt.YandexGPTCompletionOptions{
			Stream:      false,
			Temperature: 0.3,
			MaxTokens:   2000,
		},
		Messages: []yandexgpt.YandexGPTMessage{
			{
				Role: yandexgpt.YandexGPTMessageRoleSystem,
				Text: system,
			},
			{
				Role: yandexgpt.YandexGPTMessageRoleUser,
				Text: user,
			},
		},
	}

	response, err := p.client.CreateRequest(ctx, request)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(response.Result.Alternatives) == 0 {
		return "", fmt.Errorf("completion returned no alternatives")
	}
	return response.Result.Alternatives[0].Message.Text, nil
}

func (p *yandexProvider) GenerateQuestion(ctx context.Context, job *models.Job, previous []AnsweredQuestion, questionNumber int) (string, error) {
	system := "You are a professional technical interviewer. Ask one concise spoken-style interview question. Respond with the question text only, no numbering or preamble."

	var sb strings.Builder
	fmt.Fprintf(&sb, "Position: %s\n", job.Title)
	if job.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", job.Description)
	}
	if len(job.RequiredSkills) > 0 {
		fmt.Fprintf(&sb, "Required skills: %s\n", strings.Join(job.RequiredSkills, ", "))
	}
	fmt.Fprintf(&sb, "This is question %d of the interview.\n", questionNumber)
	for i, qa := range previous {
		fmt.Fprintf(&sb, "Q%d: %s\nA%d: %s\n", i+1, qa.Question, i+1, qa.Answer)
	}

	text, err := p.complete(ctx, system, sb.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *yandexProvider) ScoreAnswer(ctx context.Context, questionText, answerText string) (*AnswerEvaluation, error) {
	system := `You are a strict but fair technical interviewer. Score the candidate's answer from 0 to 10 and give one or two sentences of feedback. Respond with JSON only: {"score": <number>, "feedback": "<text>"}`

	user := fmt.Sprintf("Question: %s\n\nAnswer: %s", questionText, answerText)

	text, err := p.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var eval AnswerEvaluation
	if err := json.Unmarshal([]byte(extractJSON(text)), &eval); err != nil {
		return nil, fmt.Errorf("unparseable evaluation %q: %w", text, err)
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 10 {
		eval.Score = 10
	}
	return &eval, nil
}

func (p *yandexProvider) FinalFeedback(ctx context.Context, job *models.Job, answered []AnsweredQuestion) (string, error) {
	system := "You are a technical interviewer writing a short hiring summary. In at most four sentences, summarize the candidate's strengths and weaknesses across the interview. Respond with the summary text only."

	var sb strings.Builder
	fmt.Fprintf(&sb, "Position: %s\n", job.Title)
	for i, qa := range answered {
		fmt.Fprintf(&sb, "Q%d: %s\nA%d: %s\n", i+1, qa.Question, i+1, qa.Answer)
		if qa.Score != nil {
			fmt.Fprintf(&sb, "Score: %.1f/10\n", *qa.Score)
		}
	}

	text, err := p.complete(ctx, system, sb.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// extractJSON strips markdown fences and surrounding prose the model
// sometimes wraps around its JSON payload.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
