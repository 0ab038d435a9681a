package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/clients/openrouter"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/types"
)

// OnboardingService generates the personalization questions shown
// before a curriculum is built. Unusable generator output falls back to
// a static question set; the fallback never fails.
type OnboardingService interface {
	GenerateQuestions(ctx context.Context, learningTopic, dailyTime, totalDuration string) ([]types.Question, string, error)
}

type onboardingService struct {
	log *logger.Logger
	ai  openrouter.Client
}

func NewOnboardingService(baseLog *logger.Logger, ai openrouter.Client) OnboardingService {
	return &onboardingService{log: baseLog.With("service", "OnboardingService"), ai: ai}
}

var rejectedTopicPatterns = []string{"cook", "recipe", "food", "game", "entertainment"}

func (s *onboardingService) GenerateQuestions(ctx context.Context, learningTopic, dailyTime, totalDuration string) ([]types.Question, string, error) {
	topic := strings.TrimSpace(learningTopic)
	if len(topic) < 3 {
		return nil, "", apperr.Validation("learning topic must be at least 3 characters long")
	}
	lower := strings.ToLower(topic)
	for _, pattern := range rejectedTopicPatterns {
		if strings.Contains(lower, pattern) {
			return nil, "", apperr.Validation("please enter a professional skill or educational topic")
		}
	}

	s.log.Info("Generating onboarding questions", "topic", topic)

	raw, err := s.ai.GenerateText(ctx,
		"You are an expert curriculum designer who creates personalized learning experiences. Generate exactly 4 questions that will help personalize a learning curriculum for the given topic. Return ONLY valid JSON in the specified format. Do not include any explanation or additional text.",
		questionPrompt(topic, dailyTime, totalDuration),
		contentTemperature,
	)
	if err != nil {
		s.log.Error("Question generation failed, using fallback", "topic", topic, "error", err)
		return fallbackQuestions(topic), fmt.Sprintf("Generated fallback questions for %s", topic), nil
	}

	questions, parseErr := parseQuestions(raw)
	if parseErr != nil {
		s.log.Error("Failed to parse generated questions, using fallback", "topic", topic, "error", parseErr)
		return fallbackQuestions(topic), fmt.Sprintf("Generated fallback questions for %s", topic), nil
	}
	if len(questions) < 3 {
		s.log.Warn("Too few generated questions, using fallback", "topic", topic, "count", len(questions))
		return fallbackQuestions(topic), fmt.Sprintf("Generated fallback questions for %s", topic), nil
	}
	if len(questions) != 4 {
		s.log.Warn("Unexpected question count", "topic", topic, "count", len(questions))
	}

	return questions, fmt.Sprintf("Generated %d personalization questions", len(questions)), nil
}

// parseQuestions tolerates fenced code blocks around the JSON payload.
func parseQuestions(raw string) ([]types.Question, error) {
	jsonStr := strings.TrimSpace(raw)
	if idx := strings.Index(jsonStr, "```json"); idx >= 0 {
		jsonStr = jsonStr[idx+len("```json"):]
		if end := strings.Index(jsonStr, "```"); end >= 0 {
			jsonStr = jsonStr[:end]
		}
	} else if idx := strings.Index(jsonStr, "```"); idx >= 0 {
		jsonStr = jsonStr[idx+len("```"):]
		if end := strings.Index(jsonStr, "```"); end >= 0 {
			jsonStr = jsonStr[:end]
		}
	}
	jsonStr = strings.TrimSpace(jsonStr)

	var payload struct {
		Questions []types.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if payload.Questions == nil {
		return nil, fmt.Errorf("response missing questions field")
	}

	for i := range payload.Questions {
		if payload.Questions[i].ID == "" {
			payload.Questions[i].ID = fmt.Sprintf("question_%d", i+1)
		}
	}
	return payload.Questions, nil
}

func questionPrompt(topic, dailyTime, totalDuration string) string {
	return fmt.Sprintf(`Generate exactly 4 personalized questions to help create the best learning experience for someone who wants to learn: %q

Time commitment: %s daily for %s

Create questions that help determine:
1. Their current experience level with this topic
2. Their preferred learning style (hands-on vs theory)
3. Their specific goals or applications they're interested in
4. Their technical background relevant to this topic

IMPORTANT REQUIREMENTS:
- Generate exactly 4 questions (no more, no less)
- Each question must have 3-4 answer options
- Use only these question types: "single_choice" or "multiple_choice"
- Questions should be specific to %q - not generic
- Make options realistic and cover the full spectrum (beginner to advanced)

Return ONLY valid JSON: {"questions": [{"id": "...", "question": "...", "type": "single_choice", "options": [{"value": "...", "label": "..."}]}]}`,
		topic, dailyTime, totalDuration, topic)
}

// fallbackQuestions is the fully static secondary path, used when the
// generator's output cannot be parsed or is too short.
func fallbackQuestions(topic string) []types.Question {
	return []types.Question{
		{
			ID:       "experience_level",
			Question: fmt.Sprintf("What's your current experience level with %s?", topic),
			Type:     "single_choice",
			Options: []types.QuestionOption{
				{Value: "beginner", Label: "Complete beginner"},
				{Value: "some_experience", Label: "Some experience"},
				{Value: "intermediate", Label: "Intermediate level"},
				{Value: "advanced", Label: "Advanced practitioner"},
			},
		},
		{
			ID:       "learning_style",
			Question: "How do you prefer to learn?",
			Type:     "single_choice",
			Options: []types.QuestionOption{
				{Value: "hands_on", Label: "Hands-on practice (80% doing, 20% theory)"},
				{Value: "balanced", Label: "Balanced approach (60% doing, 40% theory)"},
				{Value: "theory_first", Label: "Theory first (40% doing, 60% theory)"},
			},
		},
		{
			ID:       "learning_goals",
			Question: fmt.Sprintf("What's your primary goal for learning %s?", topic),
			Type:     "single_choice",
			Options: []types.QuestionOption{
				{Value: "career", Label: "Career advancement or job opportunities"},
				{Value: "skills", Label: "Enhance skills for current role"},
				{Value: "personal", Label: "Personal projects and interests"},
				{Value: "academic", Label: "Academic or research purposes"},
			},
		},
		{
			ID:       "technical_background",
			Question: "What technical skills do you already have?",
			Type:     "multiple_choice",
			Options: []types.QuestionOption{
				{Value: "programming", Label: "Programming experience"},
				{Value: "databases", Label: "Database knowledge"},
				{Value: "statistics", Label: "Statistics/Math background"},
				{Value: "none", Label: "No technical background"},
			},
		},
	}
}
