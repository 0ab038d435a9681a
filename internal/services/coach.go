package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/clients/openrouter"
	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/logger"
)

// HintRequest carries the exercise context for a coaching hint.
type HintRequest struct {
	ExerciseTitle string         `json:"exercise_title"`
	UserCode      string         `json:"user_code"`
	Error         string         `json:"error,omitempty"`
	Attempt       int            `json:"attempt"`
	Context       map[string]any `json:"context,omitempty"`
}

// CoachService produces contextual hints and stage-based motivation
// messages.
type CoachService interface {
	Hint(ctx context.Context, req HintRequest) (string, error)
	Motivation(domainID, stage string) (string, error)
}

type coachService struct {
	log      *logger.Logger
	ai       openrouter.Client
	registry *domains.Registry
}

func NewCoachService(baseLog *logger.Logger, ai openrouter.Client, registry *domains.Registry) CoachService {
	return &coachService{log: baseLog.With("service", "CoachService"), ai: ai, registry: registry}
}

func (s *coachService) Hint(ctx context.Context, req HintRequest) (string, error) {
	if strings.TrimSpace(req.ExerciseTitle) == "" {
		return "", apperr.Validation("exercise_title is required")
	}
	if req.Attempt < 1 {
		req.Attempt = 1
	}

	errText := req.Error
	if errText == "" {
		errText = "No error"
	}

	var contextLines []string
	for k, v := range req.Context {
		contextLines = append(contextLines, fmt.Sprintf("- %s: %v", k, v))
	}
	contextBlock := ""
	if len(contextLines) > 0 {
		contextBlock = "Student background:\n" + strings.Join(contextLines, "\n") + "\n\n"
	}

	prompt := fmt.Sprintf(`%sExercise: %s
Attempt number: %d
Student's code:
%s

Error (if any): %s

Give one specific, encouraging hint that nudges the student toward the fix without giving the full solution. Keep it under 100 words.`,
		contextBlock, req.ExerciseTitle, req.Attempt, req.UserCode, errText)

	s.log.Info("Generating hint", "exercise", req.ExerciseTitle, "attempt", req.Attempt)

	hint, err := s.ai.GenerateText(ctx,
		"You are a supportive, personalized coding tutor. Adapt your teaching style to the student's background.",
		prompt,
		notesTemperature,
	)
	if err != nil {
		return "", apperr.Generation("hint", err)
	}
	return hint, nil
}

// Motivation picks a message for the stage from the domain's configured
// set. Unknown domains are a ValidationError; unknown stages fall back
// inside the domain.
func (s *coachService) Motivation(domainID, stage string) (string, error) {
	dom, ok := s.registry.Get(domainID)
	if !ok {
		return "", apperr.Validation("unsupported domain %q", domainID)
	}
	msgs := dom.MotivationMessages(stage)
	if len(msgs) == 0 {
		return "Keep going, you're doing great!", nil
	}
	return msgs[rand.Intn(len(msgs))], nil
}
