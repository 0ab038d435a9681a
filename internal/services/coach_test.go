package services

import (
	"context"
	"testing"

	"github.com/learnloop/learnloop-backend/internal/apperr"
)

func TestCoachHint(t *testing.T) {
	env := newTestEnv(t)
	env.ai.textResponse = "Try checking the loop bounds."

	svc := NewCoachService(env.log, env.ai, env.registry)
	hint, err := svc.Hint(context.Background(), HintRequest{
		ExerciseTitle: "FizzBuzz",
		UserCode:      "for i in range(100): pass",
		Error:         "IndexError",
		Attempt:       2,
	})
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if hint != "Try checking the loop bounds." {
		t.Fatalf("unexpected hint: %q", hint)
	}

	if _, err := svc.Hint(context.Background(), HintRequest{}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for empty exercise, got %v", err)
	}
}

func TestCoachMotivation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCoachService(env.log, env.ai, env.registry)

	msg, err := svc.Motivation("data_science", "start")
	if err != nil {
		t.Fatalf("Motivation: %v", err)
	}
	if msg == "" {
		t.Fatal("expected a motivation message")
	}

	// Unknown stages fall back inside the domain instead of failing.
	if _, err := svc.Motivation("data_science", "interpretive_dance"); err != nil {
		t.Fatalf("unknown stage must not fail: %v", err)
	}

	if _, err := svc.Motivation("alchemy", "start"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unknown domain, got %v", err)
	}
}
