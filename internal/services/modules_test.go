package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/learnloop/learnloop-backend/internal/apperr"
)

const modulesPayload = `{
	"topic_id": "ignored",
	"topic_name": "Python",
	"topic_description": "",
	"modules": [
		{"id": "", "topic_id": "wrong", "name": "Basics", "description": "", "estimated_hours": 1, "learning_objectives": [], "prerequisites": [], "evaluation_type": "quiz", "order": 3},
		{"id": "", "topic_id": "wrong", "name": "Control Flow", "description": "", "estimated_hours": 1, "learning_objectives": [], "prerequisites": [], "evaluation_type": "quiz", "order": 1},
		{"id": "", "topic_id": "wrong", "name": "Functions", "description": "", "estimated_hours": 1, "learning_objectives": [], "prerequisites": [], "evaluation_type": "quiz", "order": 2}
	],
	"total_estimated_hours": 99
}`

func TestGenerateModulesNormalizesOrdering(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t1", "t2"})
	env.ai.jsonResponses["topic_modules"] = modulesPayload

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)
	tm, already, err := svc.Generate(context.Background(), "sess1", "t1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if already {
		t.Fatal("first generation must not report already-generated")
	}

	// Generator order hints [3,1,2] discarded in favor of list position.
	for i, m := range tm.Modules {
		if m.Order != i+1 {
			t.Fatalf("module %d has order %d", i, m.Order)
		}
		if m.TopicID != "t1" {
			t.Fatalf("topic id not forced: %q", m.TopicID)
		}
	}
	if tm.Modules[0].ID != "mod_t1_1" {
		t.Fatalf("missing id not synthesized: %q", tm.Modules[0].ID)
	}
	// Aggregate recomputed from children, not trusted from payload.
	if tm.TotalEstimatedHours != 3.0 {
		t.Fatalf("expected recomputed total 3.0, got %v", tm.TotalEstimatedHours)
	}
}

func TestGenerateModulesIdempotent(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t1", "t2"})
	env.ai.jsonResponses["topic_modules"] = modulesPayload

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)
	if _, _, err := svc.Generate(context.Background(), "sess1", "t1"); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	tm, already, err := svc.Generate(context.Background(), "sess1", "t1")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if !already {
		t.Fatal("second generation must report already-generated")
	}
	if len(tm.Modules) != 3 {
		t.Fatalf("unexpected cached modules: %+v", tm.Modules)
	}
	if env.ai.jsonCalls["topic_modules"] != 1 {
		t.Fatalf("backend must be called exactly once, got %d", env.ai.jsonCalls["topic_modules"])
	}
}

func TestGenerateModulesConcurrentCollapse(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t1", "t2"})
	env.ai.jsonResponses["topic_modules"] = modulesPayload

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Generate(context.Background(), "sess1", "t1"); err != nil {
				t.Errorf("Generate: %v", err)
			}
		}()
	}
	wg.Wait()

	if env.ai.jsonCalls["topic_modules"] != 1 {
		t.Fatalf("concurrent requests must collapse to one backend call, got %d", env.ai.jsonCalls["topic_modules"])
	}
}

func TestGenerateModulesMissingParent(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t1", "t2"})
	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)

	if _, _, err := svc.Generate(context.Background(), "sess1", "ghost"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown topic, got %v", err)
	}
	if _, _, err := svc.Generate(context.Background(), "no_such_session", "t1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown session, got %v", err)
	}
}

func TestGenerateModulesRequiresLearningPath(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	env.ai.jsonResponses["topic_modules"] = modulesPayload

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)
	if _, _, err := svc.Generate(context.Background(), "sess1", "t1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found without a learning path, got %v", err)
	}
	if env.ai.jsonCalls["topic_modules"] != 0 {
		t.Fatalf("backend must not be called, got %d", env.ai.jsonCalls["topic_modules"])
	}
	if _, err := env.store.GetModules(context.Background(), "sess1", "t1"); !apperr.IsNotFound(err) {
		t.Fatalf("nothing must be persisted, got %v", err)
	}
}

func TestGenerateModulesTopicOutsidePath(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t2"})
	env.ai.jsonResponses["topic_modules"] = modulesPayload

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)
	_, _, err := svc.Generate(context.Background(), "sess1", "t1")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unselected topic, got %v", err)
	}
	if env.ai.jsonCalls["topic_modules"] != 0 {
		t.Fatalf("backend must not be called, got %d", env.ai.jsonCalls["topic_modules"])
	}
	if _, err := env.store.GetModules(context.Background(), "sess1", "t1"); !apperr.IsNotFound(err) {
		t.Fatalf("nothing must be persisted, got %v", err)
	}
}

func TestGenerateModulesBackendFailureNotPersisted(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t1", "t2"})
	env.ai.jsonErr = &apperr.ServiceError{Status: 503, Body: "overloaded"}

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)
	_, _, err := svc.Generate(context.Background(), "sess1", "t1")
	var ge *apperr.GenerationError
	if !errors.As(err, &ge) || ge.Level != "modules" {
		t.Fatalf("expected modules GenerationError, got %v", err)
	}
	if _, err := env.store.GetModules(context.Background(), "sess1", "t1"); !apperr.IsNotFound(err) {
		t.Fatalf("failed generation must not persist, got %v", err)
	}
}

func TestSelectModuleUpdatesCursor(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t1"})
	seedModules(t, env, "sess1", "t1", 2)

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)
	m, err := svc.Select(context.Background(), "sess1", "mod_t1_2")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if m.ID != "mod_t1_2" {
		t.Fatalf("wrong module selected: %+v", m)
	}

	cur, _ := env.store.GetCursor(context.Background(), "sess1")
	if cur.TopicID != "t1" || cur.ModuleID != "mod_t1_2" {
		t.Fatalf("cursor not updated: %+v", cur)
	}

	current, err := svc.Current(context.Background(), "sess1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current.ID != "mod_t1_2" {
		t.Fatalf("wrong current module: %+v", current)
	}
}

func TestSelectModuleOutsidePath(t *testing.T) {
	env := newTestEnv(t)
	seedTOC(t, env, "sess1")
	seedPath(t, env, "sess1", []string{"t2"})
	seedModules(t, env, "sess1", "t1", 1)

	svc := NewModuleService(env.log, env.ai, env.store, env.registry, env.normalizer)
	if _, err := svc.Select(context.Background(), "sess1", "mod_t1_1"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for module outside path, got %v", err)
	}
}
