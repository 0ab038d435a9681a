package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/domains/datascience"
	"github.com/learnloop/learnloop-backend/internal/handlers"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/normalization"
	"github.com/learnloop/learnloop-backend/internal/server"
	"github.com/learnloop/learnloop-backend/internal/services"
	"github.com/learnloop/learnloop-backend/internal/store"
)

type stubAI struct {
	jsonResponses map[string]string
	textResponse  string
}

func (s *stubAI) GenerateText(ctx context.Context, system, user string, temperature float64) (string, error) {
	return s.textResponse, nil
}

func (s *stubAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any, temperature float64) (json.RawMessage, error) {
	return json.RawMessage(s.jsonResponses[schemaName]), nil
}

func newTestRouter(t *testing.T, ai *stubAI) (*gin.Engine, store.SessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	st := store.NewMemoryStore(log)
	registry := domains.NewRegistry(datascience.New(datascience.DefaultConfig()))
	normalizer := normalization.NewNormalizer(log)

	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		DomainHandler:     handlers.NewDomainHandler(log, registry),
		OnboardingHandler: handlers.NewOnboardingHandler(log, services.NewOnboardingService(log, ai)),
		TOCHandler:        handlers.NewTOCHandler(log, services.NewTOCService(log, ai, st, registry), services.NewPathService(log, st)),
		ModuleHandler:     handlers.NewModuleHandler(log, services.NewModuleService(log, ai, st, registry, normalizer), services.NewNavigationService(log, st)),
		ConceptHandler:    handlers.NewConceptHandler(log, services.NewConceptService(log, ai, st, registry, normalizer), services.NewNavigationService(log, st)),
		CoachHandler:      handlers.NewCoachHandler(log, services.NewCoachService(log, ai, registry)),
	})
	return router, st
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope from %s %s: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec.Code, env
}

func TestHealthAndDomains(t *testing.T) {
	router, _ := newTestRouter(t, &stubAI{})

	code, env := doRequest(t, router, http.MethodGet, "/api/health", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("health: code=%d success=%v", code, env.Success)
	}
	var health map[string]any
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("health data: %v", err)
	}
	if health["status"] != "healthy" {
		t.Fatalf("status = %v", health["status"])
	}

	code, env = doRequest(t, router, http.MethodGet, "/api/domains", "")
	if code != http.StatusOK {
		t.Fatalf("domains code = %d", code)
	}
	var domainsData struct {
		Domains []map[string]any `json:"domains"`
	}
	if err := json.Unmarshal(env.Data, &domainsData); err != nil {
		t.Fatalf("domains data: %v", err)
	}
	if len(domainsData.Domains) != 1 || domainsData.Domains[0]["id"] != "data_science" {
		t.Fatalf("domains = %+v", domainsData.Domains)
	}
}

func TestGenerateTOCFlow(t *testing.T) {
	ai := &stubAI{jsonResponses: map[string]string{
		"table_of_contents": `{
			"title": "Data Science",
			"description": "Full track",
			"topics": [
				{"id": "t1", "name": "Python", "description": "", "estimated_hours": 3, "difficulty": "beginner", "category": "core", "prerequisites": []},
				{"id": "t2", "name": "Statistics", "description": "", "estimated_hours": 4, "difficulty": "beginner", "category": "core", "prerequisites": ["t1"]}
			],
			"total_estimated_hours": 7
		}`,
	}}
	router, _ := newTestRouter(t, ai)

	code, env := doRequest(t, router, http.MethodPost, "/api/toc/generate",
		`{"domain": "data_science", "preferences": {"level": "beginner"}}`)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("generate: code=%d success=%v message=%q", code, env.Success, env.Message)
	}
	var gen struct {
		SessionID string `json:"session_id"`
		TOC       struct {
			Domain string `json:"domain"`
			Topics []struct {
				ID string `json:"id"`
			} `json:"topics"`
		} `json:"toc"`
	}
	if err := json.Unmarshal(env.Data, &gen); err != nil {
		t.Fatalf("generate data: %v", err)
	}
	if gen.SessionID == "" || gen.TOC.Domain != "data_science" || len(gen.TOC.Topics) != 2 {
		t.Fatalf("generate data = %+v", gen)
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/toc/session/"+gen.SessionID, "")
	if code != http.StatusOK {
		t.Fatalf("get toc code = %d", code)
	}

	// Unknown domain is a validation error.
	code, env = doRequest(t, router, http.MethodPost, "/api/toc/generate", `{"domain": "basket_weaving"}`)
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("unknown domain: code=%d success=%v", code, env.Success)
	}
}

func TestSessionNotFoundEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, &stubAI{})

	code, env := doRequest(t, router, http.MethodGet, "/api/toc/session/nope", "")
	if code != http.StatusNotFound {
		t.Fatalf("code = %d", code)
	}
	if env.Success {
		t.Fatal("expected success=false")
	}
	if env.Message == "" {
		t.Fatal("expected error message")
	}
}

func TestModuleLifecycleOverHTTP(t *testing.T) {
	ai := &stubAI{jsonResponses: map[string]string{
		"table_of_contents": `{
			"title": "Data Science",
			"description": "",
			"topics": [
				{"id": "t1", "name": "Python", "description": "", "estimated_hours": 3, "difficulty": "beginner", "category": "core", "prerequisites": []}
			],
			"total_estimated_hours": 3
		}`,
		"topic_modules": `{
			"modules": [
				{"id": "", "name": "Basics", "description": "", "estimated_hours": 2, "order": 1, "learning_objectives": [], "evaluation_type": "quiz"},
				{"id": "", "name": "Advanced", "description": "", "estimated_hours": 3, "order": 2, "learning_objectives": [], "evaluation_type": "quiz"}
			],
			"total_estimated_hours": 5
		}`,
	}}
	router, _ := newTestRouter(t, ai)

	_, env := doRequest(t, router, http.MethodPost, "/api/toc/generate", `{"domain": "data_science"}`)
	var gen struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(env.Data, &gen); err != nil {
		t.Fatalf("generate data: %v", err)
	}

	code, _ := doRequest(t, router, http.MethodPost, "/api/toc/learning-path",
		`{"user_id": "user1", "session_id": "`+gen.SessionID+`", "selected_topic_ids": ["t1"]}`)
	if code != http.StatusOK {
		t.Fatalf("create path code = %d", code)
	}

	code, env = doRequest(t, router, http.MethodPost, "/api/modules/generate",
		`{"session_id": "`+gen.SessionID+`", "topic_id": "t1"}`)
	if code != http.StatusOK {
		t.Fatalf("module generate code = %d message=%q", code, env.Message)
	}
	if !strings.Contains(env.Message, "Generated 2 modules") {
		t.Fatalf("message = %q", env.Message)
	}

	// Second call reports the cached result.
	code, env = doRequest(t, router, http.MethodPost, "/api/modules/generate",
		`{"session_id": "`+gen.SessionID+`", "topic_id": "t1"}`)
	if code != http.StatusOK || env.Message != "Modules already generated" {
		t.Fatalf("repeat: code=%d message=%q", code, env.Message)
	}

	code, env = doRequest(t, router, http.MethodPost, "/api/modules/session/"+gen.SessionID+"/select",
		`{"module_id": "mod_t1_1"}`)
	if code != http.StatusOK {
		t.Fatalf("select code = %d message=%q", code, env.Message)
	}

	code, env = doRequest(t, router, http.MethodGet, "/api/modules/session/"+gen.SessionID+"/current", "")
	if code != http.StatusOK {
		t.Fatalf("current code = %d", code)
	}
	var current struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &current); err != nil {
		t.Fatalf("current data: %v", err)
	}
	if current.ID != "mod_t1_1" {
		t.Fatalf("current module = %q", current.ID)
	}

	code, env = doRequest(t, router, http.MethodGet, "/api/modules/session/"+gen.SessionID+"/navigation", "")
	if code != http.StatusOK {
		t.Fatalf("navigation code = %d", code)
	}
	var tree struct {
		Topics []struct {
			ID string `json:"id"`
		} `json:"topics"`
	}
	if err := json.Unmarshal(env.Data, &tree); err != nil {
		t.Fatalf("navigation data: %v", err)
	}
	if len(tree.Topics) != 1 || tree.Topics[0].ID != "t1" {
		t.Fatalf("tree topics = %+v", tree.Topics)
	}
}

func TestProgressValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubAI{})

	code, env := doRequest(t, router, http.MethodPost, "/api/concepts/session/s1/concept/c1/progress",
		`{"status": "levitating"}`)
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("bad status: code=%d success=%v", code, env.Success)
	}

	code, _ = doRequest(t, router, http.MethodPost, "/api/concepts/session/s1/concept/c1/progress", `{}`)
	if code != http.StatusBadRequest {
		t.Fatalf("missing status code = %d", code)
	}
}

func TestCoachMotivation(t *testing.T) {
	router, _ := newTestRouter(t, &stubAI{})

	code, env := doRequest(t, router, http.MethodGet, "/api/coach/motivation", "")
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	var data struct {
		Message string `json:"message"`
		Stage   string `json:"stage"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data: %v", err)
	}
	if data.Message == "" || data.Stage != "progress" {
		t.Fatalf("data = %+v", data)
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/coach/motivation?domain=underwater_basket", "")
	if code != http.StatusBadRequest {
		t.Fatalf("unknown domain code = %d", code)
	}
}
