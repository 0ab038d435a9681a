package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/domains/datascience"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/normalization"
	"github.com/learnloop/learnloop-backend/internal/store"
	"github.com/learnloop/learnloop-backend/internal/types"
)

// fakeAI is a canned generation backend. JSON responses are keyed by
// schema name; call counts let tests assert generate-once behavior.
type fakeAI struct {
	jsonResponses map[string]string
	jsonErr       error
	jsonCalls     map[string]int

	textResponse string
	textErr      error
	textCalls    int
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		jsonResponses: map[string]string{},
		jsonCalls:     map[string]int{},
	}
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string, temperature float64) (string, error) {
	f.textCalls++
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.textResponse, nil
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any, temperature float64) (json.RawMessage, error) {
	f.jsonCalls[schemaName]++
	if f.jsonErr != nil {
		return nil, f.jsonErr
	}
	return json.RawMessage(f.jsonResponses[schemaName]), nil
}

type testEnv struct {
	log        *logger.Logger
	ai         *fakeAI
	store      store.SessionStore
	registry   *domains.Registry
	normalizer *normalization.Normalizer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return &testEnv{
		log:        log,
		ai:         newFakeAI(),
		store:      store.NewMemoryStore(log),
		registry:   domains.NewRegistry(datascience.New(datascience.DefaultConfig())),
		normalizer: normalization.NewNormalizer(log),
	}
}

func seedTOC(t *testing.T, env *testEnv, sessionID string) *types.TableOfContents {
	t.Helper()
	toc := &types.TableOfContents{
		Domain: datascience.DomainID,
		Title:  "Data Science",
		Topics: []types.Topic{
			{ID: "t1", Name: "Python", EstimatedHours: 3},
			{ID: "t2", Name: "Statistics", EstimatedHours: 4},
		},
		TotalEstimatedHours: 7,
	}
	if err := env.store.StoreTOC(context.Background(), sessionID, toc); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	return toc
}

func seedPath(t *testing.T, env *testEnv, sessionID string, topics []string) *types.LearningPath {
	t.Helper()
	path, err := env.store.CreateLearningPath(context.Background(), "user1", sessionID, topics, map[string]any{"level": "beginner"})
	if err != nil {
		t.Fatalf("CreateLearningPath: %v", err)
	}
	return path
}

func seedModules(t *testing.T, env *testEnv, sessionID, topicID string, count int) *types.TopicWithModules {
	t.Helper()
	tm := &types.TopicWithModules{TopicID: topicID, TopicName: "Topic"}
	for i := 0; i < count; i++ {
		tm.Modules = append(tm.Modules, types.Module{
			ID:             "mod_" + topicID + "_" + string(rune('1'+i)),
			TopicID:        topicID,
			Name:           "Module",
			EstimatedHours: 2,
			Order:          i + 1,
		})
		tm.TotalEstimatedHours += 2
	}
	if err := env.store.StoreModules(context.Background(), sessionID, tm); err != nil {
		t.Fatalf("StoreModules: %v", err)
	}
	return tm
}

func seedConcepts(t *testing.T, env *testEnv, sessionID, moduleID, topicID string, count int) *types.ModuleWithConcepts {
	t.Helper()
	mc := &types.ModuleWithConcepts{ModuleID: moduleID, ModuleName: "Module", TopicID: topicID}
	for i := 0; i < count; i++ {
		mc.Concepts = append(mc.Concepts, types.Concept{
			ID:               "concept_" + moduleID + "_" + string(rune('1'+i)),
			ModuleID:         moduleID,
			Name:             "Concept",
			EstimatedMinutes: 15,
			Order:            i + 1,
			Status:           types.ConceptNotStarted,
		})
		mc.TotalEstimatedMinutes += 15
	}
	if count > 0 {
		mc.CurrentConceptID = mc.Concepts[0].ID
	}
	if err := env.store.StoreConcepts(context.Background(), sessionID, mc); err != nil {
		t.Fatalf("StoreConcepts: %v", err)
	}
	return mc
}
