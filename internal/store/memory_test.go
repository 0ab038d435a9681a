package store

import (
	"context"
	"strings"
	"testing"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testTOC() *types.TableOfContents {
	return &types.TableOfContents{
		Domain:      "data_science",
		Title:       "Data Science",
		Description: "Full curriculum",
		Topics: []types.Topic{
			{ID: "topic_1", Name: "Python Basics", EstimatedHours: 10, Difficulty: types.DifficultyBeginner, IsCore: true},
			{ID: "topic_2", Name: "Statistics", EstimatedHours: 15, Difficulty: types.DifficultyBeginner, Prerequisites: []string{"topic_1"}},
			{ID: "topic_3", Name: "Machine Learning", EstimatedHours: 25, Difficulty: types.DifficultyIntermediate, Prerequisites: []string{"topic_1", "topic_2"}},
		},
		TotalEstimatedHours: 50,
	}
}

func testModules(topicID string) *types.TopicWithModules {
	return &types.TopicWithModules{
		TopicID:   topicID,
		TopicName: "Topic " + topicID,
		Modules: []types.Module{
			{ID: "mod_" + topicID + "_1", TopicID: topicID, Name: "Module One", EstimatedHours: 2, Order: 1},
			{ID: "mod_" + topicID + "_2", TopicID: topicID, Name: "Module Two", EstimatedHours: 2, Order: 2},
		},
		TotalEstimatedHours: 4,
	}
}

func testConcepts(moduleID, topicID string) *types.ModuleWithConcepts {
	return &types.ModuleWithConcepts{
		ModuleID:   moduleID,
		ModuleName: "Module " + moduleID,
		TopicID:    topicID,
		Concepts: []types.Concept{
			{ID: "concept_" + moduleID + "_1", ModuleID: moduleID, Name: "Concept One", EstimatedMinutes: 15, Order: 1, Status: types.ConceptNotStarted},
			{ID: "concept_" + moduleID + "_2", ModuleID: moduleID, Name: "Concept Two", EstimatedMinutes: 15, Order: 2, Status: types.ConceptNotStarted},
		},
		TotalEstimatedMinutes: 30,
		CurrentConceptID:      "concept_" + moduleID + "_1",
	}
}

func TestMemoryStoreTOCRoundTrip(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()

	if _, err := s.GetTOC(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found for missing toc, got %v", err)
	}

	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	toc, err := s.GetTOC(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetTOC: %v", err)
	}
	if len(toc.Topics) != 3 || toc.Domain != "data_science" {
		t.Fatalf("unexpected toc: %+v", toc)
	}

	// Mutating the returned value must not leak into the store.
	toc.Topics[0].Name = "mutated"
	again, _ := s.GetTOC(ctx, "sess1")
	if again.Topics[0].Name != "Python Basics" {
		t.Fatalf("store leaked internal state: %q", again.Topics[0].Name)
	}
}

func TestMemoryStoreTOCReplacementClearsChildren(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()

	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	if err := s.StoreModules(ctx, "sess1", testModules("topic_1")); err != nil {
		t.Fatalf("StoreModules: %v", err)
	}
	if err := s.StoreConcepts(ctx, "sess1", testConcepts("mod_topic_1_1", "topic_1")); err != nil {
		t.Fatalf("StoreConcepts: %v", err)
	}

	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC replace: %v", err)
	}
	if _, err := s.GetModules(ctx, "sess1", "topic_1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected modules cleared after TOC replacement, got %v", err)
	}
	if _, err := s.GetConcepts(ctx, "sess1", "mod_topic_1_1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected concepts cleared after TOC replacement, got %v", err)
	}
}

func TestMemoryStoreTopicDetails(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}

	details, err := s.GetTopicDetails(ctx, "sess1", "topic_2")
	if err != nil {
		t.Fatalf("GetTopicDetails: %v", err)
	}
	if details.Topic.ID != "topic_2" {
		t.Fatalf("wrong topic: %+v", details.Topic)
	}
	if len(details.Prerequisites) != 1 || details.Prerequisites[0].ID != "topic_1" {
		t.Fatalf("wrong prerequisites: %+v", details.Prerequisites)
	}
	if len(details.Dependents) != 1 || details.Dependents[0].ID != "topic_3" {
		t.Fatalf("wrong dependents: %+v", details.Dependents)
	}

	if _, err := s.GetTopicDetails(ctx, "sess1", "nope"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown topic, got %v", err)
	}
}

func TestMemoryStoreCreateLearningPath(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}

	path, err := s.CreateLearningPath(ctx, "user1", "sess1", []string{"topic_1", "topic_3"}, map[string]any{"pace": "fast"})
	if err != nil {
		t.Fatalf("CreateLearningPath: %v", err)
	}
	if path.EstimatedTotalHours != 35 {
		t.Fatalf("expected 35 hours, got %v", path.EstimatedTotalHours)
	}
	if path.Domain != "data_science" {
		t.Fatalf("expected domain from toc, got %q", path.Domain)
	}

	cur, err := s.GetCursor(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetCursor: %v", err)
	}
	if cur.TopicID != "topic_1" || cur.ModuleID != "" || cur.ConceptID != "" {
		t.Fatalf("expected cursor at first selected topic, got %+v", cur)
	}

	paths, err := s.GetUserLearningPaths(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUserLearningPaths: %v", err)
	}
	if len(paths) != 1 || paths[0].SessionID != "sess1" {
		t.Fatalf("unexpected user paths: %+v", paths)
	}
}

func TestMemoryStoreSelectionValidation(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}

	_, err := s.CreateLearningPath(ctx, "user1", "sess1", []string{"topic_1", "ghost_b", "ghost_a"}, nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost_a") || !strings.Contains(err.Error(), "ghost_b") {
		t.Fatalf("error should list invalid ids: %v", err)
	}

	// Failed validation must leave no path behind.
	if _, err := s.GetLearningPath(ctx, "sess1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected no path after failed create, got %v", err)
	}
	if paths, _ := s.GetUserLearningPaths(ctx, "user1"); len(paths) != 0 {
		t.Fatalf("expected no user sessions after failed create, got %d", len(paths))
	}
}

func TestMemoryStoreUpdateCascadesDeletion(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	if _, err := s.CreateLearningPath(ctx, "user1", "sess1", []string{"topic_1", "topic_2"}, nil); err != nil {
		t.Fatalf("CreateLearningPath: %v", err)
	}
	if err := s.StoreModules(ctx, "sess1", testModules("topic_1")); err != nil {
		t.Fatalf("StoreModules: %v", err)
	}
	if err := s.StoreConcepts(ctx, "sess1", testConcepts("mod_topic_1_1", "topic_1")); err != nil {
		t.Fatalf("StoreConcepts: %v", err)
	}
	if err := s.StoreModules(ctx, "sess1", testModules("topic_2")); err != nil {
		t.Fatalf("StoreModules: %v", err)
	}

	path, err := s.UpdateLearningPath(ctx, "sess1", []string{"topic_2", "topic_3"})
	if err != nil {
		t.Fatalf("UpdateLearningPath: %v", err)
	}
	if path.EstimatedTotalHours != 40 {
		t.Fatalf("expected recomputed hours 40, got %v", path.EstimatedTotalHours)
	}

	// topic_1 and everything under it is gone; topic_2 survives.
	if _, err := s.GetModules(ctx, "sess1", "topic_1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected topic_1 modules removed, got %v", err)
	}
	if _, err := s.GetConcepts(ctx, "sess1", "mod_topic_1_1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected topic_1 concepts removed, got %v", err)
	}
	if _, err := s.GetModules(ctx, "sess1", "topic_2"); err != nil {
		t.Fatalf("expected topic_2 modules kept: %v", err)
	}

	// Cursor topic was deselected, so it resets to the first of the new
	// selection.
	cur, _ := s.GetCursor(ctx, "sess1")
	if cur.TopicID != "topic_2" || cur.ModuleID != "" || cur.ConceptID != "" {
		t.Fatalf("expected cursor reset to topic_2, got %+v", cur)
	}
}

func TestMemoryStoreUpdateKeepsCursorWhenTopicSurvives(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	if _, err := s.CreateLearningPath(ctx, "user1", "sess1", []string{"topic_1", "topic_2"}, nil); err != nil {
		t.Fatalf("CreateLearningPath: %v", err)
	}
	if err := s.SetCursor(ctx, "sess1", types.Cursor{TopicID: "topic_2", ModuleID: "mod_topic_2_1", ConceptID: "concept_x"}); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}

	if _, err := s.UpdateLearningPath(ctx, "sess1", []string{"topic_2", "topic_3"}); err != nil {
		t.Fatalf("UpdateLearningPath: %v", err)
	}
	cur, _ := s.GetCursor(ctx, "sess1")
	if cur.TopicID != "topic_2" || cur.ModuleID != "mod_topic_2_1" || cur.ConceptID != "concept_x" {
		t.Fatalf("cursor should survive when its topic stays selected, got %+v", cur)
	}
}

func TestMemoryStoreFindModuleAndConcept(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreTOC(ctx, "sess1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	if err := s.StoreModules(ctx, "sess1", testModules("topic_1")); err != nil {
		t.Fatalf("StoreModules: %v", err)
	}
	if err := s.StoreConcepts(ctx, "sess1", testConcepts("mod_topic_1_1", "topic_1")); err != nil {
		t.Fatalf("StoreConcepts: %v", err)
	}

	m, err := s.FindModuleByID(ctx, "sess1", "mod_topic_1_2")
	if err != nil {
		t.Fatalf("FindModuleByID: %v", err)
	}
	if m.Name != "Module Two" {
		t.Fatalf("wrong module: %+v", m)
	}
	if _, err := s.FindModuleByID(ctx, "sess1", "nope"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}

	c, parent, err := s.FindConceptByID(ctx, "sess1", "concept_mod_topic_1_1_2")
	if err != nil {
		t.Fatalf("FindConceptByID: %v", err)
	}
	if c.Name != "Concept Two" {
		t.Fatalf("wrong concept: %+v", c)
	}
	if parent.ModuleID != "mod_topic_1_1" || parent.TopicID != "topic_1" {
		t.Fatalf("wrong parent summary: %+v", parent)
	}
}

func TestMemoryStoreConceptPatches(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreConcepts(ctx, "sess1", testConcepts("mod_a", "topic_1")); err != nil {
		t.Fatalf("StoreConcepts: %v", err)
	}

	if err := s.UpdateConceptStatus(ctx, "sess1", "concept_mod_a_1", types.ConceptCompleted); err != nil {
		t.Fatalf("UpdateConceptStatus: %v", err)
	}
	if err := s.UpdateConceptNotes(ctx, "sess1", "concept_mod_a_1", "summary"); err != nil {
		t.Fatalf("UpdateConceptNotes: %v", err)
	}
	c, _, err := s.FindConceptByID(ctx, "sess1", "concept_mod_a_1")
	if err != nil {
		t.Fatalf("FindConceptByID: %v", err)
	}
	if c.Status != types.ConceptCompleted || c.NotesSummary != "summary" {
		t.Fatalf("patch not applied: %+v", c)
	}

	// Unknown concepts are a no-op, not an error.
	if err := s.UpdateConceptStatus(ctx, "sess1", "ghost", types.ConceptCompleted); err != nil {
		t.Fatalf("expected no-op for unknown concept, got %v", err)
	}
}

func TestMemoryStoreStatistics(t *testing.T) {
	s := NewMemoryStore(testLogger(t))
	ctx := context.Background()
	if err := s.StoreTOC(ctx, "s1", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	if err := s.StoreTOC(ctx, "s2", testTOC()); err != nil {
		t.Fatalf("StoreTOC: %v", err)
	}
	if _, err := s.CreateLearningPath(ctx, "u1", "s1", []string{"topic_1"}, nil); err != nil {
		t.Fatalf("CreateLearningPath: %v", err)
	}
	if _, err := s.CreateLearningPath(ctx, "u2", "s2", []string{"topic_1", "topic_2", "topic_3"}, nil); err != nil {
		t.Fatalf("CreateLearningPath: %v", err)
	}
	if err := s.StoreModules(ctx, "s1", testModules("topic_1")); err != nil {
		t.Fatalf("StoreModules: %v", err)
	}
	if err := s.StoreConcepts(ctx, "s1", testConcepts("mod_topic_1_1", "topic_1")); err != nil {
		t.Fatalf("StoreConcepts: %v", err)
	}

	stats, err := s.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalTOCs != 2 || stats.TotalLearningPaths != 2 || stats.TotalUsers != 2 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.TopicsWithModules != 1 || stats.ModulesWithConcepts != 1 {
		t.Fatalf("unexpected child counts: %+v", stats)
	}
	if stats.AverageTopicsPerPath != 2 {
		t.Fatalf("expected average 2 topics per path, got %v", stats.AverageTopicsPerPath)
	}
}
