package store

import (
	"context"
	"sync"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/types"
)

// MemoryStore keeps all hierarchy state in process memory for the
// lifetime of the session. Writes are atomic under a single RWMutex;
// readers receive copies, never references into the maps.
type MemoryStore struct {
	mu  sync.RWMutex
	log *logger.Logger

	tocs         map[string]*types.TableOfContents
	paths        map[string]*types.LearningPath
	userSessions map[string][]string
	modules      map[string]map[string]*types.TopicWithModules
	concepts     map[string]map[string]*types.ModuleWithConcepts
	cursors      map[string]types.Cursor
}

func NewMemoryStore(baseLog *logger.Logger) *MemoryStore {
	return &MemoryStore{
		log:          baseLog.With("service", "MemoryStore"),
		tocs:         map[string]*types.TableOfContents{},
		paths:        map[string]*types.LearningPath{},
		userSessions: map[string][]string{},
		modules:      map[string]map[string]*types.TopicWithModules{},
		concepts:     map[string]map[string]*types.ModuleWithConcepts{},
		cursors:      map[string]types.Cursor{},
	}
}

func (s *MemoryStore) StoreTOC(ctx context.Context, sessionID string, toc *types.TableOfContents) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tocs[sessionID] = cloneTOC(toc)
	s.modules[sessionID] = map[string]*types.TopicWithModules{}
	s.concepts[sessionID] = map[string]*types.ModuleWithConcepts{}

	s.log.Info("Stored TOC", "session_id", sessionID, "topics", len(toc.Topics))
	return nil
}

func (s *MemoryStore) GetTOC(ctx context.Context, sessionID string) (*types.TableOfContents, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	toc, ok := s.tocs[sessionID]
	if !ok {
		return nil, apperr.NotFound("toc", sessionID)
	}
	return cloneTOC(toc), nil
}

func (s *MemoryStore) GetTopicDetails(ctx context.Context, sessionID, topicID string) (*types.TopicDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	toc, ok := s.tocs[sessionID]
	if !ok {
		return nil, apperr.NotFound("toc", sessionID)
	}
	details := topicDetails(toc, topicID)
	if details == nil {
		return nil, apperr.NotFound("topic", topicID)
	}
	return details, nil
}

func (s *MemoryStore) CreateLearningPath(ctx context.Context, userID, sessionID string, selectedTopicIDs []string, prefs map[string]any) (*types.LearningPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toc, ok := s.tocs[sessionID]
	if !ok {
		return nil, apperr.NotFound("toc", sessionID)
	}
	if err := validateSelection(toc, selectedTopicIDs); err != nil {
		return nil, err
	}

	path := newLearningPath(userID, sessionID, toc.Domain, selectedTopicIDs, selectionHours(toc, selectedTopicIDs), prefs)
	s.paths[sessionID] = path
	s.userSessions[userID] = append(s.userSessions[userID], sessionID)

	if len(selectedTopicIDs) > 0 {
		s.cursors[sessionID] = types.Cursor{TopicID: selectedTopicIDs[0]}
	} else {
		delete(s.cursors, sessionID)
	}

	s.log.Info("Created learning path",
		"user_id", userID,
		"session_id", sessionID,
		"topics", len(selectedTopicIDs),
		"total_hours", path.EstimatedTotalHours,
	)
	return clonePath(path), nil
}

func (s *MemoryStore) UpdateLearningPath(ctx context.Context, sessionID string, selectedTopicIDs []string) (*types.LearningPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.paths[sessionID]
	if !ok {
		return nil, apperr.NotFound("learning path", sessionID)
	}
	toc, ok := s.tocs[sessionID]
	if !ok {
		return nil, apperr.NotFound("toc", sessionID)
	}
	if err := validateSelection(toc, selectedTopicIDs); err != nil {
		return nil, err
	}

	removed := removedTopics(path.SelectedTopics, selectedTopicIDs)
	for _, topicID := range removed {
		if tm, ok := s.modules[sessionID][topicID]; ok {
			for _, m := range tm.Modules {
				delete(s.concepts[sessionID], m.ID)
			}
			delete(s.modules[sessionID], topicID)
		}
	}
	if len(removed) > 0 {
		s.log.Info("Cascaded topic removal", "session_id", sessionID, "removed_topics", len(removed))
	}

	path.SelectedTopics = append([]string(nil), selectedTopicIDs...)
	path.EstimatedTotalHours = selectionHours(toc, selectedTopicIDs)

	cur := resetCursorAfterUpdate(s.cursors[sessionID], selectedTopicIDs)
	if cur == (types.Cursor{}) {
		delete(s.cursors, sessionID)
	} else {
		s.cursors[sessionID] = cur
	}

	s.log.Info("Updated learning path",
		"session_id", sessionID,
		"topics", len(selectedTopicIDs),
		"total_hours", path.EstimatedTotalHours,
	)
	return clonePath(path), nil
}

func (s *MemoryStore) GetLearningPath(ctx context.Context, sessionID string) (*types.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.paths[sessionID]
	if !ok {
		return nil, apperr.NotFound("learning path", sessionID)
	}
	return clonePath(path), nil
}

func (s *MemoryStore) GetUserLearningPaths(ctx context.Context, userID string) ([]*types.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]*types.LearningPath, 0)
	for _, sessionID := range s.userSessions[userID] {
		if p, ok := s.paths[sessionID]; ok {
			paths = append(paths, clonePath(p))
		}
	}
	return paths, nil
}

func (s *MemoryStore) StoreModules(ctx context.Context, sessionID string, tm *types.TopicWithModules) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modules[sessionID] == nil {
		s.modules[sessionID] = map[string]*types.TopicWithModules{}
	}
	s.modules[sessionID][tm.TopicID] = cloneModules(tm)
	s.log.Info("Stored modules", "session_id", sessionID, "topic_id", tm.TopicID, "modules", len(tm.Modules))
	return nil
}

func (s *MemoryStore) GetModules(ctx context.Context, sessionID, topicID string) (*types.TopicWithModules, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tm, ok := s.modules[sessionID][topicID]
	if !ok {
		return nil, apperr.NotFound("modules", topicID)
	}
	return cloneModules(tm), nil
}

func (s *MemoryStore) GetAllModules(ctx context.Context, sessionID string) ([]*types.TopicWithModules, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.TopicWithModules, 0, len(s.modules[sessionID]))
	if path, ok := s.paths[sessionID]; ok {
		// Selection order, so callers render deterministically.
		for _, topicID := range path.SelectedTopics {
			if tm, ok := s.modules[sessionID][topicID]; ok {
				out = append(out, cloneModules(tm))
			}
		}
		return out, nil
	}
	for _, tm := range s.modules[sessionID] {
		out = append(out, cloneModules(tm))
	}
	return out, nil
}

func (s *MemoryStore) FindModuleByID(ctx context.Context, sessionID, moduleID string) (*types.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tm := range s.modules[sessionID] {
		if m, ok := tm.ModuleByID(moduleID); ok {
			return &m, nil
		}
	}
	return nil, apperr.NotFound("module", moduleID)
}

func (s *MemoryStore) StoreConcepts(ctx context.Context, sessionID string, mc *types.ModuleWithConcepts) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.concepts[sessionID] == nil {
		s.concepts[sessionID] = map[string]*types.ModuleWithConcepts{}
	}
	s.concepts[sessionID][mc.ModuleID] = cloneConcepts(mc)
	s.log.Info("Stored concepts", "session_id", sessionID, "module_id", mc.ModuleID, "concepts", len(mc.Concepts))
	return nil
}

func (s *MemoryStore) GetConcepts(ctx context.Context, sessionID, moduleID string) (*types.ModuleWithConcepts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mc, ok := s.concepts[sessionID][moduleID]
	if !ok {
		return nil, apperr.NotFound("concepts", moduleID)
	}
	return cloneConcepts(mc), nil
}

func (s *MemoryStore) FindConceptByID(ctx context.Context, sessionID, conceptID string) (*types.Concept, *types.ModuleSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, mc := range s.concepts[sessionID] {
		if c, ok := mc.ConceptByID(conceptID); ok {
			return &c, moduleSummary(mc), nil
		}
	}
	return nil, nil, apperr.NotFound("concept", conceptID)
}

// patchConcept locates the stored concept by scan and applies fn in
// place. Stale ids are a logged no-op: a drifted concept id must not
// fail the request.
func (s *MemoryStore) patchConcept(sessionID, conceptID, what string, fn func(c *types.Concept)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mc := range s.concepts[sessionID] {
		for i := range mc.Concepts {
			if mc.Concepts[i].ID == conceptID {
				fn(&mc.Concepts[i])
				return
			}
		}
	}
	s.log.Warn("Concept not found for update", "session_id", sessionID, "concept_id", conceptID, "update", what)
}

func (s *MemoryStore) UpdateConceptContent(ctx context.Context, sessionID string, concept *types.Concept) error {
	s.patchConcept(sessionID, concept.ID, "content", func(c *types.Concept) {
		*c = *concept
		c.ContentBlocks = append([]types.ContentBlock(nil), concept.ContentBlocks...)
	})
	return nil
}

func (s *MemoryStore) UpdateConceptNotes(ctx context.Context, sessionID, conceptID, notes string) error {
	s.patchConcept(sessionID, conceptID, "notes", func(c *types.Concept) {
		c.NotesSummary = notes
	})
	return nil
}

func (s *MemoryStore) UpdateConceptStatus(ctx context.Context, sessionID, conceptID string, status types.ConceptStatus) error {
	s.patchConcept(sessionID, conceptID, "status", func(c *types.Concept) {
		c.Status = status
	})
	return nil
}

func (s *MemoryStore) SetCursor(ctx context.Context, sessionID string, cursor types.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[sessionID] = cursor
	return nil
}

func (s *MemoryStore) GetCursor(ctx context.Context, sessionID string) (types.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[sessionID], nil
}

func (s *MemoryStore) Statistics(ctx context.Context) (types.StoreStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.StoreStatistics{
		TotalTOCs:          len(s.tocs),
		TotalLearningPaths: len(s.paths),
		TotalUsers:         len(s.userSessions),
	}
	for _, byTopic := range s.modules {
		stats.TopicsWithModules += len(byTopic)
	}
	for _, byModule := range s.concepts {
		stats.ModulesWithConcepts += len(byModule)
	}
	if len(s.paths) > 0 {
		var totalTopics int
		for _, p := range s.paths {
			totalTopics += len(p.SelectedTopics)
		}
		stats.AverageTopicsPerPath = float64(totalTopics) / float64(len(s.paths))
	}
	return stats, nil
}
