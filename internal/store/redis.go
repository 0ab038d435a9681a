package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/types"
)

const (
	keyTOC          = "ll:toc:%s"
	keyPath         = "ll:path:%s"
	keyUserSessions = "ll:user_sessions:%s"
	keyModules      = "ll:modules:%s"  // hash: topicID -> TopicWithModules JSON
	keyConcepts     = "ll:concepts:%s" // hash: moduleID -> ModuleWithConcepts JSON
	keyCursor       = "ll:cursor:%s"
)

// RedisStore implements SessionStore on redis so state survives process
// restarts and can be shared between replicas. Records are stored as
// JSON values; module and concept collections live in per-session
// hashes keyed by parent id.
type RedisStore struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRedisStore(rdb *redis.Client, baseLog *logger.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, log: baseLog.With("service", "RedisStore")}
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func getJSON[T any](ctx context.Context, s *RedisStore, key, resource, id string) (*T, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, apperr.NotFound(resource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return &out, nil
}

func (s *RedisStore) StoreTOC(ctx context.Context, sessionID string, toc *types.TableOfContents) error {
	if err := s.setJSON(ctx, fmt.Sprintf(keyTOC, sessionID), toc); err != nil {
		return err
	}
	// A new TOC invalidates everything generated under the old one.
	if err := s.rdb.Del(ctx,
		fmt.Sprintf(keyModules, sessionID),
		fmt.Sprintf(keyConcepts, sessionID),
	).Err(); err != nil {
		return fmt.Errorf("redis del collections for %s: %w", sessionID, err)
	}
	s.log.Info("Stored TOC", "session_id", sessionID, "topics", len(toc.Topics))
	return nil
}

func (s *RedisStore) GetTOC(ctx context.Context, sessionID string) (*types.TableOfContents, error) {
	return getJSON[types.TableOfContents](ctx, s, fmt.Sprintf(keyTOC, sessionID), "toc", sessionID)
}

func (s *RedisStore) GetTopicDetails(ctx context.Context, sessionID, topicID string) (*types.TopicDetails, error) {
	toc, err := s.GetTOC(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	details := topicDetails(toc, topicID)
	if details == nil {
		return nil, apperr.NotFound("topic", topicID)
	}
	return details, nil
}

func (s *RedisStore) CreateLearningPath(ctx context.Context, userID, sessionID string, selectedTopicIDs []string, prefs map[string]any) (*types.LearningPath, error) {
	toc, err := s.GetTOC(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := validateSelection(toc, selectedTopicIDs); err != nil {
		return nil, err
	}

	path := newLearningPath(userID, sessionID, toc.Domain, selectedTopicIDs, selectionHours(toc, selectedTopicIDs), prefs)
	if err := s.setJSON(ctx, fmt.Sprintf(keyPath, sessionID), path); err != nil {
		return nil, err
	}
	if err := s.rdb.RPush(ctx, fmt.Sprintf(keyUserSessions, userID), sessionID).Err(); err != nil {
		return nil, fmt.Errorf("redis rpush user sessions for %s: %w", userID, err)
	}

	cur := types.Cursor{}
	if len(selectedTopicIDs) > 0 {
		cur.TopicID = selectedTopicIDs[0]
	}
	if err := s.SetCursor(ctx, sessionID, cur); err != nil {
		return nil, err
	}

	s.log.Info("Created learning path",
		"user_id", userID,
		"session_id", sessionID,
		"topics", len(selectedTopicIDs),
		"total_hours", path.EstimatedTotalHours,
	)
	return path, nil
}

func (s *RedisStore) UpdateLearningPath(ctx context.Context, sessionID string, selectedTopicIDs []string) (*types.LearningPath, error) {
	path, err := s.GetLearningPath(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	toc, err := s.GetTOC(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := validateSelection(toc, selectedTopicIDs); err != nil {
		return nil, err
	}

	removed := removedTopics(path.SelectedTopics, selectedTopicIDs)
	for _, topicID := range removed {
		tm, err := s.GetModules(ctx, sessionID, topicID)
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, m := range tm.Modules {
			if err := s.rdb.HDel(ctx, fmt.Sprintf(keyConcepts, sessionID), m.ID).Err(); err != nil {
				return nil, fmt.Errorf("redis hdel concepts for %s: %w", m.ID, err)
			}
		}
		if err := s.rdb.HDel(ctx, fmt.Sprintf(keyModules, sessionID), topicID).Err(); err != nil {
			return nil, fmt.Errorf("redis hdel modules for %s: %w", topicID, err)
		}
	}
	if len(removed) > 0 {
		s.log.Info("Cascaded topic removal", "session_id", sessionID, "removed_topics", len(removed))
	}

	path.SelectedTopics = append([]string(nil), selectedTopicIDs...)
	path.EstimatedTotalHours = selectionHours(toc, selectedTopicIDs)
	if err := s.setJSON(ctx, fmt.Sprintf(keyPath, sessionID), path); err != nil {
		return nil, err
	}

	cur, err := s.GetCursor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.SetCursor(ctx, sessionID, resetCursorAfterUpdate(cur, selectedTopicIDs)); err != nil {
		return nil, err
	}

	s.log.Info("Updated learning path",
		"session_id", sessionID,
		"topics", len(selectedTopicIDs),
		"total_hours", path.EstimatedTotalHours,
	)
	return path, nil
}

func (s *RedisStore) GetLearningPath(ctx context.Context, sessionID string) (*types.LearningPath, error) {
	return getJSON[types.LearningPath](ctx, s, fmt.Sprintf(keyPath, sessionID), "learning path", sessionID)
}

func (s *RedisStore) GetUserLearningPaths(ctx context.Context, userID string) ([]*types.LearningPath, error) {
	sessionIDs, err := s.rdb.LRange(ctx, fmt.Sprintf(keyUserSessions, userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange user sessions for %s: %w", userID, err)
	}
	paths := make([]*types.LearningPath, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		p, err := s.GetLearningPath(ctx, sessionID)
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *RedisStore) StoreModules(ctx context.Context, sessionID string, tm *types.TopicWithModules) error {
	data, err := json.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshal modules for %s: %w", tm.TopicID, err)
	}
	if err := s.rdb.HSet(ctx, fmt.Sprintf(keyModules, sessionID), tm.TopicID, data).Err(); err != nil {
		return fmt.Errorf("redis hset modules for %s: %w", tm.TopicID, err)
	}
	s.log.Info("Stored modules", "session_id", sessionID, "topic_id", tm.TopicID, "modules", len(tm.Modules))
	return nil
}

func (s *RedisStore) GetModules(ctx context.Context, sessionID, topicID string) (*types.TopicWithModules, error) {
	data, err := s.rdb.HGet(ctx, fmt.Sprintf(keyModules, sessionID), topicID).Bytes()
	if err == redis.Nil {
		return nil, apperr.NotFound("modules", topicID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget modules for %s: %w", topicID, err)
	}
	var tm types.TopicWithModules
	if err := json.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("unmarshal modules for %s: %w", topicID, err)
	}
	return &tm, nil
}

func (s *RedisStore) GetAllModules(ctx context.Context, sessionID string) ([]*types.TopicWithModules, error) {
	entries, err := s.rdb.HGetAll(ctx, fmt.Sprintf(keyModules, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall modules for %s: %w", sessionID, err)
	}
	byTopic := make(map[string]*types.TopicWithModules, len(entries))
	for topicID, raw := range entries {
		var tm types.TopicWithModules
		if err := json.Unmarshal([]byte(raw), &tm); err != nil {
			return nil, fmt.Errorf("unmarshal modules for %s: %w", topicID, err)
		}
		byTopic[topicID] = &tm
	}

	out := make([]*types.TopicWithModules, 0, len(byTopic))
	path, err := s.GetLearningPath(ctx, sessionID)
	if err == nil {
		for _, topicID := range path.SelectedTopics {
			if tm, ok := byTopic[topicID]; ok {
				out = append(out, tm)
			}
		}
		return out, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}
	for _, tm := range byTopic {
		out = append(out, tm)
	}
	return out, nil
}

func (s *RedisStore) FindModuleByID(ctx context.Context, sessionID, moduleID string) (*types.Module, error) {
	all, err := s.GetAllModules(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, tm := range all {
		if m, ok := tm.ModuleByID(moduleID); ok {
			return &m, nil
		}
	}
	return nil, apperr.NotFound("module", moduleID)
}

func (s *RedisStore) StoreConcepts(ctx context.Context, sessionID string, mc *types.ModuleWithConcepts) error {
	data, err := json.Marshal(mc)
	if err != nil {
		return fmt.Errorf("marshal concepts for %s: %w", mc.ModuleID, err)
	}
	if err := s.rdb.HSet(ctx, fmt.Sprintf(keyConcepts, sessionID), mc.ModuleID, data).Err(); err != nil {
		return fmt.Errorf("redis hset concepts for %s: %w", mc.ModuleID, err)
	}
	s.log.Info("Stored concepts", "session_id", sessionID, "module_id", mc.ModuleID, "concepts", len(mc.Concepts))
	return nil
}

func (s *RedisStore) GetConcepts(ctx context.Context, sessionID, moduleID string) (*types.ModuleWithConcepts, error) {
	data, err := s.rdb.HGet(ctx, fmt.Sprintf(keyConcepts, sessionID), moduleID).Bytes()
	if err == redis.Nil {
		return nil, apperr.NotFound("concepts", moduleID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget concepts for %s: %w", moduleID, err)
	}
	var mc types.ModuleWithConcepts
	if err := json.Unmarshal(data, &mc); err != nil {
		return nil, fmt.Errorf("unmarshal concepts for %s: %w", moduleID, err)
	}
	return &mc, nil
}

func (s *RedisStore) allConcepts(ctx context.Context, sessionID string) (map[string]*types.ModuleWithConcepts, error) {
	entries, err := s.rdb.HGetAll(ctx, fmt.Sprintf(keyConcepts, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall concepts for %s: %w", sessionID, err)
	}
	out := make(map[string]*types.ModuleWithConcepts, len(entries))
	for moduleID, raw := range entries {
		var mc types.ModuleWithConcepts
		if err := json.Unmarshal([]byte(raw), &mc); err != nil {
			return nil, fmt.Errorf("unmarshal concepts for %s: %w", moduleID, err)
		}
		out[moduleID] = &mc
	}
	return out, nil
}

func (s *RedisStore) FindConceptByID(ctx context.Context, sessionID, conceptID string) (*types.Concept, *types.ModuleSummary, error) {
	byModule, err := s.allConcepts(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	for _, mc := range byModule {
		if c, ok := mc.ConceptByID(conceptID); ok {
			return &c, moduleSummary(mc), nil
		}
	}
	return nil, nil, apperr.NotFound("concept", conceptID)
}

func (s *RedisStore) patchConcept(ctx context.Context, sessionID, conceptID, what string, fn func(c *types.Concept)) error {
	byModule, err := s.allConcepts(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, mc := range byModule {
		for i := range mc.Concepts {
			if mc.Concepts[i].ID == conceptID {
				fn(&mc.Concepts[i])
				return s.StoreConcepts(ctx, sessionID, mc)
			}
		}
	}
	s.log.Warn("Concept not found for update", "session_id", sessionID, "concept_id", conceptID, "update", what)
	return nil
}

func (s *RedisStore) UpdateConceptContent(ctx context.Context, sessionID string, concept *types.Concept) error {
	return s.patchConcept(ctx, sessionID, concept.ID, "content", func(c *types.Concept) {
		*c = *concept
	})
}

func (s *RedisStore) UpdateConceptNotes(ctx context.Context, sessionID, conceptID, notes string) error {
	return s.patchConcept(ctx, sessionID, conceptID, "notes", func(c *types.Concept) {
		c.NotesSummary = notes
	})
}

func (s *RedisStore) UpdateConceptStatus(ctx context.Context, sessionID, conceptID string, status types.ConceptStatus) error {
	return s.patchConcept(ctx, sessionID, conceptID, "status", func(c *types.Concept) {
		c.Status = status
	})
}

func (s *RedisStore) SetCursor(ctx context.Context, sessionID string, cursor types.Cursor) error {
	return s.setJSON(ctx, fmt.Sprintf(keyCursor, sessionID), cursor)
}

func (s *RedisStore) GetCursor(ctx context.Context, sessionID string) (types.Cursor, error) {
	cur, err := getJSON[types.Cursor](ctx, s, fmt.Sprintf(keyCursor, sessionID), "cursor", sessionID)
	if apperr.IsNotFound(err) {
		return types.Cursor{}, nil
	}
	if err != nil {
		return types.Cursor{}, err
	}
	return *cur, nil
}

func (s *RedisStore) countKeys(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	var total int
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

func (s *RedisStore) Statistics(ctx context.Context) (types.StoreStatistics, error) {
	var stats types.StoreStatistics
	var err error

	if stats.TotalTOCs, err = s.countKeys(ctx, "ll:toc:*"); err != nil {
		return stats, err
	}
	if stats.TotalUsers, err = s.countKeys(ctx, "ll:user_sessions:*"); err != nil {
		return stats, err
	}

	var cursor uint64
	var totalTopics int
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, "ll:path:*", 100).Result()
		if err != nil {
			return stats, fmt.Errorf("redis scan paths: %w", err)
		}
		for _, key := range keys {
			p, err := getJSON[types.LearningPath](ctx, s, key, "learning path", key)
			if apperr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return stats, err
			}
			stats.TotalLearningPaths++
			totalTopics += len(p.SelectedTopics)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if stats.TotalLearningPaths > 0 {
		stats.AverageTopicsPerPath = float64(totalTopics) / float64(stats.TotalLearningPaths)
	}

	cursor = 0
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, "ll:modules:*", 100).Result()
		if err != nil {
			return stats, fmt.Errorf("redis scan modules: %w", err)
		}
		for _, key := range keys {
			n, err := s.rdb.HLen(ctx, key).Result()
			if err != nil {
				return stats, fmt.Errorf("redis hlen %s: %w", key, err)
			}
			stats.TopicsWithModules += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	cursor = 0
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, "ll:concepts:*", 100).Result()
		if err != nil {
			return stats, fmt.Errorf("redis scan concepts: %w", err)
		}
		for _, key := range keys {
			n, err := s.rdb.HLen(ctx, key).Result()
			if err != nil {
				return stats, fmt.Errorf("redis hlen %s: %w", key, err)
			}
			stats.ModulesWithConcepts += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return stats, nil
}
