package services

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/clients/openrouter"
	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/normalization"
	"github.com/learnloop/learnloop-backend/internal/store"
	"github.com/learnloop/learnloop-backend/internal/types"
)

// ModuleService generates and serves module collections per topic.
// Generation is idempotent: the first call per (session, topic) invokes
// the backend, later calls are cache reads.
type ModuleService interface {
	Generate(ctx context.Context, sessionID, topicID string) (*types.TopicWithModules, bool, error)
	Get(ctx context.Context, sessionID, topicID string) (*types.TopicWithModules, error)
	ListForSession(ctx context.Context, sessionID string) ([]*types.TopicWithModules, error)
	Select(ctx context.Context, sessionID, moduleID string) (*types.Module, error)
	Current(ctx context.Context, sessionID string) (*types.Module, error)
}

type moduleService struct {
	log        *logger.Logger
	ai         openrouter.Client
	store      store.SessionStore
	registry   *domains.Registry
	normalizer *normalization.Normalizer
	flight     singleflight.Group
}

func NewModuleService(baseLog *logger.Logger, ai openrouter.Client, st store.SessionStore, registry *domains.Registry, n *normalization.Normalizer) ModuleService {
	return &moduleService{
		log:        baseLog.With("service", "ModuleService"),
		ai:         ai,
		store:      st,
		registry:   registry,
		normalizer: n,
	}
}

type moduleGenResult struct {
	modules *types.TopicWithModules
	already bool
}

func (s *moduleService) Generate(ctx context.Context, sessionID, topicID string) (*types.TopicWithModules, bool, error) {
	// Per-(session, topic) lock so concurrent requests collapse into a
	// single generation.
	v, err, _ := s.flight.Do(sessionID+"|"+topicID+"|modules", func() (any, error) {
		return s.generate(ctx, sessionID, topicID)
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(moduleGenResult)
	return res.modules, res.already, nil
}

func (s *moduleService) generate(ctx context.Context, sessionID, topicID string) (moduleGenResult, error) {
	// The learning path is a required parent: its absence fails the
	// request even when a cached collection exists, and generation is
	// restricted to topics the path actually selects.
	path, err := s.store.GetLearningPath(ctx, sessionID)
	if err != nil {
		return moduleGenResult{}, err
	}
	toc, err := s.store.GetTOC(ctx, sessionID)
	if err != nil {
		return moduleGenResult{}, err
	}
	topic, ok := toc.TopicByID(topicID)
	if !ok {
		return moduleGenResult{}, apperr.NotFound("topic", topicID)
	}
	if !topicSelected(path, topicID) {
		return moduleGenResult{}, apperr.Validation("topic %q is not in the learning path", topicID)
	}

	if existing, err := s.store.GetModules(ctx, sessionID, topicID); err == nil && len(existing.Modules) > 0 {
		s.log.Info("Modules already generated", "session_id", sessionID, "topic_id", topicID)
		return moduleGenResult{modules: existing, already: true}, nil
	}

	dom, ok := s.registry.Get(toc.Domain)
	if !ok {
		return moduleGenResult{}, apperr.Validation("unsupported domain %q", toc.Domain)
	}
	prefs := path.UserPreferences

	s.log.Info("Generating modules", "session_id", sessionID, "topic_id", topicID, "topic", topic.Name)

	cfg := dom.Config()
	raw, err := s.ai.GenerateJSON(ctx,
		"You are an expert curriculum designer. Break the given topic into sequential learning modules.",
		dom.ModulePrompt(topic, prefs),
		"topic_modules",
		modulesSchema(evaluationTypeStrings(cfg.EvaluationTypes)),
		structuredTemperature,
	)
	if err != nil {
		return moduleGenResult{}, apperr.Generation("modules", err)
	}

	var tm types.TopicWithModules
	if err := decodeGenerated(raw, "topic_modules", &tm); err != nil {
		return moduleGenResult{}, apperr.Generation("modules", err)
	}

	s.normalizer.NormalizeModules(&tm, topic, cfg)

	if err := s.store.StoreModules(ctx, sessionID, &tm); err != nil {
		return moduleGenResult{}, err
	}
	return moduleGenResult{modules: &tm}, nil
}

func (s *moduleService) Get(ctx context.Context, sessionID, topicID string) (*types.TopicWithModules, error) {
	return s.store.GetModules(ctx, sessionID, topicID)
}

func (s *moduleService) ListForSession(ctx context.Context, sessionID string) ([]*types.TopicWithModules, error) {
	return s.store.GetAllModules(ctx, sessionID)
}

// Select validates the module exists and its topic is part of the
// session's selection, then points the cursor at it.
func (s *moduleService) Select(ctx context.Context, sessionID, moduleID string) (*types.Module, error) {
	m, err := s.store.FindModuleByID(ctx, sessionID, moduleID)
	if err != nil {
		return nil, err
	}
	path, err := s.store.GetLearningPath(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !topicSelected(path, m.TopicID) {
		return nil, apperr.Validation("module %q belongs to topic %q which is not in the learning path", moduleID, m.TopicID)
	}

	if err := s.store.SetCursor(ctx, sessionID, types.Cursor{TopicID: m.TopicID, ModuleID: m.ID}); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *moduleService) Current(ctx context.Context, sessionID string) (*types.Module, error) {
	cur, err := s.store.GetCursor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cur.ModuleID == "" {
		return nil, apperr.NotFound("current module", "")
	}
	return s.store.FindModuleByID(ctx, sessionID, cur.ModuleID)
}

func topicSelected(path *types.LearningPath, topicID string) bool {
	for _, id := range path.SelectedTopics {
		if id == topicID {
			return true
		}
	}
	return false
}

func evaluationTypeStrings(ts []types.EvaluationType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}
