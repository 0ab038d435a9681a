package services

import (
	"context"

	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/store"
	"github.com/learnloop/learnloop-backend/internal/types"
)

// PathService manages topic selection for a session.
type PathService interface {
	Create(ctx context.Context, userID, sessionID string, selectedTopicIDs []string, prefs map[string]any) (*types.LearningPath, error)
	Update(ctx context.Context, sessionID string, selectedTopicIDs []string) (*types.LearningPath, error)
	Get(ctx context.Context, sessionID string) (*types.LearningPath, error)
	ListForUser(ctx context.Context, userID string) ([]*types.LearningPath, error)
}

type pathService struct {
	log   *logger.Logger
	store store.SessionStore
}

func NewPathService(baseLog *logger.Logger, st store.SessionStore) PathService {
	return &pathService{log: baseLog.With("service", "PathService"), store: st}
}

func (s *pathService) Create(ctx context.Context, userID, sessionID string, selectedTopicIDs []string, prefs map[string]any) (*types.LearningPath, error) {
	return s.store.CreateLearningPath(ctx, userID, sessionID, selectedTopicIDs, prefs)
}

func (s *pathService) Update(ctx context.Context, sessionID string, selectedTopicIDs []string) (*types.LearningPath, error) {
	return s.store.UpdateLearningPath(ctx, sessionID, selectedTopicIDs)
}

func (s *pathService) Get(ctx context.Context, sessionID string) (*types.LearningPath, error) {
	return s.store.GetLearningPath(ctx, sessionID)
}

func (s *pathService) ListForUser(ctx context.Context, userID string) ([]*types.LearningPath, error) {
	return s.store.GetUserLearningPaths(ctx, userID)
}
