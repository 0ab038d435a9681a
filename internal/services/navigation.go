package services

import (
	"context"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/store"
	"github.com/learnloop/learnloop-backend/internal/types"
)

// NavigationService assembles the read-only tree projection for a
// session: selected topics in selection order, their modules, and
// concepts expanded only for the cursor's current module.
type NavigationService interface {
	Tree(ctx context.Context, sessionID string) (*types.NavigationTree, error)
}

type navigationService struct {
	log   *logger.Logger
	store store.SessionStore
}

func NewNavigationService(baseLog *logger.Logger, st store.SessionStore) NavigationService {
	return &navigationService{log: baseLog.With("service", "NavigationService"), store: st}
}

func (s *navigationService) Tree(ctx context.Context, sessionID string) (*types.NavigationTree, error) {
	path, err := s.store.GetLearningPath(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	toc, err := s.store.GetTOC(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cursor, err := s.store.GetCursor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tree := &types.NavigationTree{
		SessionID:   sessionID,
		Domain:      path.Domain,
		Cursor:      cursor,
		TotalTopics: len(path.SelectedTopics),
	}

	for _, topicID := range path.SelectedTopics {
		topic, ok := toc.TopicByID(topicID)
		if !ok {
			// Selection is validated against the TOC on write, so a
			// dangling id here means the TOC was regenerated underneath
			// the path.
			return nil, apperr.NotFound("topic", topicID)
		}

		navTopic := types.NavigationTopic{
			ID:             topic.ID,
			Name:           topic.Name,
			Description:    topic.Description,
			EstimatedHours: topic.EstimatedHours,
			IsCurrentTopic: topic.ID == cursor.TopicID,
		}

		tm, err := s.store.GetModules(ctx, sessionID, topicID)
		if err == nil {
			navTopic.HasModules = true
			tree.TopicsWithModules++
			for _, m := range tm.Modules {
				navModule := types.NavigationModule{
					ID:              m.ID,
					Name:            m.Name,
					Description:     m.Description,
					EstimatedHours:  m.EstimatedHours,
					EvaluationType:  m.EvaluationType,
					Order:           m.Order,
					IsCurrentModule: m.ID == cursor.ModuleID,
				}

				mc, cErr := s.store.GetConcepts(ctx, sessionID, m.ID)
				if cErr == nil {
					navModule.HasConcepts = true
					tree.ModulesWithConcepts++
					// Concept detail only for the cursor's module.
					if m.ID == cursor.ModuleID {
						for _, c := range mc.Concepts {
							navModule.Concepts = append(navModule.Concepts, types.NavigationConcept{
								ID:               c.ID,
								Name:             c.Name,
								Description:      c.Description,
								EstimatedMinutes: c.EstimatedMinutes,
								Order:            c.Order,
								Status:           c.Status,
								IsCurrentConcept: c.ID == cursor.ConceptID,
							})
						}
					}
				} else if !apperr.IsNotFound(cErr) {
					return nil, cErr
				}

				navTopic.Modules = append(navTopic.Modules, navModule)
			}
		} else if !apperr.IsNotFound(err) {
			return nil, err
		}

		tree.Topics = append(tree.Topics, navTopic)
	}

	return tree, nil
}
