// Package store is the single source of truth for all session-scoped
// hierarchy state: TOCs, learning paths, module and concept collections,
// and the navigation cursor.
package store

import (
	"context"

	"github.com/learnloop/learnloop-backend/internal/types"
)

// SessionStore holds per-session hierarchy state. Absent records are
// reported with apperr.NotFoundError; the in-memory backend returns no
// other errors, the redis backend surfaces IO failures.
//
// A child collection (modules for a topic, concepts for a module) is
// either entirely absent or fully present and ordered; writers store
// whole collections, never partial ones.
type SessionStore interface {
	// StoreTOC replaces any existing TOC for the session and clears the
	// session's module and concept collections.
	StoreTOC(ctx context.Context, sessionID string, toc *types.TableOfContents) error
	GetTOC(ctx context.Context, sessionID string) (*types.TableOfContents, error)
	GetTopicDetails(ctx context.Context, sessionID, topicID string) (*types.TopicDetails, error)

	// CreateLearningPath validates the selection against the session's
	// TOC, computes total hours, points the cursor at the first selected
	// topic, and records the session under the user.
	CreateLearningPath(ctx context.Context, userID, sessionID string, selectedTopicIDs []string, prefs map[string]any) (*types.LearningPath, error)
	// UpdateLearningPath replaces the selection, cascading deletion of
	// module and concept collections for deselected topics, and resets
	// the cursor if its topic was removed.
	UpdateLearningPath(ctx context.Context, sessionID string, selectedTopicIDs []string) (*types.LearningPath, error)
	GetLearningPath(ctx context.Context, sessionID string) (*types.LearningPath, error)
	GetUserLearningPaths(ctx context.Context, userID string) ([]*types.LearningPath, error)

	StoreModules(ctx context.Context, sessionID string, tm *types.TopicWithModules) error
	GetModules(ctx context.Context, sessionID, topicID string) (*types.TopicWithModules, error)
	GetAllModules(ctx context.Context, sessionID string) ([]*types.TopicWithModules, error)
	FindModuleByID(ctx context.Context, sessionID, moduleID string) (*types.Module, error)

	StoreConcepts(ctx context.Context, sessionID string, mc *types.ModuleWithConcepts) error
	GetConcepts(ctx context.Context, sessionID, moduleID string) (*types.ModuleWithConcepts, error)
	FindConceptByID(ctx context.Context, sessionID, conceptID string) (*types.Concept, *types.ModuleSummary, error)

	// The concept patch operations are best-effort: a concept id that no
	// longer resolves is a logged no-op, never an error.
	UpdateConceptContent(ctx context.Context, sessionID string, concept *types.Concept) error
	UpdateConceptNotes(ctx context.Context, sessionID, conceptID, notes string) error
	UpdateConceptStatus(ctx context.Context, sessionID, conceptID string, status types.ConceptStatus) error

	SetCursor(ctx context.Context, sessionID string, cursor types.Cursor) error
	GetCursor(ctx context.Context, sessionID string) (types.Cursor, error)

	Statistics(ctx context.Context) (types.StoreStatistics, error)
}
