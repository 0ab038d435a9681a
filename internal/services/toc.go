package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/clients/openrouter"
	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/store"
	"github.com/learnloop/learnloop-backend/internal/types"
)

const (
	structuredTemperature = 0.7
	contentTemperature    = 0.7
	notesTemperature      = 0.6
)

// TOCService generates the full candidate topic tree for a domain and
// serves TOC-level reads.
type TOCService interface {
	Generate(ctx context.Context, domainID string, prefs map[string]any) (string, *types.TableOfContents, error)
	Get(ctx context.Context, sessionID string) (*types.TableOfContents, error)
	TopicDetails(ctx context.Context, sessionID, topicID string) (*types.TopicDetails, error)
	Statistics(ctx context.Context) (types.StoreStatistics, error)
}

type tocService struct {
	log      *logger.Logger
	ai       openrouter.Client
	store    store.SessionStore
	registry *domains.Registry
}

func NewTOCService(baseLog *logger.Logger, ai openrouter.Client, st store.SessionStore, registry *domains.Registry) TOCService {
	return &tocService{
		log:      baseLog.With("service", "TOCService"),
		ai:       ai,
		store:    st,
		registry: registry,
	}
}

func (s *tocService) Generate(ctx context.Context, domainID string, prefs map[string]any) (string, *types.TableOfContents, error) {
	dom, ok := s.registry.Get(domainID)
	if !ok {
		return "", nil, apperr.Validation("unsupported domain %q", domainID)
	}

	s.log.Info("Generating TOC", "domain", domainID)

	raw, err := s.ai.GenerateJSON(ctx,
		"You are an expert curriculum designer. Return a complete, well-ordered table of contents for the requested domain.",
		dom.TOCPrompt(prefs),
		"table_of_contents",
		tocSchema(),
		structuredTemperature,
	)
	if err != nil {
		return "", nil, apperr.Generation("toc", err)
	}

	var toc types.TableOfContents
	if err := decodeGenerated(raw, "table_of_contents", &toc); err != nil {
		return "", nil, apperr.Generation("toc", err)
	}
	if len(toc.Topics) == 0 {
		return "", nil, apperr.Generation("toc", apperr.Schema("table_of_contents", fmt.Errorf("no topics generated")))
	}

	// The domain tag comes from the registry, never from the generator.
	toc.Domain = dom.ID()

	sessionID := uuid.NewString()
	if err := s.store.StoreTOC(ctx, sessionID, &toc); err != nil {
		return "", nil, err
	}

	s.log.Info("Generated TOC", "session_id", sessionID, "topics", len(toc.Topics), "total_hours", toc.TotalEstimatedHours)
	return sessionID, &toc, nil
}

func (s *tocService) Get(ctx context.Context, sessionID string) (*types.TableOfContents, error) {
	return s.store.GetTOC(ctx, sessionID)
}

func (s *tocService) TopicDetails(ctx context.Context, sessionID, topicID string) (*types.TopicDetails, error) {
	return s.store.GetTopicDetails(ctx, sessionID, topicID)
}

func (s *tocService) Statistics(ctx context.Context) (types.StoreStatistics, error) {
	return s.store.Statistics(ctx)
}

// decodeGenerated unmarshals a structured generation payload into the
// level's typed record. Shape mismatch is a SchemaError.
func decodeGenerated(raw json.RawMessage, schemaName string, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Schema(schemaName, err)
	}
	return nil
}
