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

// ConceptService generates concept collections, per-concept content and
// notes, and tracks concept progress. Same idempotency contract as
// ModuleService: one generation per parent node per session.
type ConceptService interface {
	Generate(ctx context.Context, sessionID, moduleID string) (*types.ModuleWithConcepts, bool, error)
	GenerateContent(ctx context.Context, sessionID, conceptID string) (*types.Concept, bool, error)
	GenerateNotes(ctx context.Context, sessionID, conceptID string) (*types.Concept, bool, error)
	Get(ctx context.Context, sessionID, moduleID string) (*types.ModuleWithConcepts, error)
	GetConcept(ctx context.Context, sessionID, conceptID string) (*types.Concept, *types.ModuleSummary, error)
	UpdateProgress(ctx context.Context, sessionID, conceptID, status string) (*types.Concept, error)
}

type conceptService struct {
	log        *logger.Logger
	ai         openrouter.Client
	store      store.SessionStore
	registry   *domains.Registry
	normalizer *normalization.Normalizer
	flight     singleflight.Group
}

func NewConceptService(baseLog *logger.Logger, ai openrouter.Client, st store.SessionStore, registry *domains.Registry, n *normalization.Normalizer) ConceptService {
	return &conceptService{
		log:        baseLog.With("service", "ConceptService"),
		ai:         ai,
		store:      st,
		registry:   registry,
		normalizer: n,
	}
}

type conceptGenResult struct {
	concepts *types.ModuleWithConcepts
	already  bool
}

func (s *conceptService) Generate(ctx context.Context, sessionID, moduleID string) (*types.ModuleWithConcepts, bool, error) {
	v, err, _ := s.flight.Do(sessionID+"|"+moduleID+"|concepts", func() (any, error) {
		return s.generate(ctx, sessionID, moduleID)
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(conceptGenResult)
	return res.concepts, res.already, nil
}

func (s *conceptService) generate(ctx context.Context, sessionID, moduleID string) (conceptGenResult, error) {
	// Learning path is a required parent, checked before the cached
	// return as well.
	path, err := s.store.GetLearningPath(ctx, sessionID)
	if err != nil {
		return conceptGenResult{}, err
	}

	if existing, err := s.store.GetConcepts(ctx, sessionID, moduleID); err == nil && len(existing.Concepts) > 0 {
		s.log.Info("Concepts already generated", "session_id", sessionID, "module_id", moduleID)
		return conceptGenResult{concepts: existing, already: true}, nil
	}

	module, err := s.store.FindModuleByID(ctx, sessionID, moduleID)
	if err != nil {
		return conceptGenResult{}, err
	}
	dom, err := s.sessionDomain(ctx, sessionID)
	if err != nil {
		return conceptGenResult{}, err
	}
	prefs := path.UserPreferences

	s.log.Info("Generating concepts", "session_id", sessionID, "module_id", moduleID, "module", module.Name)

	raw, err := s.ai.GenerateJSON(ctx,
		"You are an expert instructor. Break the given module into small, focused learning concepts.",
		dom.ConceptPrompt(*module, prefs),
		"module_concepts",
		conceptsSchema(),
		structuredTemperature,
	)
	if err != nil {
		return conceptGenResult{}, apperr.Generation("concepts", err)
	}

	var mc types.ModuleWithConcepts
	if err := decodeGenerated(raw, "module_concepts", &mc); err != nil {
		return conceptGenResult{}, apperr.Generation("concepts", err)
	}

	s.normalizer.NormalizeConcepts(&mc, *module, dom.Config())

	if err := s.store.StoreConcepts(ctx, sessionID, &mc); err != nil {
		return conceptGenResult{}, err
	}
	return conceptGenResult{concepts: &mc}, nil
}

type contentGenResult struct {
	concept *types.Concept
	already bool
}

func (s *conceptService) GenerateContent(ctx context.Context, sessionID, conceptID string) (*types.Concept, bool, error) {
	v, err, _ := s.flight.Do(sessionID+"|"+conceptID+"|content", func() (any, error) {
		return s.generateContent(ctx, sessionID, conceptID)
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(contentGenResult)
	return res.concept, res.already, nil
}

func (s *conceptService) generateContent(ctx context.Context, sessionID, conceptID string) (contentGenResult, error) {
	path, err := s.store.GetLearningPath(ctx, sessionID)
	if err != nil {
		return contentGenResult{}, err
	}

	concept, parent, err := s.store.FindConceptByID(ctx, sessionID, conceptID)
	if err != nil {
		return contentGenResult{}, err
	}
	if len(concept.ContentBlocks) > 0 {
		s.log.Info("Content already generated", "session_id", sessionID, "concept_id", conceptID)
		return contentGenResult{concept: concept, already: true}, nil
	}

	dom, err := s.sessionDomain(ctx, sessionID)
	if err != nil {
		return contentGenResult{}, err
	}
	prefs := path.UserPreferences

	s.log.Info("Generating concept content", "session_id", sessionID, "concept_id", conceptID, "concept", concept.Name)

	text, err := s.ai.GenerateText(ctx,
		"You are an expert instructor writing learning material. Use markdown with ## section headings.",
		dom.ConceptContentPrompt(*concept, *parent, prefs),
		contentTemperature,
	)
	if err != nil {
		return contentGenResult{}, apperr.Generation("content", err)
	}

	concept.ContentBlocks = normalization.SplitContent(text)
	if err := s.store.UpdateConceptContent(ctx, sessionID, concept); err != nil {
		return contentGenResult{}, err
	}
	return contentGenResult{concept: concept}, nil
}

func (s *conceptService) GenerateNotes(ctx context.Context, sessionID, conceptID string) (*types.Concept, bool, error) {
	v, err, _ := s.flight.Do(sessionID+"|"+conceptID+"|notes", func() (any, error) {
		return s.generateNotes(ctx, sessionID, conceptID)
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(contentGenResult)
	return res.concept, res.already, nil
}

func (s *conceptService) generateNotes(ctx context.Context, sessionID, conceptID string) (contentGenResult, error) {
	path, err := s.store.GetLearningPath(ctx, sessionID)
	if err != nil {
		return contentGenResult{}, err
	}

	concept, parent, err := s.store.FindConceptByID(ctx, sessionID, conceptID)
	if err != nil {
		return contentGenResult{}, err
	}
	if concept.NotesSummary != "" {
		s.log.Info("Notes already generated", "session_id", sessionID, "concept_id", conceptID)
		return contentGenResult{concept: concept, already: true}, nil
	}

	dom, err := s.sessionDomain(ctx, sessionID)
	if err != nil {
		return contentGenResult{}, err
	}
	prefs := path.UserPreferences

	s.log.Info("Generating concept notes", "session_id", sessionID, "concept_id", conceptID)

	notes, err := s.ai.GenerateText(ctx,
		"You are an expert instructor writing concise revision notes in markdown.",
		dom.ConceptNotesPrompt(*concept, *parent, prefs),
		notesTemperature,
	)
	if err != nil {
		return contentGenResult{}, apperr.Generation("notes", err)
	}

	if err := s.store.UpdateConceptNotes(ctx, sessionID, conceptID, notes); err != nil {
		return contentGenResult{}, err
	}
	concept.NotesSummary = notes
	return contentGenResult{concept: concept}, nil
}

func (s *conceptService) Get(ctx context.Context, sessionID, moduleID string) (*types.ModuleWithConcepts, error) {
	return s.store.GetConcepts(ctx, sessionID, moduleID)
}

func (s *conceptService) GetConcept(ctx context.Context, sessionID, conceptID string) (*types.Concept, *types.ModuleSummary, error) {
	return s.store.FindConceptByID(ctx, sessionID, conceptID)
}

// UpdateProgress sets a concept's status. Moving to in_progress also
// points the cursor at the concept.
func (s *conceptService) UpdateProgress(ctx context.Context, sessionID, conceptID, status string) (*types.Concept, error) {
	if !types.ValidConceptStatus(status) {
		return nil, apperr.Validation("invalid status %q: must be one of not_started, in_progress, completed", status)
	}

	concept, parent, err := s.store.FindConceptByID(ctx, sessionID, conceptID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateConceptStatus(ctx, sessionID, conceptID, types.ConceptStatus(status)); err != nil {
		return nil, err
	}
	concept.Status = types.ConceptStatus(status)

	if concept.Status == types.ConceptInProgress {
		cur := types.Cursor{TopicID: parent.TopicID, ModuleID: parent.ModuleID, ConceptID: conceptID}
		if err := s.store.SetCursor(ctx, sessionID, cur); err != nil {
			return nil, err
		}
	}
	return concept, nil
}

func (s *conceptService) sessionDomain(ctx context.Context, sessionID string) (domains.Domain, error) {
	toc, err := s.store.GetTOC(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	dom, ok := s.registry.Get(toc.Domain)
	if !ok {
		return nil, apperr.Validation("unsupported domain %q", toc.Domain)
	}
	return dom, nil
}
