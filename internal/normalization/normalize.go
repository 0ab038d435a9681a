// Package normalization repairs generated hierarchy nodes before they
// are persisted: parent ids are forced, missing ids synthesized,
// ordering reassigned from list position, unrealistic estimates reset,
// and aggregate totals recomputed.
package normalization

import (
	"fmt"

	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/types"
)

type Normalizer struct {
	log *logger.Logger
}

func NewNormalizer(baseLog *logger.Logger) *Normalizer {
	return &Normalizer{log: baseLog.With("service", "Normalizer")}
}

// NormalizeModules repairs a generated module collection in place.
// Counts outside the configured bounds log warnings only; the data is
// kept as generated.
func (n *Normalizer) NormalizeModules(tm *types.TopicWithModules, topic types.Topic, cfg domains.GenerationConfig) {
	tm.TopicID = topic.ID
	if tm.TopicName == "" {
		tm.TopicName = topic.Name
	}
	if tm.TopicDescription == "" {
		tm.TopicDescription = topic.Description
	}

	var total float64
	for i := range tm.Modules {
		m := &tm.Modules[i]
		if m.ID == "" {
			m.ID = fmt.Sprintf("mod_%s_%d", tm.TopicID, i+1)
		}
		m.TopicID = tm.TopicID
		m.Order = i + 1

		if m.EstimatedHours <= 0 || m.EstimatedHours > 10 {
			n.log.Warn("Adjusting unrealistic module hours",
				"module", m.Name,
				"hours", m.EstimatedHours,
				"default", cfg.DefaultModuleHours,
			)
			m.EstimatedHours = cfg.DefaultModuleHours
		}
		total += m.EstimatedHours
	}
	tm.TotalEstimatedHours = total

	count := len(tm.Modules)
	if count < cfg.MinModulesPerTopic {
		n.log.Warn("Generated fewer modules than expected", "topic_id", tm.TopicID, "count", count, "min", cfg.MinModulesPerTopic)
	} else if count > cfg.MaxModulesPerTopic {
		n.log.Warn("Generated more modules than expected", "topic_id", tm.TopicID, "count", count, "max", cfg.MaxModulesPerTopic)
	}
}

// NormalizeConcepts repairs a generated concept collection in place and
// points the current-concept hint at the first concept.
func (n *Normalizer) NormalizeConcepts(mc *types.ModuleWithConcepts, module types.Module, cfg domains.GenerationConfig) {
	mc.ModuleID = module.ID
	mc.TopicID = module.TopicID
	if mc.ModuleName == "" {
		mc.ModuleName = module.Name
	}
	if mc.ModuleDescription == "" {
		mc.ModuleDescription = module.Description
	}

	var total float64
	for i := range mc.Concepts {
		c := &mc.Concepts[i]
		if c.ID == "" {
			c.ID = fmt.Sprintf("concept_%s_%d", mc.ModuleID, i+1)
		}
		c.ModuleID = mc.ModuleID
		c.Order = i + 1
		if c.Status == "" {
			c.Status = types.ConceptNotStarted
		}

		if c.EstimatedMinutes <= 5 || c.EstimatedMinutes > 30 {
			n.log.Warn("Adjusting unrealistic concept minutes",
				"concept", c.Name,
				"minutes", c.EstimatedMinutes,
				"default", cfg.DefaultConceptMinutes,
			)
			c.EstimatedMinutes = cfg.DefaultConceptMinutes
		}
		total += c.EstimatedMinutes
	}
	mc.TotalEstimatedMinutes = total

	if len(mc.Concepts) > 0 {
		mc.CurrentConceptID = mc.Concepts[0].ID
	}

	count := len(mc.Concepts)
	if count < cfg.MinConceptsPerModule {
		n.log.Warn("Generated fewer concepts than expected", "module_id", mc.ModuleID, "count", count, "min", cfg.MinConceptsPerModule)
	} else if count > cfg.MaxConceptsPerModule {
		n.log.Warn("Generated more concepts than expected", "module_id", mc.ModuleID, "count", count, "max", cfg.MaxConceptsPerModule)
	}
}
