// Package domains holds the per-domain curriculum configuration and
// prompt builders. The generation services are domain-agnostic; all
// domain knowledge lives behind the Domain interface.
package domains

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/learnloop/learnloop-backend/internal/types"
)

// GenerationConfig bounds and defaults for one domain's hierarchy
// generation. Counts outside min/max produce warnings only; estimate
// fields outside the accepted range are reset to the default.
type GenerationConfig struct {
	DefaultModulesPerTopic int     `yaml:"default_modules_per_topic"`
	MinModulesPerTopic     int     `yaml:"min_modules_per_topic"`
	MaxModulesPerTopic     int     `yaml:"max_modules_per_topic"`
	DefaultModuleHours     float64 `yaml:"default_module_hours"`

	MinConceptsPerModule  int     `yaml:"min_concepts_per_module"`
	MaxConceptsPerModule  int     `yaml:"max_concepts_per_module"`
	DefaultConceptMinutes float64 `yaml:"default_concept_minutes"`

	EvaluationTypes []types.EvaluationType `yaml:"evaluation_types"`
}

// LoadGenerationConfig layers a YAML override file over the compiled
// defaults. A missing path returns the defaults unchanged.
func LoadGenerationConfig(path string, def GenerationConfig) (GenerationConfig, error) {
	if path == "" {
		return def, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("read domain config: %w", err)
	}
	cfg := def
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return def, fmt.Errorf("parse domain config: %w", err)
	}
	return cfg, nil
}

// Domain supplies prompts and config for one curriculum domain.
type Domain interface {
	ID() string
	Name() string
	Description() string
	Config() GenerationConfig

	TOCPrompt(prefs map[string]any) string
	ModulePrompt(topic types.Topic, prefs map[string]any) string
	ConceptPrompt(module types.Module, prefs map[string]any) string
	ConceptContentPrompt(concept types.Concept, module types.ModuleSummary, prefs map[string]any) string
	ConceptNotesPrompt(concept types.Concept, module types.ModuleSummary, prefs map[string]any) string

	// MotivationMessages returns coach messages for a progress stage
	// ("start", "progress", "completion").
	MotivationMessages(stage string) []string
}

// Registry maps domain ids to their Domain implementation.
type Registry struct {
	domains map[string]Domain
}

func NewRegistry(ds ...Domain) *Registry {
	r := &Registry{domains: make(map[string]Domain, len(ds))}
	for _, d := range ds {
		r.domains[d.ID()] = d
	}
	return r
}

func (r *Registry) Get(id string) (Domain, bool) {
	d, ok := r.domains[id]
	return d, ok
}

func (r *Registry) List() []Domain {
	out := make([]Domain, 0, len(r.domains))
	for _, d := range r.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
