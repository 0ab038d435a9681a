// Package datascience is the data_science curriculum domain: generation
// bounds, prompts, and coach messaging.
package datascience

import (
	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/types"
)

const (
	DomainID   = "data_science"
	DomainName = "Data Science"
)

// DefaultConfig returns the compiled generation bounds for the domain.
func DefaultConfig() domains.GenerationConfig {
	return domains.GenerationConfig{
		DefaultModulesPerTopic: 4,
		MinModulesPerTopic:     2,
		MaxModulesPerTopic:     8,
		DefaultModuleHours:     2.0,
		MinConceptsPerModule:   2,
		MaxConceptsPerModule:   8,
		DefaultConceptMinutes:  15,
		EvaluationTypes: []types.EvaluationType{
			types.EvaluationCodingExercise,
			types.EvaluationQuiz,
			types.EvaluationMixed,
		},
	}
}

type Domain struct {
	cfg domains.GenerationConfig
}

func New(cfg domains.GenerationConfig) *Domain {
	return &Domain{cfg: cfg}
}

func (d *Domain) ID() string   { return DomainID }
func (d *Domain) Name() string { return DomainName }
func (d *Domain) Description() string {
	return "Comprehensive data science curriculum with ML, statistics, and programming"
}
func (d *Domain) Config() domains.GenerationConfig { return d.cfg }

var motivationMessages = map[string][]string{
	"start": {
		"Ready to dive into your first topic? Let's start building your data science expertise!",
		"Your personalized learning journey begins now. Every expert was once a beginner!",
		"Focus on one module at a time - consistency beats intensity!",
	},
	"progress": {
		"Great momentum! You're making real progress toward your goals.",
		"Each module completed brings you closer to data science mastery!",
		"Keep going! Your future self will thank you for this dedication.",
	},
	"completion": {
		"Module completed! Take a moment to appreciate your progress.",
		"Another step closer to your data science goals. Well done!",
		"Excellent work! Ready for the next challenge?",
	},
}

func (d *Domain) MotivationMessages(stage string) []string {
	if msgs, ok := motivationMessages[stage]; ok {
		return msgs
	}
	return motivationMessages["progress"]
}
