package types

// NavigationConcept is one concept entry in the assembled tree.
type NavigationConcept struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	EstimatedMinutes float64       `json:"estimated_minutes"`
	Order            int           `json:"order"`
	Status           ConceptStatus `json:"status"`
	IsCurrentConcept bool          `json:"is_current_concept"`
}

// NavigationModule is one module entry in the assembled tree. Concepts
// are attached only for the module matching the cursor's current module
// id; other modules report HasConcepts without the detail.
type NavigationModule struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	EstimatedHours  float64             `json:"estimated_hours"`
	EvaluationType  EvaluationType      `json:"evaluation_type"`
	Order           int                 `json:"order"`
	IsCurrentModule bool                `json:"is_current_module"`
	HasConcepts     bool                `json:"has_concepts"`
	Concepts        []NavigationConcept `json:"concepts,omitempty"`
}

// NavigationTopic is one selected topic in the assembled tree, in
// selection order.
type NavigationTopic struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	EstimatedHours float64            `json:"estimated_hours"`
	IsCurrentTopic bool               `json:"is_current_topic"`
	HasModules     bool               `json:"has_modules"`
	Modules        []NavigationModule `json:"modules,omitempty"`
}

// NavigationTree is the read-only denormalized projection of a session's
// learning path for display.
type NavigationTree struct {
	SessionID           string            `json:"session_id"`
	Domain              string            `json:"domain"`
	Topics              []NavigationTopic `json:"topics"`
	Cursor              Cursor            `json:"current_selection"`
	TotalTopics         int               `json:"total_topics"`
	TopicsWithModules   int               `json:"topics_with_modules"`
	ModulesWithConcepts int               `json:"modules_with_concepts"`
}
