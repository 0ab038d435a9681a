package types

type ConceptStatus string

const (
	ConceptNotStarted ConceptStatus = "not_started"
	ConceptInProgress ConceptStatus = "in_progress"
	ConceptCompleted  ConceptStatus = "completed"
)

// ValidConceptStatus reports whether s is one of the allowed status
// values.
func ValidConceptStatus(s string) bool {
	switch ConceptStatus(s) {
	case ConceptNotStarted, ConceptInProgress, ConceptCompleted:
		return true
	}
	return false
}

// ContentBlock is one display unit of a concept's content. Immutable
// once created; the list is replaced wholesale on regeneration.
type ContentBlock struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Content          string  `json:"content"`
	Order            int     `json:"order"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
}

type Concept struct {
	ID                 string         `json:"id"`
	ModuleID           string         `json:"module_id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	EstimatedMinutes   float64        `json:"estimated_minutes"`
	LearningObjectives []string       `json:"learning_objectives"`
	ContentBlocks      []ContentBlock `json:"content_blocks"`
	EvaluationType     EvaluationType `json:"evaluation_type,omitempty"`
	EvaluationContent  string         `json:"evaluation_content,omitempty"`
	NotesSummary       string         `json:"notes_summary,omitempty"`
	Order              int            `json:"order"`
	Status             ConceptStatus  `json:"status"`
}

// ModuleWithConcepts is the stored concept collection for one module.
type ModuleWithConcepts struct {
	ModuleID              string    `json:"module_id"`
	ModuleName            string    `json:"module_name"`
	ModuleDescription     string    `json:"module_description"`
	TopicID               string    `json:"topic_id"`
	Concepts              []Concept `json:"concepts"`
	TotalEstimatedMinutes float64   `json:"total_estimated_minutes"`
	CurrentConceptID      string    `json:"current_concept_id,omitempty"`
}

// ConceptByID returns the concept with the given id, if present.
func (m *ModuleWithConcepts) ConceptByID(id string) (Concept, bool) {
	for _, c := range m.Concepts {
		if c.ID == id {
			return c, true
		}
	}
	return Concept{}, false
}

// ModuleSummary carries the parent-module fields a concept-level
// operation needs for prompting, without the sibling concepts.
type ModuleSummary struct {
	ModuleID          string `json:"module_id"`
	ModuleName        string `json:"module_name"`
	ModuleDescription string `json:"module_description"`
	TopicID           string `json:"topic_id"`
}
