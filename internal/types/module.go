package types

type EvaluationType string

const (
	EvaluationCodingExercise EvaluationType = "coding_exercise"
	EvaluationQuiz           EvaluationType = "quiz"
	EvaluationProject        EvaluationType = "project"
	EvaluationMixed          EvaluationType = "mixed"
)

type Module struct {
	ID                 string         `json:"id"`
	TopicID            string         `json:"topic_id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	EstimatedHours     float64        `json:"estimated_hours"`
	LearningObjectives []string       `json:"learning_objectives"`
	Prerequisites      []string       `json:"prerequisites"`
	EvaluationType     EvaluationType `json:"evaluation_type"`
	Order              int            `json:"order"`
}

// TopicWithModules is the stored module collection for one topic. The
// collection is either entirely absent or fully present and ordered.
type TopicWithModules struct {
	TopicID             string   `json:"topic_id"`
	TopicName           string   `json:"topic_name"`
	TopicDescription    string   `json:"topic_description"`
	Modules             []Module `json:"modules"`
	TotalEstimatedHours float64  `json:"total_estimated_hours"`
}

// ModuleByID returns the module with the given id, if present.
func (t *TopicWithModules) ModuleByID(id string) (Module, bool) {
	for _, m := range t.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}
