package types

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

type TopicType string

const (
	TopicTheoretical TopicType = "theoretical"
	TopicPractical   TopicType = "practical"
	TopicMixed       TopicType = "mixed"
)

type SubTopic struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	EstimatedHours float64         `json:"estimated_hours"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	Prerequisites  []string        `json:"prerequisites"`
}

type Topic struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	EstimatedHours float64         `json:"estimated_hours"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	TopicType      TopicType       `json:"topic_type"`
	Subtopics      []SubTopic      `json:"subtopics"`
	Prerequisites  []string        `json:"prerequisites"`
	IsCore         bool            `json:"is_core"`
}

// TableOfContents is the full candidate topic tree for a domain,
// generated once per session.
type TableOfContents struct {
	Domain                  string   `json:"domain"`
	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	TotalEstimatedHours     float64  `json:"total_estimated_hours"`
	Topics                  []Topic  `json:"topics"`
	LearningPathSuggestions []string `json:"learning_path_suggestions"`
}

// TopicByID returns the topic with the given id, if present.
func (t *TableOfContents) TopicByID(id string) (Topic, bool) {
	for _, topic := range t.Topics {
		if topic.ID == id {
			return topic, true
		}
	}
	return Topic{}, false
}

// TopicDetails is the expanded view of one topic: the topic itself plus
// resolved prerequisite topics and the topics that depend on it.
type TopicDetails struct {
	Topic         Topic   `json:"topic"`
	Prerequisites []Topic `json:"prerequisites"`
	Dependents    []Topic `json:"dependents"`
}
