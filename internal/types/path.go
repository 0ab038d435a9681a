package types

import "time"

// LearningPath is a user's selected subset of TOC topics for a session,
// with the recomputed aggregate time. Replaced wholesale on re-selection,
// never partially updated.
type LearningPath struct {
	UserID              string         `json:"user_id"`
	SessionID           string         `json:"session_id"`
	Domain              string         `json:"domain"`
	SelectedTopics      []string       `json:"selected_topics"`
	EstimatedTotalHours float64        `json:"estimated_total_hours"`
	CreatedAt           time.Time      `json:"created_at"`
	UserPreferences     map[string]any `json:"user_preferences,omitempty"`
}

// Cursor is the session's pointer to the currently-displayed
// topic/module/concept. Empty string means unset.
type Cursor struct {
	TopicID   string `json:"current_topic_id,omitempty"`
	ModuleID  string `json:"current_module_id,omitempty"`
	ConceptID string `json:"current_concept_id,omitempty"`
}

// StoreStatistics is the aggregate view exposed for observability.
type StoreStatistics struct {
	TotalTOCs            int     `json:"total_tocs"`
	TotalLearningPaths   int     `json:"total_learning_paths"`
	TotalUsers           int     `json:"total_users"`
	TopicsWithModules    int     `json:"topics_with_modules"`
	ModulesWithConcepts  int     `json:"modules_with_concepts"`
	AverageTopicsPerPath float64 `json:"average_topics_per_path"`
}
